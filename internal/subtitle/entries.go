package subtitle

import "strings"

// EntrySeparator delimits subtitle entries in rendered SRT text.
const EntrySeparator = "\n\n"

// SplitEntries splits rendered subtitle text into its entries. Joining the
// result with EntrySeparator reproduces the trimmed input exactly; callers
// rely on that round trip being lossless.
func SplitEntries(text string) []string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, EntrySeparator)
}

// JoinEntries is the inverse of SplitEntries.
func JoinEntries(entries []string) string {
	return strings.Join(entries, EntrySeparator)
}
