package subtitle

import (
	"strconv"
	"strings"
)

// MergeSRT concatenates per-chunk SRT fragments in the order given and
// renumbers cues 1..N globally. Fragments carry chunk-local numbering that
// restarts at 1; leaving that in the merged file is a defect players trip
// over, so the merge rewrites every cue number line.
func MergeSRT(fragments []string) string {
	var merged []string
	for _, fragment := range fragments {
		merged = append(merged, SplitEntries(fragment)...)
	}
	counter := 0
	for i, entry := range merged {
		lines := strings.SplitN(entry, "\n", 2)
		if len(lines) == 0 {
			continue
		}
		if _, err := strconv.Atoi(strings.TrimSpace(lines[0])); err != nil {
			continue
		}
		counter++
		if len(lines) == 2 {
			merged[i] = strconv.Itoa(counter) + "\n" + lines[1]
		} else {
			merged[i] = strconv.Itoa(counter)
		}
	}
	if len(merged) == 0 {
		return ""
	}
	return JoinEntries(merged) + "\n"
}

// MergeTranscript concatenates plain-text fragments in the order given.
func MergeTranscript(fragments []string) string {
	var merged []string
	for _, fragment := range fragments {
		if trimmed := strings.TrimSpace(fragment); trimmed != "" {
			merged = append(merged, trimmed)
		}
	}
	if len(merged) == 0 {
		return ""
	}
	return JoinEntries(merged) + "\n"
}
