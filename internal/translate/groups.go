package translate

import (
	"whisperflow/internal/subtitle"
)

// GroupEntries packs subtitle entries into greedy groups whose token count
// stays at or below budget. Entries are never split and never reordered, so
// joining the groups back together reproduces the input exactly. A single
// entry larger than the budget still forms its own group.
func GroupEntries(entries []string, counter TokenCounter, budget int) []string {
	if len(entries) == 0 {
		return nil
	}
	if budget < 1 {
		budget = 1
	}
	separatorTokens := counter.Count(subtitle.EntrySeparator)

	var groups []string
	current := ""
	currentTokens := 0
	for _, entry := range entries {
		entryTokens := counter.Count(entry)
		if current == "" {
			current = entry
			currentTokens = entryTokens
			continue
		}
		if currentTokens+separatorTokens+entryTokens > budget {
			groups = append(groups, current)
			current = entry
			currentTokens = entryTokens
			continue
		}
		current += subtitle.EntrySeparator + entry
		currentTokens += separatorTokens + entryTokens
	}
	if current != "" {
		groups = append(groups, current)
	}
	return groups
}
