package workflow

import (
	"context"
	"sort"

	"whisperflow/internal/stage"
)

// Health reports the readiness of every registered stage, sorted by name so
// output is stable.
func (m *Manager) Health(ctx context.Context) []stage.Health {
	seen := make(map[string]struct{}, len(m.stages))
	var reports []stage.Health
	for _, ps := range m.stages {
		if _, ok := seen[ps.name]; ok {
			continue
		}
		seen[ps.name] = struct{}{}
		reports = append(reports, ps.handler.HealthCheck(ctx))
	}
	sort.Slice(reports, func(i, j int) bool { return reports[i].Name < reports[j].Name })
	return reports
}

// Ready reports whether every stage is healthy.
func (m *Manager) Ready(ctx context.Context) bool {
	for _, report := range m.Health(ctx) {
		if !report.Ready {
			return false
		}
	}
	return true
}
