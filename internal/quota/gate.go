package quota

import (
	"context"
	"fmt"
	"strings"

	"whisperflow/internal/services"
)

// UsageStore counts completed transcriptions per user.
type UsageStore interface {
	UsageCount(ctx context.Context, email string) (int, error)
	RecordUsage(ctx context.Context, email string) error
}

// DonorLookup answers whether a user has donated.
type DonorLookup interface {
	IsDonor(ctx context.Context, email string) (bool, error)
}

// Gate decides whether a user may submit another transcription. Allow-listed
// users and donors are never limited; everyone else gets FreeLimit jobs.
type Gate struct {
	usage     UsageStore
	donors    DonorLookup
	freeLimit int
	allowList map[string]struct{}
}

// NewGate constructs a quota gate. A nil donor lookup means donor status is
// never granted. freeLimit <= 0 disables the free tier entirely for
// non-exempt users.
func NewGate(usage UsageStore, donors DonorLookup, freeLimit int, allowList []string) *Gate {
	allowed := make(map[string]struct{}, len(allowList))
	for _, email := range allowList {
		if email = strings.ToLower(strings.TrimSpace(email)); email != "" {
			allowed[email] = struct{}{}
		}
	}
	return &Gate{
		usage:     usage,
		donors:    donors,
		freeLimit: freeLimit,
		allowList: allowed,
	}
}

// Allow checks whether the user may submit another job. Quota rejection comes
// back tagged services.ErrQuotaExceeded; anything else is a lookup failure.
func (g *Gate) Allow(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return services.Wrap(services.ErrValidation, "quota", "check", "Submission has no user email", nil)
	}
	if _, ok := g.allowList[email]; ok {
		return nil
	}
	if g.donors != nil {
		donor, err := g.donors.IsDonor(ctx, email)
		if err != nil {
			return fmt.Errorf("quota: donor lookup: %w", err)
		}
		if donor {
			return nil
		}
	}
	count, err := g.usage.UsageCount(ctx, email)
	if err != nil {
		return fmt.Errorf("quota: usage lookup: %w", err)
	}
	if count >= g.freeLimit {
		return services.Wrap(
			services.ErrQuotaExceeded,
			"quota",
			"check",
			fmt.Sprintf("Free limit of %d transcriptions reached; donate to continue", g.freeLimit),
			nil,
		)
	}
	return nil
}

// Record counts one completed transcription against the user.
func (g *Gate) Record(ctx context.Context, email string) error {
	return g.usage.RecordUsage(ctx, email)
}
