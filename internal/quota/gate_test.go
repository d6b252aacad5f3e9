package quota_test

import (
	"context"
	"errors"
	"testing"

	"whisperflow/internal/quota"
	"whisperflow/internal/services"
)

type fakeUsage struct {
	counts   map[string]int
	recorded []string
	err      error
}

func (f *fakeUsage) UsageCount(ctx context.Context, email string) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	return f.counts[email], nil
}

func (f *fakeUsage) RecordUsage(ctx context.Context, email string) error {
	f.recorded = append(f.recorded, email)
	return nil
}

type fakeDonors struct {
	donors map[string]bool
	err    error
}

func (f *fakeDonors) IsDonor(ctx context.Context, email string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.donors[email], nil
}

func TestGateAllow(t *testing.T) {
	usage := &fakeUsage{counts: map[string]int{
		"heavy@example.com": 3,
		"light@example.com": 1,
		"donor@example.com": 50,
		"vip@example.com":   99,
	}}
	donors := &fakeDonors{donors: map[string]bool{"donor@example.com": true}}
	gate := quota.NewGate(usage, donors, 3, []string{" VIP@example.com "})

	cases := []struct {
		name      string
		email     string
		wantQuota bool
		wantErr   bool
	}{
		{"under limit", "light@example.com", false, false},
		{"at limit", "heavy@example.com", true, true},
		{"donor bypasses limit", "donor@example.com", false, false},
		{"allow list bypasses limit", "vip@example.com", false, false},
		{"unseen user", "new@example.com", false, false},
		{"empty email", "  ", false, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := gate.Allow(context.Background(), tc.email)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				if tc.wantQuota && !services.IsBusinessRejection(err) {
					t.Fatalf("expected quota rejection, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Allow(%q) failed: %v", tc.email, err)
			}
		})
	}
}

func TestGateAllowSurfacesDonorLookupFailure(t *testing.T) {
	usage := &fakeUsage{counts: map[string]int{}}
	donors := &fakeDonors{err: errors.New("rest api down")}
	gate := quota.NewGate(usage, donors, 3, nil)

	err := gate.Allow(context.Background(), "someone@example.com")
	if err == nil {
		t.Fatal("expected error")
	}
	if services.IsBusinessRejection(err) {
		t.Fatalf("lookup failure misclassified as quota rejection: %v", err)
	}
}

func TestGateAllowWithoutDonorLookup(t *testing.T) {
	usage := &fakeUsage{counts: map[string]int{"user@example.com": 2}}
	gate := quota.NewGate(usage, nil, 3, nil)

	if err := gate.Allow(context.Background(), "user@example.com"); err != nil {
		t.Fatalf("Allow failed: %v", err)
	}
}

func TestGateRecord(t *testing.T) {
	usage := &fakeUsage{counts: map[string]int{}}
	gate := quota.NewGate(usage, nil, 3, nil)

	if err := gate.Record(context.Background(), "user@example.com"); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if len(usage.recorded) != 1 {
		t.Fatalf("expected 1 recorded usage, got %d", len(usage.recorded))
	}
}
