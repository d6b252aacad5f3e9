package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// UsageCount returns how many transcriptions the user has consumed.
func (s *Store) UsageCount(ctx context.Context, email string) (int, error) {
	ctx = ensureContext(ctx)
	email = normalizeEmail(email)
	if email == "" {
		return 0, errors.New("usage count: email required")
	}
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT transcriptions FROM usage_counts WHERE email = ?", email,
	).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("usage count for %s: %w", email, err)
	}
	return count, nil
}

// RecordUsage increments the user's transcription counter.
func (s *Store) RecordUsage(ctx context.Context, email string) error {
	ctx = ensureContext(ctx)
	email = normalizeEmail(email)
	if email == "" {
		return errors.New("record usage: email required")
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.execWithRetry(ctx, `INSERT INTO usage_counts (email, transcriptions, updated_at)
		VALUES (?, 1, ?)
		ON CONFLICT(email) DO UPDATE SET transcriptions = transcriptions + 1, updated_at = excluded.updated_at`,
		email, now,
	)
	if err != nil {
		return fmt.Errorf("record usage for %s: %w", email, err)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
