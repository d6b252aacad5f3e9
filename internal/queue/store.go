package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

const jobColumns = `id, source_path, source_url, title, target_language, submitted_by, status,
work_dir, duration_seconds, chunk_count, subtitle_file, transcript_file, translated_file,
subtitle_url, transcript_url, error_message, progress_stage, progress_percent, progress_message,
needs_review, review_reason, created_at, updated_at`

// readyStatuses are the states the workflow manager can pick a job up from.
var readyStatuses = []Status{
	StatusPending,
	StatusSegmented,
	StatusTranscribed,
	StatusTranslated,
}

// NewJob inserts a pending job for the given source.
func (s *Store) NewJob(ctx context.Context, sourcePath, sourceURL, title, targetLanguage, submittedBy string) (*Item, error) {
	ctx = ensureContext(ctx)
	if strings.TrimSpace(sourcePath) == "" && strings.TrimSpace(sourceURL) == "" {
		return nil, errors.New("new job: source path or url required")
	}
	now := time.Now().UTC()
	res, err := s.execWithRetry(ctx, `INSERT INTO jobs
		(source_path, source_url, title, target_language, submitted_by, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		strings.TrimSpace(sourcePath),
		strings.TrimSpace(sourceURL),
		strings.TrimSpace(title),
		strings.TrimSpace(targetLanguage),
		strings.TrimSpace(submittedBy),
		string(StatusPending),
		now.Format(time.RFC3339Nano),
		now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("insert job: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("job id: %w", err)
	}
	return s.GetByID(ctx, id)
}

// GetByID fetches one job.
func (s *Store) GetByID(ctx context.Context, id int64) (*Item, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx, "SELECT "+jobColumns+" FROM jobs WHERE id = ?", id)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get job %d: %w", id, err)
	}
	return item, nil
}

// Update persists all mutable fields of the job.
func (s *Store) Update(ctx context.Context, item *Item) error {
	if item == nil {
		return errors.New("update: nil item")
	}
	ctx = ensureContext(ctx)
	item.UpdatedAt = time.Now().UTC()
	_, err := s.execWithRetry(ctx, `UPDATE jobs SET
		source_path = ?, source_url = ?, title = ?, target_language = ?, submitted_by = ?,
		status = ?, work_dir = ?, duration_seconds = ?, chunk_count = ?,
		subtitle_file = ?, transcript_file = ?, translated_file = ?,
		subtitle_url = ?, transcript_url = ?, error_message = ?,
		progress_stage = ?, progress_percent = ?, progress_message = ?,
		needs_review = ?, review_reason = ?, updated_at = ?
		WHERE id = ?`,
		item.SourcePath, item.SourceURL, item.Title, item.TargetLanguage, item.SubmittedBy,
		string(item.Status), item.WorkDir, item.DurationSeconds, item.ChunkCount,
		item.SubtitleFile, item.TranscriptFile, item.TranslatedFile,
		item.SubtitleURL, item.TranscriptURL, item.ErrorMessage,
		item.ProgressStage, item.ProgressPercent, item.ProgressMessage,
		boolToInt(item.NeedsReview), item.ReviewReason, item.UpdatedAt.Format(time.RFC3339Nano),
		item.ID,
	)
	if err != nil {
		return fmt.Errorf("update job %d: %w", item.ID, err)
	}
	return nil
}

// NextReady returns the oldest job waiting for its next stage, or nil.
func (s *Store) NextReady(ctx context.Context) (*Item, error) {
	ctx = ensureContext(ctx)
	placeholders, args := statusArgs(readyStatuses)
	row := s.db.QueryRowContext(ctx,
		"SELECT "+jobColumns+" FROM jobs WHERE status IN ("+placeholders+") ORDER BY id LIMIT 1",
		args...,
	)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("next ready job: %w", err)
	}
	return item, nil
}

// List returns jobs filtered by the supplied statuses; all jobs when none given.
func (s *Store) List(ctx context.Context, statuses ...Status) ([]*Item, error) {
	ctx = ensureContext(ctx)
	query := "SELECT " + jobColumns + " FROM jobs"
	var args []any
	if len(statuses) > 0 {
		placeholders, statusArgs := statusArgs(statuses)
		query += " WHERE status IN (" + placeholders + ")"
		args = statusArgs
	}
	query += " ORDER BY id"
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// Clear removes jobs in the supplied statuses; all terminal jobs when none given.
func (s *Store) Clear(ctx context.Context, statuses ...Status) (int64, error) {
	ctx = ensureContext(ctx)
	if len(statuses) == 0 {
		statuses = []Status{StatusCompleted, StatusFailed, StatusReview}
	}
	placeholders, args := statusArgs(statuses)
	res, err := s.execWithRetry(ctx, "DELETE FROM jobs WHERE status IN ("+placeholders+")", args...)
	if err != nil {
		return 0, fmt.Errorf("clear jobs: %w", err)
	}
	return res.RowsAffected()
}

// ResetStuckProcessing rolls interrupted in-flight jobs back to the state their
// stage started from. Called on daemon startup.
func (s *Store) ResetStuckProcessing(ctx context.Context) (int64, error) {
	ctx = ensureContext(ctx)
	var total int64
	for _, transition := range stageRollbackTransitions {
		res, err := s.execWithRetry(ctx,
			"UPDATE jobs SET status = ?, progress_percent = 0, updated_at = ? WHERE status = ?",
			string(transition.to), time.Now().UTC().Format(time.RFC3339Nano), string(transition.from),
		)
		if err != nil {
			return total, fmt.Errorf("reset %s jobs: %w", transition.from, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return total, err
		}
		total += affected
	}
	return total, nil
}

func statusArgs(statuses []Status) (string, []any) {
	placeholders := make([]string, len(statuses))
	args := make([]any, len(statuses))
	for i, status := range statuses {
		placeholders[i] = "?"
		args[i] = string(status)
	}
	return strings.Join(placeholders, ", "), args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*Item, error) {
	var (
		item        Item
		status      string
		needsReview int
		createdAt   string
		updatedAt   string
	)
	err := row.Scan(
		&item.ID, &item.SourcePath, &item.SourceURL, &item.Title, &item.TargetLanguage, &item.SubmittedBy,
		&status, &item.WorkDir, &item.DurationSeconds, &item.ChunkCount,
		&item.SubtitleFile, &item.TranscriptFile, &item.TranslatedFile,
		&item.SubtitleURL, &item.TranscriptURL, &item.ErrorMessage,
		&item.ProgressStage, &item.ProgressPercent, &item.ProgressMessage,
		&needsReview, &item.ReviewReason, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}
	item.Status = Status(status)
	item.NeedsReview = needsReview != 0
	if parsed, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		item.CreatedAt = parsed
	}
	if parsed, err := time.Parse(time.RFC3339Nano, updatedAt); err == nil {
		item.UpdatedAt = parsed
	}
	return &item, nil
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
