package queue

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a transcription job.
type Status string

const (
	StatusPending      Status = "pending"
	StatusSegmenting   Status = "segmenting"
	StatusSegmented    Status = "segmented"
	StatusTranscribing Status = "transcribing"
	StatusTranscribed  Status = "transcribed"
	StatusTranslating  Status = "translating"
	StatusTranslated   Status = "translated"
	StatusUploading    Status = "uploading"
	StatusCompleted    Status = "completed"
	StatusFailed       Status = "failed"
	StatusReview       Status = "review"
)

var allStatuses = []Status{
	StatusPending,
	StatusSegmenting,
	StatusSegmented,
	StatusTranscribing,
	StatusTranscribed,
	StatusTranslating,
	StatusTranslated,
	StatusUploading,
	StatusCompleted,
	StatusFailed,
	StatusReview,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

var processingStatuses = map[Status]struct{}{
	StatusSegmenting:   {},
	StatusTranscribing: {},
	StatusTranslating:  {},
	StatusUploading:    {},
}

type statusTransition struct {
	from Status
	to   Status
}

// stageRollbackTransitions return an interrupted job to the state its stage
// started from, so a daemon restart re-runs the stage instead of stranding it.
var stageRollbackTransitions = []statusTransition{
	{from: StatusSegmenting, to: StatusPending},
	{from: StatusTranscribing, to: StatusSegmented},
	{from: StatusTranslating, to: StatusTranscribed},
	{from: StatusUploading, to: StatusTranslated},
}

// Item represents a transcription job persisted in SQLite.
type Item struct {
	ID              int64
	SourcePath      string
	SourceURL       string
	Title           string
	TargetLanguage  string
	SubmittedBy     string
	Status          Status
	WorkDir         string
	DurationSeconds float64
	ChunkCount      int
	SubtitleFile    string
	TranscriptFile  string
	TranslatedFile  string
	SubtitleURL     string
	TranscriptURL   string
	ErrorMessage    string
	ProgressStage   string
	ProgressPercent float64
	ProgressMessage string
	NeedsReview     bool
	ReviewReason    string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsProcessing returns true when the status reflects an in-flight stage.
func (i Item) IsProcessing() bool {
	return IsProcessingStatus(i.Status)
}

// IsProcessingStatus reports whether a status reflects an in-flight stage.
func IsProcessingStatus(status Status) bool {
	_, ok := processingStatuses[status]
	return ok
}

// IsTerminal reports whether the job has reached a final state.
func (i Item) IsTerminal() bool {
	switch i.Status {
	case StatusCompleted, StatusFailed, StatusReview:
		return true
	default:
		return false
	}
}

// WantsTranslation reports whether the job requested a translated subtitle.
func (i Item) WantsTranslation() bool {
	return strings.TrimSpace(i.TargetLanguage) != ""
}

// SetProgress updates all three progress fields atomically.
func (i *Item) SetProgress(stage, message string, percent float64) {
	i.ProgressStage = stage
	i.ProgressMessage = message
	i.ProgressPercent = percent
}

// SetFailed marks the job as failed with the given error message.
func (i *Item) SetFailed(message string) {
	i.Status = StatusFailed
	i.ErrorMessage = message
	i.ProgressPercent = 0
	i.ProgressMessage = message
	i.ProgressStage = "Failed"
}
