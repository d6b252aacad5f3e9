// Package media owns the segmenting stage: ffmpeg normalization to 16kHz
// mono, fixed-duration splitting, and chunk bookkeeping. Splitting is purely
// duration based, so re-running on the same input yields identical chunk
// boundaries.
package media
