// Package transcribe owns the transcribing stage: a bounded, paced worker
// pool submits audio chunks to the speech-to-text API, fragments are rendered
// with absolute timestamps, and the merged subtitle and transcript files are
// written in chunk order.
package transcribe
