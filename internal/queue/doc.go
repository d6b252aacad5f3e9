// Package queue persists transcription jobs and per-user usage counters in
// SQLite. Jobs move through a fixed status lifecycle driven by the workflow
// manager; the store is safe for concurrent use from the daemon and the CLI.
package queue
