// Package daemon wraps the workflow manager in a single-instance background
// process guarded by a file lock.
package daemon
