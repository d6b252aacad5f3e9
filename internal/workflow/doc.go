// Package workflow drives queued jobs through the registered pipeline stages,
// one job at a time, persisting every status transition.
package workflow
