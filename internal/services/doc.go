// Package services holds cross-cutting helpers shared by pipeline stages:
// the error taxonomy used to classify failures, and context annotation for
// request-scoped identifiers.
package services
