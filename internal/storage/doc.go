// Package storage publishes finished artifacts to a Supabase-compatible
// object store and answers donor lookups for the quota gate.
package storage
