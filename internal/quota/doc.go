// Package quota gates submissions on a per-user free limit, with allow-list
// and donor exemptions.
package quota
