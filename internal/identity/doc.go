// Package identity resolves OAuth access tokens to user profiles.
package identity
