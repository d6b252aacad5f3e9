// Package translate owns the translating stage: subtitle entries are packed
// into token-bounded groups, translated concurrently through a chat model,
// and reassembled in document order.
package translate
