// Package ticket makes completion-callback delivery idempotent.
//
// At job dispatch time a ticket is created in state PENDING with a TTL.
// When the completion callback fires, ShouldProcess performs one atomic
// check-and-set: only the first delivery for a ticket observes true, and
// only a true result triggers the user-facing notification. Unknown or
// expired tickets return false rather than an error, so a late or duplicate
// callback is a no-op.
package ticket
