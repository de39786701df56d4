// Package aggregates implements the account aggregate contract on top of an
// AccountStore.
//
// Every write runs as load, mutate and save inside one transaction. A stale
// version makes the whole attempt a conflict, and the attempt is replayed
// from a fresh load under the RetryPolicy. Events are handed to the Notifier
// only after the attempt commits.
package aggregates
