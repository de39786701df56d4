// Package accounts holds the account aggregate: balance, owners and the
// append-only transaction ledger, plus the rules every mutation must pass.
//
// Nothing in this package persists or publishes. Callers load an Account,
// invoke one mutator, and hand the result to a store inside a write boundary.
package accounts
