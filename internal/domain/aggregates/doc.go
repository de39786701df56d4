// Package aggregates defines domain-facing aggregate contracts.
//
// Contracts avoid persistence and transport details. Each one names a write
// boundary where invariants are enforced atomically and the error codes its
// implementations return.
package aggregates
