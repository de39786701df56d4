// Package events carries committed account events to subscribers over redis
// pub/sub or an in-process recorder.
package events
