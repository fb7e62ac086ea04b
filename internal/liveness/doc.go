// Package liveness provides the liveness register used by the scheduler to
// decide when every actor it started has finished.
//
// An actor leaves the pending set in exactly one of two ways: the scheduler
// reports it terminated, or the garbage collector proves it unreachable and
// the scheduler drains that notice with Reclaim. The register observes actors
// through weak pointers only, so tracking an actor never keeps it alive.
package liveness
