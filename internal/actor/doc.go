// Package actor defines the actor handle tracked by the liveness register and
// the registry of named behaviors the scheduler runs actors with.
package actor
