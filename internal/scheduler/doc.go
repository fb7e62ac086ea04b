// Package scheduler owns a population of actors. It runs their behaviors,
// reports every exit to the liveness register, periodically drains the
// register's collection notices, and stops once nothing is pending.
// Lifecycle events are persisted to the store and fanned out to live
// subscribers.
package scheduler
