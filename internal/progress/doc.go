// Package progress owns the user progress record: experience and level, the
// daily streak, the subscription tier and the free-tier daily quotas.
//
// A Store holds the single device profile in memory. Every mutator reads the
// clock once, decides and mutates under one lock acquisition, and hands a
// serialized snapshot to the persistence flusher before releasing the lock.
// Events are emitted after the lock is released.
package progress
