// Package store defines the persistence boundary of the progress engine.
//
// Each state store (user progress, quiz sessions) serializes its full state as
// one versioned JSON blob under its own key. An Adapter persists those blobs
// in some durable medium; the Flusher writes them asynchronously so that store
// mutations never wait on I/O. In-memory state is authoritative: durable state
// may lag, and a crash between a mutation and its flush loses that mutation.
package store
