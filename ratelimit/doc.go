// Package ratelimit bounds request volume per key within fixed time windows.
//
// Each key (user id, client address, or anything the caller derives) owns a
// window entry counting requests until its reset time. The first request for
// a key, or the first after its window lapsed, starts a fresh window; once
// the count passes the limit the remaining requests in that window are
// rejected. Entries expire lazily on access, never eagerly.
//
// Storage is pluggable behind the Store interface. MemoryStore keeps entries
// in-process with a periodic sweep; RedisStore is a drop-in shared backend
// for multi-instance deployments. The HTTP-facing middleware lives in the
// middleware package.
package ratelimit
