// Package cache provides the key/value storage used by the page stores, with
// several interchangeable backends and a type-safe generic accessor.
//
// # Implementations
//
//   - [NewInMemory]: in-process map guarded by a mutex. Values are stored as-is,
//     so callers must not mutate them. Expired entries are swept by a background
//     goroutine. The time source can be replaced with [WithClock] and the size
//     bounded with [WithMaxEntries].
//
//   - [NewSQLite]: SQLite through [modernc.org/sqlite] (pure Go). Values are
//     msgpack encoded. keydesk only opens it on ":memory:" so nothing outlives
//     the session.
//
//   - [NewRedis]: Redis through [github.com/redis/go-redis/v9]. Values are msgpack
//     encoded into a hash (fields "v" and "h"), expiry uses native TTL. Keys
//     live under a session prefix ([WithPrefix], or a generated
//     "keydesk:<uuid>") and are listed in an index set so Close drops the
//     whole session.
//
//   - [NewTiered]: chains caches fastest first. Get returns the first hit and
//     promotes it into the faster tiers, Set and Expire apply to every tier.
//     Each [Tier] may cap the TTL of what it holds. The redis backend runs
//     behind a short-lived in-memory tier.
//
// # Typed access
//
// [Get] asserts the stored type for in-memory values and decodes msgpack for
// serialized backends, so callers do not care which backend produced the value:
//
//	found, page, err := cache.Get[store.Page[model.Key]](ctx, c, key)
//
// Read errors are always returned. Struct fields must be exported to survive
// serialization.
package cache
