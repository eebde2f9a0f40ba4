// Package store provides SQLite-backed durable storage for the four
// record collections: users, posts, answers and notifications.
//
// The store holds no cross-entity invariant logic. It exposes per-entity
// CRUD plus reverse-index queries; the consistency manager composes those
// into atomic groups via Store.Atomic.
//
// # Storage shape
//
// Only the owning direction of each relation is stored:
//
//   - answers carry post_id and creator
//   - posts carry creator
//   - likes live in post_likes(post_id, user_id)
//   - saved posts live in saved_posts(user_id, post_id)
//
// The mirror lists on User and Post (User.Posts, User.Answers,
// User.SavedPosts, Post.Answers, Post.Likes) are computed on read through
// indexed reverse lookups, so the bidirectional-mirror invariant holds by
// construction and never needs repair.
//
// # Ordering
//
// List queries return newest-first: ORDER BY created_at DESC, id DESC.
// The id tiebreak keeps results deterministic for records created in the
// same instant (IDs are time-sortable UUIDv7).
//
// # Database configuration
//
//   - WAL mode: concurrent reads during writes; readers see either the
//     full pre-state or the full post-state of an atomic group, never a
//     partial mix
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: enforce referential integrity
//
// Busy/locked driver errors surface as apperr.KindConflict (retryable by
// the caller); all other driver errors surface as apperr.KindStorage.
package store
