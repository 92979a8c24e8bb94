// Package records is the client's local cache of records.
//
// # Data Model
//
// One row per record: id (primary key), fields (JSON blob, see
// models.EncodeFields), synchronized (0/1) and created_at (RFC3339 with a
// fixed nine-digit fraction, so it sorts as text).
//
// # Semantics
//
// Put is insert-only: a second Put with an existing id leaves the stored row
// untouched. Only MarkSynchronized changes a stored row, and only its flag.
// Rows are never deleted.
//
// # Concurrency
//
// Mutations are serialized by the repository and each one is a single SQL
// statement, so a crash leaves either the old or the new row, never a torn
// one. Open the database with one connection (see client.InitDatabase) so
// reads observe committed writes in order.
//
// Typical Usage
//
//	repo := records.NewSQLiteRepository(db)
//	inserted, _ := repo.Put(ctx, rec)
//	pending, _ := repo.ListUnsynchronized(ctx)
//	_ = repo.MarkSynchronized(ctx, pending[0].ID)
package records
