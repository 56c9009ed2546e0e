// Package hashstore persists content hash records in a SQLite table
// (file_hashes) through bun.
//
// Records are append-only and keyed by (hash, path). Each record is tagged
// as belonging to a source file inside a repo or a target file inside the
// home directory. The retention sweep only ever removes target records.
//
// A Store handle owns an in-memory hash cache scoped to its lifetime and
// serializes every database access behind a single mutex, so it is safe to
// share between hashing workers.
package hashstore
