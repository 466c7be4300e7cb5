// Package sqlite provides a SQLite-based implementation of the styleaudit
// persistence ports.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. It implements two store interfaces
// through a single database connection:
//
//   - IndexSnapshotStore: the embedded chunks of the last index build
//   - ReportStore: audit report history
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files;
// an .up.sql file runs in one transaction with its version record.
//
// # Data Location
//
// By default, the database is stored at ~/.styleaudit/data/styleaudit.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
