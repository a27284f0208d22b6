// Package library implements the file-metadata store backing the resonate
// pipeline.
//
// The store is a SQLite database living inside the library's data directory
// (by default <root>/.resonate/library.db). It owns two tables: files,
// populated by [Store.Scan], and features, populated by the analyzer. The
// pipeline consumes it through two narrow lookups: [Store.IDByPath] for
// identifier resolution and [Store.FilesByIDs] for the batched metadata join.
package library
