// Package db is the query layer over the SQLite schema in
// internal/database/migrations. It is maintained by hand in the shape sqlc
// generates (DBTX, Queries, WithTx, one *.sql.go file per table), so schema
// changes need the matching query text and scan order updated here too.
package db
