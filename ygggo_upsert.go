// Package ygggo_upsert builds and runs bulk MySQL inserts with conflict handling.
//
// # Overview
//
// Three statement kinds are supported:
//   - INSERT ... ON DUPLICATE KEY UPDATE (KindOnDuplicate)
//   - INSERT IGNORE (KindIgnore)
//   - REPLACE INTO (KindReplace)
//
// The builders are pure functions. They take a table name and an Input (one
// Row, or a batch of Rows) and return a Statement: SQL with `?` placeholders
// and the matching flat parameter list, rows outer and columns inner.
//
//	stmt, err := ggu.BuildInsertOnDuplicate("users", ggu.Batch(
//		ggu.MustRow("id", 1, "name", "John"),
//		ggu.MustRow("id", 2, "name", "Mike"),
//	))
//	// INSERT INTO `users`(`id`,`name`) VALUES
//	// (?,?), (?,?)
//	// ON DUPLICATE KEY UPDATE `id` = VALUES(`id`), `name` = VALUES(`name`)
//	// stmt.Params = [1 John 2 Mike]
//
// # Executing
//
// Pool, Conn and Tx run statements and return the server's affected-row
// count unchanged:
//
//	pool, err := ggu.NewPool(ctx, ggu.Config{Host: "localhost", Port: 3306, Database: "app"})
//	n, err := pool.InsertOnDuplicate(ctx, "hits", in, ggu.Assign("count", "count + 1"))
//
// ExecUpsert does the same on any *sql.DB, *sql.Conn or *sql.Tx.
//
// # Security
//
// Table names and Assign expressions are trusted and inserted into the SQL
// as given. Never build them from user input. Column names are backtick
// quoted and all values are bound as parameters.
//
// # Configuration
//
// Config can be loaded from YAML with LoadConfig. Environment variables with
// the prefix YGGGO_UPSERT_* (e.g., YGGGO_UPSERT_HOST) override it in NewPool.
package ygggo_upsert

// Version returns the current library version.
func Version() string { return "v0.1.0-dev" }
