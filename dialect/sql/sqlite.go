package sql

import (
	// Registers the pure-Go SQLite driver under the name "sqlite".
	_ "modernc.org/sqlite"
)

const sqliteDriver = "sqlite"
