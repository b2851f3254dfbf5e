package sqlite

import (
	"database/sql"

	"github.com/mattn/go-sqlite3"
)

// DriverName is the database/sql driver with folio's connection pragmas.
const DriverName = "sqlite3_folio"

func init() {
	sql.Register(DriverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			_, err := conn.Exec("PRAGMA busy_timeout = 5000; PRAGMA foreign_keys = ON;", nil)
			return err
		},
	})
}
