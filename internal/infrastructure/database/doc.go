// Package database provides the SQLite store behind the simulator's local
// state.
//
// Open configures the connection (busy timeout, optional WAL, a single
// connection), and Migrate applies versioned SQL files from any fs.FS,
// normally the embedded migrations package:
//
//	db, err := database.Open(cfg.Database)
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx, migrations.FS); err != nil {
//	    return err
//	}
//
// All queries use parameterised statements. On-disk database files are
// created with mode 0600.
package database
