// Package database handles database connections and schema inspection.
//
// It wraps GORM to open MySQL or SQLite connections from the application's
// configuration. The consent server uses the database for two things: the
// "local" storage method, which keeps consent blobs in a key-value table, and
// the receipts log written whenever consents are saved.
//
// # Connect
//
// Connect picks the dialector from Config.Driver, applies pool settings and
// pings the database within the configured timeout. SQLite connections are
// limited to a single open connection so ":memory:" databases survive.
//
// # Schema Inspection
//
// GetTableColumns returns the column definitions of a table for both
// dialects. HasColumns and MissingColumns compare them with the expected
// names. Storage handles and the receipts repository use them to decide
// whether a table has to be migrated before first use; the integrity
// feature reports the differences.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    logger.Warn("Database unavailable", zap.Error(err))
//	}
//
//	columns, err := database.GetTableColumns(db, "consent_entries")
package database
