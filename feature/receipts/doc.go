// Package receipts keeps an audit trail of consent decisions.
//
// A Recorder is attached to every consent manager opened by the HTTP layer.
// Each save produces one row in consent_receipts holding the visitor id, the
// catalog id, the save type and the full and changed consent mappings as JSON.
// Saves of type "save" that change nothing are not recorded.
//
// The feature is only enabled when a database connection is configured. On
// load it checks the table with the column inspector and migrates it when
// columns are missing.
//
//	GET /receipts?visitor=<id>&limit=<n>
package receipts
