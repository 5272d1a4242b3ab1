// Package loader registers the HTTP features of the service.
//
// A Feature names itself, says whether it is enabled (receipts, for example,
// needs a database) and registers its routes on Load. The Manager keeps the
// features in registration order and loads the enabled ones, stopping at the
// first error.
package loader
