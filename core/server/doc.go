// Package server holds the HTTP server configuration.
//
// While the serve command handles the server startup, this package defines
// the configuration structures for server settings such as the port, the API
// key and request limits.
//
// # Configuration
//
// The Config struct defines the HTTP port, API key, body limit (render
// requests carry whole HTML documents) and read timeout.
//
// # Usage
//
// This package is primarily used by the core/config package to embed server settings.
package server
