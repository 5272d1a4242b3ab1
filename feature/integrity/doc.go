// Package integrity checks the infrastructure the consent engine depends on.
//
// # Checks Provided
//
//   - Structure: the catalog and consent-blob prefixes exist in the bucket.
//   - Catalog: the configured catalog loads from its source and validates.
//   - Database: the key-value and receipt tables match their GORM models
//     (column names and declared types).
//   - Redis: the session store answers a ping.
//
// A backend that is not configured is reported as skipped by the combined
// check and answers 503 on its own endpoint.
//
// # HTTP Endpoints
//
//   - GET /integrity : Runs all checks.
//   - GET /integrity/structure : Runs structure check (supports ?fix=true).
//   - GET /integrity/catalog : Loads a catalog (supports ?name=).
//   - GET /integrity/database : Runs the schema check.
//   - GET /integrity/redis : Pings Redis.
package integrity
