// Package catalog holds the declarative list of services managed under consent.
//
// A catalog is read once (from a YAML/JSON file, object storage, or built in Go)
// and is read-only from the engine's point of view. Service names are the join
// key for every consent map in the system.
//
// # Lifecycle hooks
//
// Services may carry OnInit, OnAccept and OnDecline handlers plus a Callback.
// These are Go functions registered with Config.Handle. Catalog files may still
// contain the legacy string form (on_init: "...") which used to be evaluated as
// code; Validate rejects it with ErrStringHandler instead of running it.
//
// # Usage
//
//	cfg, err := catalog.Load("catalog.yaml")
//	if err != nil {
//	    return err
//	}
//	_ = cfg.Handle("analytics", catalog.Hooks{OnAccept: startAnalytics})
package catalog
