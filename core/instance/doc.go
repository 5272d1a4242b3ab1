// Package instance holds the process-wide consent setup: the active service
// catalog, where it comes from, and the events fired while loading it.
//
// Catalogs are installed in one of three ways:
//
//   - InitializeWithConfig installs a catalog directly.
//   - InitializeWithAPI fires "configs_loaded" first; a handler returning
//     events.Preempt takes over and the catalog is not installed.
//   - InitializeFromSource loads a named catalog from a Source (a directory or
//     an object storage prefix) and continues like InitializeWithAPI. A failed
//     load fires "configs_failed".
//
// Handlers registered after an event fired still receive it through replay.
//
// # Usage
//
//	inst := instance.New(instance.NewObjectSource(client, "consents", "configs"), nil, logger)
//	if _, err := inst.InitializeFromSource(ctx, "default"); err != nil {
//	    return err
//	}
//	m, err := inst.NewManager(ctx, consent.WithStore(st))
package instance
