// Package consent implements the consent state model and the reconciliation
// pass that applies it.
//
// A Manager holds, for one visitor, the consent of every service in a catalog
// together with the bookkeeping needed to apply it:
//
//   - consents: service name to stored consent, always covering exactly the
//     services of the catalog after a load.
//   - confirmed: true once the visitor saved a decision, or a loaded blob
//     already covered every service.
//   - states: the last applied activation per service, used to count changes.
//   - initialized and executedOnce: lifecycle markers that live as long as the
//     manager or until ResetConsents, so OnInit runs again after a reset.
//
// Service names are expected to be unique. When a catalog built in Go repeats
// a name, the first service wins everywhere, defaults included.
//
// # Effective Consent
//
// For each service the engine computes
//
//	consent = (stored AND (confirmed OR optOut OR dryRun OR interactive)) OR required
//
// where optOut and required fall back to the catalog's global flags. A
// service whose effective consent differs from its last applied state counts
// as changed.
//
// # Persistence
//
// The mapping is persisted as one URL-encoded JSON object through a
// store.Store. A blob that cannot be decoded, or that is not a JSON object
// (null, an array, a bare value), is ignored and the defaults stay in place.
//
// # Notifications
//
// Watchers are notified with EventConsents on every update, EventSave after a
// save and EventApply after an apply pass.
//
// # Usage
//
//	m, err := consent.New(ctx, cfg,
//	    consent.WithStore(st),
//	    consent.WithDocument(doc),
//	    consent.WithJar(jar),
//	)
//	m.ChangeAll(true)
//	changed, err := m.SaveAndApplyConsents(ctx, "accept")
package consent
