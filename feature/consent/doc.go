// Package consent exposes the consent engine over HTTP.
//
// Every request opens its own consent manager. The request cookies form the
// manager's cookie jar, so a cookie-backed store reads the visitor's blob
// from the Cookie header and answers with Set-Cookie headers. The key-value
// methods (local, session, object) key the blob by a visitor id that is kept
// in its own cookie and minted on first contact.
//
// Routes:
//
//	GET    /consents              current consents of the visitor
//	GET    /consents/plan         per-service decisions, no side effects
//	PUT    /consents/:service     set one consent, save and apply
//	POST   /consents/accept-all   accept every service, save and apply
//	POST   /consents/decline-all  decline every optional service, save and apply
//	POST   /consents/save?type=   set the consents of the body, save and apply
//	DELETE /consents              forget the decision
//	POST   /consents/render       reconcile an HTML document with the consents
//
// Render answers with the rewritten document and the number of services
// whose activation changed in the X-Consent-Changed header. Watchers built by
// the registered WatcherFactory values (the receipts recorder, for instance)
// are attached to each manager before it loads.
package consent
