// Package cookies models the cookie jar a consent decision is reconciled against.
//
// A Jar is the server-side stand-in for document.cookie: it lists the name/value
// pairs currently visible and accepts cookie writes. Deleting a cookie is just a
// write with an expiry in the past, so the helpers in this package never need to
// know how the underlying transport stores cookies.
//
// # Components
//
//   - Jar: the read/write contract (MemoryJar for tests and offline runs, the
//     HTTP features provide a request/response backed implementation).
//   - Set, Get, Delete: cookie helpers mirroring the browser write sequence.
//   - Rule and Matcher: compiled cookie-name patterns used to purge the cookies
//     of a service once consent is withdrawn.
//
// # Limitations
//
// Cookies set by a third-party origin are invisible to the jar and cannot be
// deleted. Purge does not detect or report this; it is best-effort.
//
// # Usage
//
//	jar := cookies.NewMemoryJar()
//	cookies.Set(jar, "klaro", value, 120, "", "/")
//	deleted, err := cookies.Purge(jar, service.Cookies, "example.com", logger)
package cookies
