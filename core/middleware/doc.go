// Package middleware groups the Fiber middleware mounted in front of the
// consent routes.
//
//   - auth checks the X-API-Key header against server.api_key. An empty key
//     turns the check off, and paths listed in Skip (the Prometheus endpoint)
//     are always served.
//   - rayid tags each request with an X-Ray-ID, reusing an incoming one, and
//     stores it in the fiber locals so logger.WithRayID can attach it to
//     every log line of the request.
//
// Both are mounted once, globally, by the serve command.
package middleware
