// Package http serves resolved preset documents for previews.
//
// Routes mount under the configured base path (default "/"):
//   - GET  /presets
//   - GET  /presets/{preset}/site
//   - GET  /presets/{preset}/pages/{page}
//   - POST /presets/{preset}/pages/{page}/deferred
//   - GET  /presets/{preset}/contract
//   - GET  /presets/{preset}/check
//   - GET  /metrics (when a metrics handler is wired)
//
// GET routes resolve against the configured sample content; POST bodies on
// site, page and check routes replace it for that request.
package http
