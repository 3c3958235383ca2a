// Package routes registers the page, API and diagnostics handlers on the
// Fiber app built by the server package.
package routes
