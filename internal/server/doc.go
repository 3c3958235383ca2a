// Package server hosts the Fiber application shell: the middleware chain
// (panic recovery, request ids, member sessions, draft perspective), the
// error handler and the HTML render helper shared by every page handler.
// Routes live in the routes subpackage so handlers can depend on content,
// views and revalidation without this package importing them.
package server
