// Package cms talks to the headless CMS HTTP API. It issues GROQ queries
// against the published or previewDrafts perspective, sends patch mutations,
// and retries transient upstream failures with exponential backoff. Query
// parameters are always JSON-encoded and sent alongside the query text, so
// callers never splice user input into GROQ.
package cms
