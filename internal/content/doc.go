// Package content is the query and data-composition layer of the site.
//
// A Repository is bound to one CMS perspective. Published reads are cached on
// disk per namespace and concurrent misses share one upstream request; draft
// reads always go to the CMS. Every query degrades to an empty result when the
// CMS is unconfigured or failing, so pages render an empty state instead of an
// error.
package content
