// Package render turns post bodies into HTML and plain text. Portable Text
// blocks from the CMS and the optional markdown body both end up as escaped or
// sanitised HTML; the same blocks can also be rendered for a terminal preview.
package render
