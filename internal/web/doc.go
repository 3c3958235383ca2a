// Package web holds the HTML components for every public page. Components
// are plain templ.Component values; handlers assemble the data and wrap the
// page body with Layout.
package web
