// Package views renders the landing and form pages as HTML using the embedded
// pongo2 templates. Styling comes from go-theme manifests whose tokens are
// emitted as CSS custom properties.
package views
