// Package store is the in-memory application state container: the last
// submitted form, the uploaded image representation, and the country
// reference list. State changes only through the named Set operations and
// is read through the Select functions over a State snapshot. Every update
// replaces its slot wholesale, so readers never see a partial value.
//
// The ImageLoader runs picture encodes asynchronously and tags each request
// with an increasing token; only the most recently issued request may write
// the image slot.
package store
