// Package server exposes the registration forms over HTTP.
//
// Each browser session owns one controller per form variant. Pages are
// negotiated between the HTML views and the JSON page renderer from the
// Accept header; the country list, health check and the OpenAPI description
// of the JSON endpoints are mounted next to the forms.
package server
