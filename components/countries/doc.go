// Package countries provides the country reference list used by the
// registration form, search helpers, and a small net/http handler returning
// JSON options for select inputs.
//
// The default handler responds to GET and HEAD requests and supports query
// and limit parameters to filter results. The backing data is loaded from the
// embedded list under data/countries.yaml, or from any YAML document with the
// same shape via LoadCountries.
package countries
