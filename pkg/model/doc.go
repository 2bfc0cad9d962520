// Package model defines the registration record shared by both form variants:
// the FormValues struct, the Field identifiers used as validation paths and
// input names, the Country reference entry, and the in-memory Picture
// attachment. FormValues converts to and from the generic map shape consumed
// by the form-state helper so the delegated controller can round-trip values
// without reflection.
package model
