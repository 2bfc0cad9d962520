// Package formstate is a small form-state helper: it tracks field values,
// per-field error messages and submission state, and delegates validation to
// a caller supplied Resolver. Callers register fields, push values as the
// user edits them, and hand a callback to HandleSubmit that only runs when
// the resolver reports no errors.
//
// In OnChange mode every SetValue runs the resolver over the full record and
// keeps only the changed field's message, so unrelated fields never flip
// their error state because of an edit elsewhere.
package formstate
