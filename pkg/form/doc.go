// Package form implements the two form controllers. Both own a FormValues
// record, validate on change, validate the full record on submit, and push
// successful submissions into the store.
//
// Manual keeps its own value and error records and calls the schema
// directly. Delegated hands value tracking and error bookkeeping to the
// formstate helper and reaches the schema through a Resolver. Either depends
// only on validation.Validator, so one can be swapped without touching the
// other.
package form
