// Package validation holds the registration schema: one combined rule per
// field (required, pattern, email, cross-field equality, boolean truthiness)
// evaluated against the whole FormValues record. ValidateField feeds inline
// feedback while ValidateAll gates submissions and never stops at the first
// failure so every problem can be shown at once.
//
// Patterns are compiled with regexp2 because the password rule relies on
// lookaheads that the standard library engine does not support.
package validation
