// Package prompt fills the registration form from a terminal. Each answer is
// checked with the schema's single-field validation before it is applied to a
// form controller, and the final record goes through the controller's submit.
package prompt
