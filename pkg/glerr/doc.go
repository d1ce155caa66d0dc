/*
Package glerr defines the typed error taxonomy shared across the audit
core's components, per the error-handling design in spec.md §7. Every error
that crosses a component boundary is one of these kinds so callers can
branch on classification instead of string-matching messages.
*/
package glerr
