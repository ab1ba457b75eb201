// Package sanitizer provides input normalization for room and booking data.
//
// All normalization functions are idempotent - applying them multiple times produces
// the same result. Functions handle invalid input gracefully, typically by returning
// empty strings or empty slices rather than errors.
//
// Normalization includes:
//   - Strings: Collapse whitespace, trim leading/trailing spaces
//   - Emails: Trim and lowercase
//   - Equipment: Split list-connector strings ("Projector;#Whiteboard"), trim, de-duplicate case-insensitively
//   - Color tags: Lowercase hex with a leading '#'
package sanitizer
