// Package sanitizer provides input normalization for contact and catalog data.
//
// All normalization functions are idempotent - applying them multiple times produces
// the same result. Functions handle invalid input gracefully, typically by returning
// empty strings or empty slices rather than errors.
//
// Normalization includes:
//   - Phone numbers: Convert to E.164 format (+[country][number]), local numbers
//     are read in the configured default region
//   - E-mail addresses: trimmed and lower-cased
//   - Strings: Collapse whitespace, trim leading/trailing spaces
//   - URLs: lowercase host, no trailing slash
//   - Slices: Remove duplicates and empty values after normalization
package sanitizer
