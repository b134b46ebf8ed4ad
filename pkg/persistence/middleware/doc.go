// Package middleware wraps graph stores with at-rest protections: AES-GCM
// encryption of whole documents and redaction of sensitive node state.
package middleware
