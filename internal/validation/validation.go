// Package validation binds request payloads and turns validator
// failures into field-level HTTP errors.
package validation
