// Package model holds the domain types shared by the handler, service and
// repository layers, together with the request payloads the HTTP layer
// binds into.
package model
