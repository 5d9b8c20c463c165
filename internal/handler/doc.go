// Package handler implements the gateway event handlers: connection
// lifecycle (connect/disconnect), broadcast fanout, and model evaluation.
//
// Handlers consume gateway-shaped events and always produce a Response with
// an explicit status code; no error or panic escapes the handler boundary.
package handler
