// Package server implements the self-hosted HTTP surface using Echo.
//
// Routes: /ws (WebSocket clients), /broadcast (HTTP ingestion),
// /evaluate (model evaluation, when configured), health and metrics.
package server
