// Package websocket implements the local delivery hub using the actor pattern.
//
// The Hub owns the connection-id -> client map on a single goroutine fed by a
// command channel (no mutexes). Per-connection write goroutines absorb slow
// clients; a client whose send buffer is full is evicted rather than allowed
// to stall a broadcast.
package websocket
