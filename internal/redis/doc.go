// Package redis implements the Redis-backed connection registry.
//
// Provides the client constructor (with metrics and circuit breaker hooks
// installed) and Registry, a ConnectionRegistry over a single Redis hash.
package redis
