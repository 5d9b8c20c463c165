// Package domain holds the core types and contracts shared across snipcast:
// connection records, broadcast messages, and the registry and delivery sink
// interfaces every other package programs against.
package domain
