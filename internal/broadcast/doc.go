// Package broadcast implements the message fanout: deliver the same payload
// independently to every registered connection, isolating per-recipient
// failures and collecting the outcomes into a Report.
package broadcast
