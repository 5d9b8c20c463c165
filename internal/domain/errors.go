package domain

import "errors"

// ErrConnectionGone marks a delivery target whose connection no longer
// exists at the transport. Broadcasts log it, prune the stale registry
// entry, and continue with the remaining recipients.
var ErrConnectionGone = errors.New("connection gone")
