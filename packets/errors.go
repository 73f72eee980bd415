package packets

import "errors"

// ErrLeftoverInput is returned when a packet body's Decode leaves unread
// bytes in its length-scoped sub-cursor — the declared packet length
// claimed more data than the body actually consumes.
var ErrLeftoverInput = errors.New("packets: leftover input after decode")

// errUnsupportedDecode marks packet bodies this module only ever sends,
// never receives, so no Decode implementation is maintained for them.
var errUnsupportedDecode = errors.New("packets: decode not implemented for this body")
