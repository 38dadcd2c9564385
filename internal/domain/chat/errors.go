package chat

import "errors"

var ErrInvalidParticipants = errors.New("sender and receiver must be two distinct users")

// ErrEmptyMessage is returned by transports that refuse blank text. The core
// stores any string.
var ErrEmptyMessage = errors.New("message is required")
