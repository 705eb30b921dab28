package visit

import "errors"

var (
	ErrClientNotFound   = errors.New("client not found")
	ErrVisitNotFound    = errors.New("visit not found")
	ErrNoClientLocation = errors.New("client has no coordinates")
	ErrTooFar           = errors.New("too far from client")
	ErrInvalidDuration  = errors.New("duration must be zero or more minutes")
)
