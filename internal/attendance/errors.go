package attendance

import "errors"

var (
	ErrConflict         = errors.New("working day already started")
	ErrNotFound         = errors.New("no active working day")
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrUpstreamDegraded = errors.New("routing service degraded")
)
