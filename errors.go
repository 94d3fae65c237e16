package speechactivity

import "errors"

var (
	ErrExecutorSaturated = errors.New("executor is saturated")
	ErrInvalidSettings   = errors.New("invalid settings")
)
