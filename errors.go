package videoflip

import (
	"errors"

	"github.com/e7canasta/orion-care-sensor/modules/video-flip/internal/orientation"
)

var (
	// ErrConstruction is wrapped by Filter.Err when the internal sub-graph
	// could not be built
	ErrConstruction = errors.New("videoflip: construction failed")
	// ErrUnknownProperty is returned for property names other than "method"
	ErrUnknownProperty = errors.New("videoflip: unknown property")
	// ErrInvalidMethod is returned for unknown method values or nicks
	ErrInvalidMethod = orientation.ErrInvalidMethod
)
