package main

import (
	"errors"
	"fmt"
)

// Rule rejection kinds. Every rejected action wraps exactly one of these and
// leaves the game state untouched; replay drivers treat any rejection as a
// divergence from the recorded game.
var (
	ErrIllegalPhase          = errors.New("illegal phase")
	ErrIllegalTarget         = errors.New("illegal target")
	ErrInsufficientResources = errors.New("insufficient resources")
	ErrUnavailable           = errors.New("unavailable")
	ErrGameCompleted         = errors.New("game completed")
)

func ruleErr(kind error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...))
}

// errKind names the sentinel for API responses and replay reports.
func errKind(err error) string {
	switch {
	case errors.Is(err, ErrIllegalPhase):
		return "IllegalPhase"
	case errors.Is(err, ErrIllegalTarget):
		return "IllegalTarget"
	case errors.Is(err, ErrInsufficientResources):
		return "InsufficientResources"
	case errors.Is(err, ErrUnavailable):
		return "Unavailable"
	case errors.Is(err, ErrGameCompleted):
		return "GameCompleted"
	case err == nil:
		return ""
	}
	return "Internal"
}
