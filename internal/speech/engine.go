package speech

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Selection is the user-facing engine choice.
type Selection string

const (
	SelectionAuto   Selection = "auto"
	SelectionLegacy Selection = "legacy"
	SelectionModern Selection = "modern"
)

// ParseSelection validates an --engine flag value.
func ParseSelection(value string) (Selection, error) {
	switch Selection(value) {
	case SelectionAuto, SelectionLegacy, SelectionModern:
		return Selection(value), nil
	default:
		return "", fmt.Errorf("unknown engine %q (expected auto, legacy, or modern)", value)
	}
}

// Engine transcribes a local audio file in a given locale.
type Engine interface {
	Name() string
	TranscribeFile(ctx context.Context, path, locale string) (string, error)
}

// Resolve turns a selection into a concrete engine choice. Auto picks the
// modern engine only when the platform supports it and the status snapshot
// reports its model installed for the locale; explicit choices pass through
// untouched and fail later against their own preconditions.
func (s Selection) Resolve(status EnvironmentStatus) Selection {
	if s != SelectionAuto {
		return s
	}
	if status.Engines.Modern.Available && status.Engines.Modern.ModelInstalled {
		return SelectionModern
	}
	return SelectionLegacy
}

// NewEngine builds the engine for a resolved (non-auto) selection.
func NewEngine(sel Selection, platform Platform, logger *zap.Logger) (Engine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch sel {
	case SelectionLegacy:
		return &LegacyEngine{Platform: platform, Logger: logger}, nil
	case SelectionModern:
		return &ModernEngine{Platform: platform, Logger: logger}, nil
	default:
		return nil, fmt.Errorf("engine selection %q is not resolved to a concrete engine", sel)
	}
}
