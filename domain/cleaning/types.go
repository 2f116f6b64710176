package cleaning

import (
	"fmt"
	"strings"

	"daxforge/domain/profile"
)

// ActionKind identifies a cleaning remedy
type ActionKind string

const (
	ActionRemoveRows     ActionKind = "remove_rows"
	ActionFillMean       ActionKind = "fill_mean"
	ActionFillMedian     ActionKind = "fill_median"
	ActionFillMode       ActionKind = "fill_mode"
	ActionFillCustom     ActionKind = "fill_custom"
	ActionChangeType     ActionKind = "change_type"
	ActionTrimWhitespace ActionKind = "trim_whitespace"
)

// Action is a tagged cleaning remedy. Each variant carries exactly the
// parameters it needs, so invalid combinations cannot be represented.
type Action interface {
	Kind() ActionKind
}

// RemoveRows drops the rows whose cells are missing in the target column
type RemoveRows struct{}

// FillMean fills missing cells with the column mean
type FillMean struct{}

// FillMedian fills missing cells with the column median
type FillMedian struct{}

// FillMode fills missing cells with the most frequent value
type FillMode struct{}

// FillCustom fills missing cells with a user-supplied value
type FillCustom struct {
	Value string `json:"value"`
}

// ChangeType coerces the column to the target type
type ChangeType struct {
	Target profile.DataType `json:"target"`
}

// TrimWhitespace trims cell whitespace; statistics-neutral by contract
type TrimWhitespace struct{}

func (RemoveRows) Kind() ActionKind     { return ActionRemoveRows }
func (FillMean) Kind() ActionKind       { return ActionFillMean }
func (FillMedian) Kind() ActionKind     { return ActionFillMedian }
func (FillMode) Kind() ActionKind       { return ActionFillMode }
func (FillCustom) Kind() ActionKind     { return ActionFillCustom }
func (ChangeType) Kind() ActionKind     { return ActionChangeType }
func (TrimWhitespace) Kind() ActionKind { return ActionTrimWhitespace }

// IsFill reports whether the action is one of the fill variants
func IsFill(a Action) bool {
	switch a.Kind() {
	case ActionFillMean, ActionFillMedian, ActionFillMode, ActionFillCustom:
		return true
	}
	return false
}

// Selection is a user's chosen remedy for one (file, column) pair
type Selection struct {
	FileName string `json:"file_name"`
	Column   string `json:"column"`
	Action   Action `json:"-"`
}

// SelectionSet holds the staged selections for one file, at most one per
// column. Staging a new action for a column replaces the prior one.
type SelectionSet map[string]Action

// Clone returns a shallow copy (actions are immutable values)
func (s SelectionSet) Clone() SelectionSet {
	out := make(SelectionSet, len(s))
	for col, action := range s {
		out[col] = action
	}
	return out
}

// ParseAction builds a tagged action from wire-level kind and parameters.
// The parameter bag is validated here so handlers stay thin.
func ParseAction(kind string, value string, target string) (Action, error) {
	switch ActionKind(strings.ToLower(strings.TrimSpace(kind))) {
	case ActionRemoveRows:
		return RemoveRows{}, nil
	case ActionFillMean:
		return FillMean{}, nil
	case ActionFillMedian:
		return FillMedian{}, nil
	case ActionFillMode:
		return FillMode{}, nil
	case ActionFillCustom:
		if value == "" {
			return nil, fmt.Errorf("fill_custom requires a value")
		}
		return FillCustom{Value: value}, nil
	case ActionChangeType:
		switch profile.DataType(target) {
		case profile.TypeNumber, profile.TypeString:
			return ChangeType{Target: profile.DataType(target)}, nil
		default:
			return nil, fmt.Errorf("change_type target must be number or string, got %q", target)
		}
	case ActionTrimWhitespace:
		return TrimWhitespace{}, nil
	default:
		return nil, fmt.Errorf("unknown cleaning action %q", kind)
	}
}
