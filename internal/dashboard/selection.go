package dashboard

import (
	"strings"

	"cartorios/internal/core"
)

// Mode is the analysis level the user picked: a whole state or one
// office.
type Mode string

const (
	ModeRegion Mode = "region"
	ModeOffice Mode = "office"
)

// Selection is the user-chosen scope for a query.
type Selection struct {
	Mode Mode
	UF   string
	CNS  string // office mode only; empty until the user picks one
}

// Normalize trims fields and defaults an empty mode to region view.
func (s Selection) Normalize() Selection {
	s.Mode = Mode(strings.TrimSpace(string(s.Mode)))
	if s.Mode == "" {
		s.Mode = ModeRegion
	}
	s.UF = strings.TrimSpace(s.UF)
	s.CNS = strings.TrimSpace(s.CNS)
	return s
}

// Resolve turns a selection into the set of office codes in scope.
//
// Region mode returns every office code whose UF matches; office mode
// returns a singleton. An office-mode selection without a chosen CNS
// resolves to an empty scope, which the service reports as "not ready"
// rather than "no data".
func Resolve(sel Selection, offices []core.Office) core.Scope {
	switch sel.Mode {
	case ModeOffice:
		if sel.CNS == "" {
			return core.NewScope()
		}
		return core.NewScope(sel.CNS)
	default:
		scope := make(core.Scope)
		for _, o := range offices {
			if o.UF == sel.UF {
				scope[o.CNS] = struct{}{}
			}
		}
		return scope
	}
}
