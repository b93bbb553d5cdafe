package checkout

import (
	"strings"

	"github.com/tillpoint/tillpoint-backend/pkg/enums"
)

// Key names as the UI reports them (KeyboardEvent.key values).
const (
	keyF1        = "f1"
	keyF2        = "f2"
	keyF3        = "f3"
	keyF9        = "f9"
	keyF10       = "f10"
	keyArrowUp   = "arrowup"
	keyArrowDown = "arrowdown"
	keyEscape    = "escape"
)

var keyCommands = map[string]enums.Command{
	keyF1:        enums.CommandFocusScanner,
	keyF2:        enums.CommandToggleManualEntry,
	keyF3:        enums.CommandToggleScannerPause,
	keyF9:        enums.CommandFinalizeBasket,
	keyF10:       enums.CommandCancelBasket,
	keyArrowUp:   enums.CommandCyclePrevBasket,
	keyArrowDown: enums.CommandCycleNextBasket,
}

// Dispatch resolves a raw key name against the current modal context.
// Escape follows strict precedence: an open overview closes first, then an
// open editor, then the page-level go-home action. Every other shortcut is
// suppressed while a panel is open, except basket cycling which always
// works. handled=true tells the UI to swallow the browser default.
func Dispatch(key string, modal enums.ModalContext) (enums.Command, bool) {
	normalized := strings.ToLower(strings.TrimSpace(key))

	if normalized == keyEscape {
		switch modal {
		case enums.ModalContextOverview:
			return enums.CommandCloseOverview, true
		case enums.ModalContextPriceEditor:
			return enums.CommandCloseEditor, true
		default:
			return enums.CommandGoHome, true
		}
	}

	cmd, ok := keyCommands[normalized]
	if !ok {
		return enums.CommandNone, false
	}

	if modal != enums.ModalContextNone && !cyclesBaskets(cmd) {
		return enums.CommandNone, true
	}
	return cmd, true
}

func cyclesBaskets(cmd enums.Command) bool {
	return cmd == enums.CommandCycleNextBasket || cmd == enums.CommandCyclePrevBasket
}
