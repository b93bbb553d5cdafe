package enums

// Command is a register action resolved from a global keyboard shortcut.
type Command string

const (
	CommandNone               Command = "none"
	CommandFocusScanner       Command = "focus_scanner"
	CommandToggleManualEntry  Command = "toggle_manual_entry"
	CommandToggleScannerPause Command = "toggle_scanner_pause"
	CommandFinalizeBasket     Command = "finalize_basket"
	CommandCancelBasket       Command = "cancel_basket"
	CommandCycleNextBasket    Command = "cycle_next_basket"
	CommandCyclePrevBasket    Command = "cycle_prev_basket"
	CommandCloseOverview      Command = "close_overview"
	CommandCloseEditor        Command = "close_editor"
	CommandGoHome             Command = "go_home"
)

// String implements fmt.Stringer.
func (c Command) String() string {
	return string(c)
}
