package tui

import "time"

// UI layout constants
const (
	// Modal dimensions
	ModalWidthMargin  = 6 // m.width - 6
	ModalHeightMargin = 3 // m.height - 3
	ModalMaxWidth     = 90

	// Main view
	HeaderLines      = 3 // title + query summary + blank line
	StatusBarLines   = 1
	TableChromeLines = 4 // border top/bottom + header + header separator

	// Brand picker rows shown under the brand input
	PickerVisibleRows = 5

	// History entries loaded into the modal
	HistoryModalLimit = 100

	// Status messages clear after this delay
	StatusTimeout = 4 * time.Second
)
