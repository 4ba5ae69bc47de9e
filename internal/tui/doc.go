/*
Package tui implements the interactive car inventory view.

# Architecture

The TUI follows the Bubble Tea Model-Update-View pattern:
  - Model: holds the UI state around a viewstate.Controller
  - Update: processes key presses and command results
  - View: renders the current mode from Controller.Snapshot()

# Key Components

  - model.go: Mode enum, Model struct and message types
  - keys.go: keyboard handling, one handler per mode
  - actions.go: tea.Cmd builders for every network call
  - render.go: lipgloss rendering of the list and modals
  - car_form.go / filter_panel.go: input forms
  - sync_state.go: cancellation of in-flight requests

Network calls never run inside Update. They are returned as commands and
their results come back as messages; the controller is safe to call from
the command goroutines.
*/
package tui
