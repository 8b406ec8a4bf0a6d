// Package tui provides the interactive gap picker used when issues are
// created in selective mode.
//
// The picker lists candidate gaps grouped by priority, most urgent first,
// with every gap checked. Space toggles the current gap, a toggles all,
// enter confirms and q or esc cancels:
//
//	selected, err := tui.RunPicker(gaps)
//	if errors.Is(err, tui.ErrCancelled) {
//	    // nothing to create
//	}
//
// PromptChooser is a line-based fallback for terminals that cannot run
// the full-screen picker.
package tui
