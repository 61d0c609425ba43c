package display

import "progdemo/pkg/common"

// Bar is a single progress bar owned by a Display.
type Bar interface {
	// Add advances the counter by n.
	Add(n int64)
	// SetDescription replaces the text shown before the bar.
	SetDescription(desc string)
	// SetPostfix sets key/value pairs shown after the bar, e.g. "ok", "3".
	SetPostfix(kv ...string)
	// Log writes a message above the active bars.
	Log(msg string)
	// Done finishes the bar. Transient bars are erased, others are left
	// on screen in their final state. Calls after the first do nothing,
	// so a deferred Done may follow an explicit one.
	Done()
}

// Display handles the visualization of progress bars and logs.
type Display interface {
	// StartBar creates a bar below any bars already active.
	StartBar(desc string, total int64, opts ...BarOption) Bar
	// Log adds a log message to the display.
	Log(msg string)
	// Print adds a primary output message (e.g. table, info) to the display.
	Print(msg string)
	// Render prints structured command output.
	Render(out *common.Output)
	// SetVerbose enables or disables verbose logging.
	SetVerbose(v bool)
	Verbose() bool
	// Close finishes any bars still active.
	Close()
}
