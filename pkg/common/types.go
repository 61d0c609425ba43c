// Package common provides the result and output types shared between the
// command handlers, the storage layer and the display.
package common

// ExecutionResult represents the outcome of a progdemo command.
type ExecutionResult struct {
	// ExitCode is the status code the process exits with.
	ExitCode int

	// Output is rendered by the display after the command returns.
	Output *Output
}

// Output holds structured data to be rendered on the console.
type Output struct {
	// Message is printed first, on its own line.
	Message string
	// KV is printed as aligned "key: value" lines.
	KV []KV
	// Table is printed last.
	Table *Table
}

// KV is a single labelled value.
type KV struct {
	Key   string
	Value string
}

// Table is a simple header + rows grid.
type Table struct {
	Header []string
	Rows   [][]string
}

// Append adds a row to the table.
func (t *Table) Append(cells ...string) {
	t.Rows = append(t.Rows, cells)
}

// Success returns a zero exit code result carrying out.
func Success(out *Output) *ExecutionResult {
	return &ExecutionResult{ExitCode: 0, Output: out}
}

// Failure returns a result with exit code 1 and a message.
func Failure(msg string) *ExecutionResult {
	return &ExecutionResult{ExitCode: 1, Output: &Output{Message: msg}}
}
