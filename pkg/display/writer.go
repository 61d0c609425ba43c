package display

import "io"

// Mutable
type progressWriter struct {
	bar     Bar
	written int64
}

// NewBarWriter returns a writer that advances b by the number of bytes
// written through it. Combine with io.MultiWriter to track a copy.
func NewBarWriter(b Bar) io.Writer {
	return &progressWriter{bar: b}
}

func (pw *progressWriter) Write(p []byte) (int, error) {
	n := len(p)
	pw.written += int64(n)
	pw.bar.Add(int64(n))
	return n, nil
}
