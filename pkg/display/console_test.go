package display

import (
	"bytes"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"progdemo/pkg/common"
)

func newTestDisplay(buf *bytes.Buffer) (*consoleDisplay, *time.Time) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	d := NewWriterDisplay(buf).(*consoleDisplay)
	d.now = func() time.Time { return now }
	return d, &now
}

func TestConsoleDisplay(t *testing.T) {
	buf := &bytes.Buffer{}
	d, now := newTestDisplay(buf)
	d.SetVerbose(true)
	if !d.Verbose() {
		t.Error("Expected verbose to be set")
	}

	bar := d.StartBar("Processing", 20, WithUnit("files"))

	output := buf.String()
	if !strings.Contains(output, "Processing") {
		t.Errorf("Expected output to contain bar description, got: %q", output)
	}
	if !strings.Contains(output, "0/20 files") {
		t.Errorf("Expected counter, got: %q", output)
	}

	buf.Reset()
	*now = now.Add(4 * time.Second)
	bar.Add(10)
	output = buf.String()
	if !strings.Contains(output, clearLine) {
		t.Errorf("Expected ANSI clear codes, got: %q", output)
	}
	if !strings.Contains(output, " 50%") {
		t.Errorf("Expected 50%%, got: %q", output)
	}
	if !strings.Contains(output, "10/20 files [00:04<00:04, 2.50 files/s]") {
		t.Errorf("Expected timing, got: %q", output)
	}

	buf.Reset()
	bar.SetPostfix("ok", "10", "failed", "0")
	output = buf.String()
	if !strings.Contains(output, "ok=10, failed=0") {
		t.Errorf("Expected postfix, got: %q", output)
	}

	buf.Reset()
	bar.Log("Hello")
	output = buf.String()
	if !strings.HasPrefix(output, clearLine+"Hello\n") {
		t.Errorf("Expected log above bar, got: %q", output)
	}
	if !strings.Contains(output, " 50%") {
		t.Errorf("Expected bar reprint, got: %q", output)
	}

	buf.Reset()
	bar.Add(10)
	bar.Done()
	output = buf.String()
	if !strings.HasSuffix(output, "20/20 files [00:04<00:00, 5.00 files/s] ok=10, failed=0\n") {
		t.Errorf("Expected final bar line, got: %q", output)
	}
	if d.drawn != 0 || len(d.bars) != 0 {
		t.Errorf("Expected no active bars, got %d drawn, %d bars", d.drawn, len(d.bars))
	}

	buf.Reset()
	bar.Add(1)
	bar.Done()
	if buf.Len() != 0 {
		t.Errorf("Expected no output after Done, got: %q", buf.String())
	}

	d.Close()
}

func TestNestedTransientBar(t *testing.T) {
	buf := &bytes.Buffer{}
	d, _ := newTestDisplay(buf)

	outer := d.StartBar("Overall", 2)
	inner := d.StartBar("file_1.dat", 2048, WithBytes(), Transient())
	if d.drawn != 2 {
		t.Fatalf("Expected 2 stacked bars, got %d", d.drawn)
	}

	buf.Reset()
	inner.Add(1024)
	output := buf.String()
	if strings.Count(output, clearLine) != 2 {
		t.Errorf("Expected both lines cleared, got: %q", output)
	}
	if !strings.Contains(output, "1.0 kB/2.0 kB") {
		t.Errorf("Expected humanized bytes, got: %q", output)
	}

	buf.Reset()
	inner.Done()
	output = buf.String()
	if strings.Contains(output, "file_1.dat") {
		t.Errorf("Transient bar should be erased, got: %q", output)
	}
	if !strings.Contains(output, "Overall") {
		t.Errorf("Expected outer bar redrawn, got: %q", output)
	}

	outer.Add(2)
	buf.Reset()
	d.Close()
	if !strings.Contains(buf.String(), "2/2 it") {
		t.Errorf("Expected Close to leave outer bar, got: %q", buf.String())
	}
}

func TestUnknownTotal(t *testing.T) {
	buf := &bytes.Buffer{}
	d, _ := newTestDisplay(buf)

	b := d.StartBar("", 0, WithUnit("items"))
	b.Add(7)
	if !strings.Contains(buf.String(), "  0%|") || !strings.Contains(buf.String(), "7 items [00:00<?") {
		t.Errorf("Unexpected output: %q", buf.String())
	}
	b.Done()
}

func TestBarWriter(t *testing.T) {
	buf := &bytes.Buffer{}
	d, _ := newTestDisplay(buf)

	b := d.StartBar("copy", 10, WithBytes())
	var dst bytes.Buffer
	if _, err := io.Copy(io.MultiWriter(&dst, NewBarWriter(b)), strings.NewReader("0123456789")); err != nil {
		t.Fatal(err)
	}
	if dst.String() != "0123456789" {
		t.Errorf("Unexpected copy: %q", dst.String())
	}
	if got := b.(*bar).n; got != 10 {
		t.Errorf("Expected bar at 10, got %d", got)
	}
}

func TestRender(t *testing.T) {
	buf := &bytes.Buffer{}
	d, _ := newTestDisplay(buf)

	tbl := &common.Table{Header: []string{"Name", "Size"}}
	tbl.Append("a.txt", "10.0 B")
	tbl.Append("notes.log", "20.0 B")
	d.Render(&common.Output{
		Message: "Downloads",
		KV:      []common.KV{{Key: "Total", Value: "30.0 B"}},
		Table:   tbl,
	})

	want := "Downloads\n" +
		"Total:       30.0 B\n" +
		"Name       Size    \n" +
		"-------------------\n" +
		"a.txt      10.0 B  \n" +
		"notes.log  20.0 B  \n"
	if buf.String() != want {
		t.Errorf("Render mismatch:\ngot:  %q\nwant: %q", buf.String(), want)
	}
}

func TestLogHandler(t *testing.T) {
	buf := &bytes.Buffer{}
	d, _ := newTestDisplay(buf)

	level := new(slog.LevelVar)
	logger := slog.New(NewLogHandler(d, level))

	logger.Debug("hidden")
	logger.Info("Archiving", "dir", "temp")
	if strings.Contains(buf.String(), "hidden") {
		t.Errorf("Debug should be filtered, got: %q", buf.String())
	}
	if buf.String() != "level=INFO msg=Archiving dir=temp\n" {
		t.Errorf("Unexpected log line: %q", buf.String())
	}

	level.Set(slog.LevelDebug)
	logger.Debug("shown")
	if !strings.Contains(buf.String(), "msg=shown") {
		t.Errorf("Expected debug line, got: %q", buf.String())
	}
}
