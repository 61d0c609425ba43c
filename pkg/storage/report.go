package storage

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"

	"progdemo/pkg/common"
)

const maxNameWidth = 48

// Output renders the directory listing as a numbered table.
func (d DirectoryInfo) Output() *common.Output {
	if d.Count == 0 {
		return &common.Output{Message: fmt.Sprintf("Directory %s is empty", d.Key)}
	}
	table := &common.Table{Header: []string{"#", "Name", "Size", "Modified", "Age"}}
	for i, f := range d.Files {
		table.Append(
			strconv.Itoa(i+1),
			truncate(f.Name, maxNameWidth),
			f.SizeHR,
			f.Modified.Format("2006-01-02 15:04"),
			humanize.Time(f.Modified),
		)
	}
	return &common.Output{
		Message: fmt.Sprintf("Contents of %s (%s)", d.Key, d.Path),
		Table:   table,
		KV:      []common.KV{{Key: "Total", Value: fmt.Sprintf("%d files, %s", d.Count, d.SizeHR)}},
	}
}

// Output renders the summary as one row per directory plus a total row.
func (s Summary) Output() *common.Output {
	table := &common.Table{Header: []string{"Directory", "Files", "Size", "Path"}}
	for _, d := range s.Dirs {
		table.Append(d.Key, strconv.Itoa(d.Count), d.SizeHR, d.Path)
	}
	table.Append("TOTAL", strconv.Itoa(s.Total.Count), s.Total.SizeHR, s.Total.Path)
	return &common.Output{Table: table}
}

// SearchOutput renders search results.
func SearchOutput(query string, files []FileRecord) *common.Output {
	if len(files) == 0 {
		return &common.Output{Message: fmt.Sprintf("Nothing found for %q", query)}
	}
	table := &common.Table{Header: []string{"#", "Name", "Directory", "Size", "Modified"}}
	for i, f := range files {
		table.Append(
			strconv.Itoa(i+1),
			truncate(f.Name, maxNameWidth),
			string(f.Dir),
			f.SizeHR,
			f.Modified.Format("2006-01-02 15:04"),
		)
	}
	return &common.Output{
		Message: fmt.Sprintf("Found %d files:", len(files)),
		Table:   table,
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
