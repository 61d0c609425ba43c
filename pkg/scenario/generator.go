package scenario

import (
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"progdemo/pkg/common"
	"progdemo/pkg/display"
	"progdemo/pkg/storage"
)

const lineAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789     "

// Generator writes test files into temp/ and processes them into processed/.
type Generator struct {
	store storage.Manager
	disp  display.Display
	rand  *rand.Rand
	now   func() time.Time
}

func NewGenerator(env *Env) *Generator {
	return &Generator{
		store: env.Storage,
		disp:  env.Display,
		rand:  env.Rand,
		now:   time.Now,
	}
}

// Generate creates count files named test_file_NNN_{ts}{ext} with an
// extension picked from exts, and returns their paths.
func (g *Generator) Generate(count int, exts []string) ([]string, error) {
	dir, _ := g.store.Path(storage.KeyTemp)
	stamp := g.now().Format("20060102_150405")

	g.disp.Print(fmt.Sprintf("\n🔨 Generating %d test files...\n", count))

	paths := make([]string, 0, count)
	for i := 1; i <= count; i++ {
		ext := exts[g.rand.IntN(len(exts))]
		path := filepath.Join(dir, fmt.Sprintf("test_file_%03d_%s%s", i, stamp, ext))

		if err := os.WriteFile(path, []byte(g.content(i, stamp)), 0644); err != nil {
			return paths, fmt.Errorf("failed to write test file: %w", err)
		}
		paths = append(paths, path)

		if i%5 == 0 {
			g.disp.Log(fmt.Sprintf("   Created %d files...", i))
		}
	}

	g.disp.Print(fmt.Sprintf("✅ Created %d files\n", count))
	return paths, nil
}

func (g *Generator) content(n int, stamp string) string {
	lines := []string{
		fmt.Sprintf("FILE #%d", n),
		"Created: " + stamp,
		"Generator: progdemo",
		strings.Repeat("-", 40),
	}

	for range 5 + g.rand.IntN(11) {
		b := make([]byte, 20+g.rand.IntN(41))
		for i := range b {
			b[i] = lineAlphabet[g.rand.IntN(len(lineAlphabet))]
		}
		lines = append(lines, string(b))
	}

	lines = append(lines, strings.Repeat("-", 40), fmt.Sprintf("END OF FILE #%d", n))
	return strings.Join(lines, "\n")
}

// Process wraps the content of path in a report block and writes it to
// processed/{stem}_processed_{ts}.txt. Safe for concurrent use on
// distinct paths.
func (g *Generator) Process(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}
	content := string(data)

	name := filepath.Base(path)
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	stamp := g.now().Format("20060102_150405")

	dir, _ := g.store.Path(storage.KeyProcessed)
	out := filepath.Join(dir, fmt.Sprintf("%s_processed_%s.txt", stem, stamp))

	rule, thin := strings.Repeat("=", 60), strings.Repeat("-", 60)
	report := strings.Join([]string{
		rule,
		"PROCESSED FILE",
		rule,
		"Original: " + name,
		"Processed: " + stamp,
		fmt.Sprintf("Size: %d characters", utf8.RuneCountInString(content)),
		fmt.Sprintf("Lines: %d", countLines(content)),
		thin,
		content,
		thin,
		"END OF PROCESSED FILE",
		rule,
	}, "\n")

	f, err := os.OpenFile(out, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", filepath.Base(out), err)
	}
	if _, err := f.WriteString(report); err != nil {
		f.Close()
		os.Remove(out)
		return "", fmt.Errorf("failed to write %s: %w", filepath.Base(out), err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return out, nil
}

func countLines(s string) int {
	if s == "" {
		return 0
	}
	return strings.Count(strings.TrimSuffix(s, "\n"), "\n") + 1
}

// Status reports file counts and sizes of temp/ and processed/.
func (g *Generator) Status() *common.Output {
	out := &common.Output{Message: "\n📊 STORAGE STATUS:"}
	for _, key := range []storage.Key{storage.KeyTemp, storage.KeyProcessed} {
		info := g.store.List(key)
		out.KV = append(out.KV,
			common.KV{Key: key.String() + " files", Value: fmt.Sprintf("%d", info.Count)},
			common.KV{Key: key.String() + " size", Value: info.SizeHR},
		)
	}
	return out
}
