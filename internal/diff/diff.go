// Package diff generates styled unified diffs, used to preview what an
// update would change and to inspect conflicting files.
package diff

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Options configures diff generation. All fields are optional.
type Options struct {
	// ContextLines is the number of unchanged lines shown around changes.
	// Default: 3
	ContextLines int

	// TabWidth is the number of spaces each tab expands to. Default: 4
	TabWidth int
}

// Generator produces unified diffs, reusing internal allocations across
// calls. Create once and reuse when diffing many files.
type Generator struct {
	v     map[int]int
	trace []map[int]int
}

// NewGenerator creates a diff generator for repeated use.
func NewGenerator() *Generator {
	return &Generator{
		v:     make(map[int]int, 100),
		trace: make([]map[int]int, 0, 100),
	}
}

var (
	headerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	hunkStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("cyan")).Bold(true)
	addedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("22"))
	removedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("52"))
)

// Unified generates a unified diff between two byte contents. Identical
// contents produce an empty string; binary content is reported, not diffed.
func (g *Generator) Unified(oldPath, newPath string, old, newer []byte, opts *Options) string {
	if opts == nil {
		opts = &Options{}
	}
	if opts.ContextLines == 0 {
		opts.ContextLines = 3
	}
	if opts.TabWidth == 0 {
		opts.TabWidth = 4
	}

	if isBinary(old) || isBinary(newer) {
		return "Binary files differ\n"
	}

	oldLines := splitLines(string(old))
	newLines := splitLines(string(newer))

	if bytes.Equal(old, newer) {
		return ""
	}

	edits := g.editScript(oldLines, newLines)
	hunks := buildHunks(edits, opts.ContextLines)
	if len(hunks) == 0 {
		return ""
	}

	var buf strings.Builder
	buf.WriteString(headerStyle.Render("--- "+oldPath) + "\n")
	buf.WriteString(headerStyle.Render("+++ "+newPath) + "\n")

	width := terminalWidth()
	for _, h := range hunks {
		buf.WriteString(formatHunk(h, opts, width))
	}

	return buf.String()
}

type op int

const (
	opSame op = iota
	opAdd
	opDel
)

type line struct {
	oldNum  int // line number in old content (0 if added)
	newNum  int // line number in new content (0 if removed)
	content string
	op      op
}

type hunk struct {
	oldStart, oldCount int
	newStart, newCount int
	lines              []line
}

// editScript implements Myers' shortest-edit-script algorithm
// ("An O(ND) Difference Algorithm and Its Variations", 1986).
func (g *Generator) editScript(old, newer []string) []line {
	n, m := len(old), len(newer)
	maxD := n + m

	for k := range g.v {
		delete(g.v, k)
	}
	g.v[1] = 0
	g.trace = g.trace[:0]

	for d := 0; d <= maxD; d++ {
		snapshot := make(map[int]int, len(g.v))
		for k, val := range g.v {
			snapshot[k] = val
		}
		g.trace = append(g.trace, snapshot)

		for k := -d; k <= d; k += 2 {
			var x int
			if k == -d || (k != d && g.v[k-1] < g.v[k+1]) {
				x = g.v[k+1] // down: deletion from old
			} else {
				x = g.v[k-1] + 1 // right: insertion from new
			}

			y := x - k
			for x < n && y < m && old[x] == newer[y] {
				x++
				y++
			}
			g.v[k] = x

			if x >= n && y >= m {
				return g.backtrack(old, newer)
			}
		}
	}

	return g.backtrack(old, newer)
}

func (g *Generator) backtrack(old, newer []string) []line {
	var result []line
	x, y := len(old), len(newer)

	for d := len(g.trace) - 1; d >= 0; d-- {
		v := g.trace[d]
		k := x - y

		var prevK int
		if k == -d || (k != d && v[k-1] < v[k+1]) {
			prevK = k + 1
		} else {
			prevK = k - 1
		}

		prevX := v[prevK]
		prevY := prevX - prevK

		for x > prevX && y > prevY {
			x--
			y--
			result = append([]line{{oldNum: x + 1, newNum: y + 1, content: old[x], op: opSame}}, result...)
		}

		if d > 0 {
			if x == prevX {
				y--
				result = append([]line{{newNum: y + 1, content: newer[y], op: opAdd}}, result...)
			} else {
				x--
				result = append([]line{{oldNum: x + 1, content: old[x], op: opDel}}, result...)
			}
		}
	}

	return result
}

// buildHunks groups edit-script lines into hunks with surrounding context.
func buildHunks(lines []line, context int) []hunk {
	if len(lines) == 0 {
		return nil
	}

	var hunks []hunk
	var current *hunk

	for i, l := range lines {
		if l.op != opSame {
			if current == nil {
				start := i - context
				if start < 0 {
					start = 0
				}
				current = &hunk{}
				current.lines = append(current.lines, lines[start:i]...)
			}
			current.lines = append(current.lines, l)
			continue
		}

		if current == nil {
			continue
		}
		current.lines = append(current.lines, l)

		// Close the hunk once enough trailing context separates it from
		// the next change.
		trailing := 1
		for j := i + 1; j < len(lines) && lines[j].op == opSame; j++ {
			trailing++
		}
		if trailing > context*2 && i < len(lines)-1 {
			trim := trailing - context
			if trim > 0 && trim <= len(current.lines) {
				current.lines = current.lines[:len(current.lines)-trim]
			}
			finalize(current)
			hunks = append(hunks, *current)
			current = nil
		}
	}

	if current != nil {
		finalize(current)
		hunks = append(hunks, *current)
	}

	return hunks
}

func finalize(h *hunk) {
	for _, l := range h.lines {
		if l.oldNum > 0 && (h.oldStart == 0 || l.oldNum < h.oldStart) {
			h.oldStart = l.oldNum
		}
		if l.newNum > 0 && (h.newStart == 0 || l.newNum < h.newStart) {
			h.newStart = l.newNum
		}
		if l.op == opDel || l.op == opSame {
			h.oldCount++
		}
		if l.op == opAdd || l.op == opSame {
			h.newCount++
		}
	}
}

func formatHunk(h hunk, opts *Options, width int) string {
	var buf strings.Builder

	header := fmt.Sprintf("@@ -%d,%d +%d,%d @@", h.oldStart, h.oldCount, h.newStart, h.newCount)
	buf.WriteString(hunkStyle.Render(header) + "\n")

	for _, l := range h.lines {
		content := truncate(expandTabs(l.content, opts.TabWidth), width-4)

		switch l.op {
		case opAdd:
			buf.WriteString(addedStyle.Render("+"+content) + "\n")
		case opDel:
			buf.WriteString(removedStyle.Render("-"+content) + "\n")
		default:
			buf.WriteString(" " + content + "\n")
		}
	}

	return buf.String()
}

// isBinary checks the first 8KiB for null bytes.
func isBinary(data []byte) bool {
	n := len(data)
	if n > 8192 {
		n = 8192
	}
	return bytes.IndexByte(data[:n], 0) != -1
}

func splitLines(s string) []string {
	if s == "" {
		return []string{}
	}
	lines := strings.Split(s, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func expandTabs(s string, tabWidth int) string {
	if !strings.Contains(s, "\t") {
		return s
	}

	var buf strings.Builder
	col := 0
	for _, r := range s {
		if r == '\t' {
			spaces := tabWidth - (col % tabWidth)
			buf.WriteString(strings.Repeat(" ", spaces))
			col += spaces
		} else {
			buf.WriteRune(r)
			col++
		}
	}
	return buf.String()
}

func truncate(s string, maxWidth int) string {
	if maxWidth <= 0 {
		maxWidth = 80
	}
	if utf8.RuneCountInString(s) <= maxWidth {
		return s
	}

	runes := []rune(s)
	if maxWidth < 3 {
		return string(runes[:maxWidth])
	}
	return string(runes[:maxWidth-3]) + "..."
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}
