package diff

import (
	"strings"
	"testing"
)

func TestUnifiedIdentical(t *testing.T) {
	g := NewGenerator()
	content := []byte("a\nb\nc\n")

	if out := g.Unified("f", "f", content, content, nil); out != "" {
		t.Errorf("identical content should produce empty diff, got:\n%s", out)
	}
}

func TestUnifiedAddition(t *testing.T) {
	g := NewGenerator()

	out := g.Unified("f", "f", []byte("a\nc\n"), []byte("a\nb\nc\n"), nil)
	if !strings.Contains(out, "+b") {
		t.Errorf("diff should show added line:\n%s", out)
	}
	if strings.Contains(out, "-a") || strings.Contains(out, "-c") {
		t.Errorf("unchanged lines must not show as removed:\n%s", out)
	}
}

func TestUnifiedRemoval(t *testing.T) {
	g := NewGenerator()

	out := g.Unified("f", "f", []byte("a\nb\nc\n"), []byte("a\nc\n"), nil)
	if !strings.Contains(out, "-b") {
		t.Errorf("diff should show removed line:\n%s", out)
	}
}

func TestUnifiedReplacement(t *testing.T) {
	g := NewGenerator()

	out := g.Unified("old.cfg", "new.cfg", []byte("port=80\n"), []byte("port=8080\n"), nil)
	if !strings.Contains(out, "-port=80") || !strings.Contains(out, "+port=8080") {
		t.Errorf("diff should show both sides of a change:\n%s", out)
	}
	if !strings.Contains(out, "old.cfg") || !strings.Contains(out, "new.cfg") {
		t.Errorf("diff should include the file header:\n%s", out)
	}
}

func TestUnifiedHunkHeader(t *testing.T) {
	g := NewGenerator()

	old := "1\n2\n3\n4\n5\n6\n7\n8\n9\n10\n"
	newer := "1\n2\n3\n4\n5\n6\n7\n8\n9\nX\n"

	out := g.Unified("f", "f", []byte(old), []byte(newer), nil)
	if !strings.Contains(out, "@@") {
		t.Errorf("diff should contain hunk headers:\n%s", out)
	}
	// Far-away unchanged lines stay outside the hunk.
	if strings.Contains(out, " 1\n") {
		t.Errorf("line 1 is beyond the context window:\n%s", out)
	}
}

func TestUnifiedBinary(t *testing.T) {
	g := NewGenerator()

	out := g.Unified("f", "f", []byte{0x00, 0x01}, []byte("text"), nil)
	if !strings.Contains(out, "Binary files differ") {
		t.Errorf("binary content should not be diffed:\n%s", out)
	}
}

func TestGeneratorReuse(t *testing.T) {
	g := NewGenerator()

	first := g.Unified("f", "f", []byte("a\n"), []byte("b\n"), nil)
	// A second, unrelated diff must not be polluted by the first.
	second := g.Unified("f", "f", []byte("x\ny\n"), []byte("x\nz\n"), nil)

	if !strings.Contains(first, "-a") || !strings.Contains(first, "+b") {
		t.Errorf("first diff wrong:\n%s", first)
	}
	if !strings.Contains(second, "-y") || !strings.Contains(second, "+z") {
		t.Errorf("second diff wrong:\n%s", second)
	}
	if strings.Contains(second, "a") && strings.Contains(second, "+b") {
		t.Errorf("second diff polluted by first:\n%s", second)
	}
}

func TestExpandTabs(t *testing.T) {
	if got := expandTabs("a\tb", 4); got != "a   b" {
		t.Errorf("expandTabs = %q", got)
	}
	if got := expandTabs("none", 4); got != "none" {
		t.Errorf("expandTabs without tabs = %q", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("abcdefgh", 5); got != "ab..." {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("ab", 5); got != "ab" {
		t.Errorf("truncate short = %q", got)
	}
}
