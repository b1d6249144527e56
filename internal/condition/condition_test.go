package condition

import (
	"reflect"
	"testing"
)

func TestEval(t *testing.T) {
	vars := map[string]any{
		"include_docs": true,
		"use_db":       false,
		"license":      "mit",
		"empty":        "",
		"count":        3,
		"zero":         0,
	}

	tests := []struct {
		expr string
		want bool
	}{
		{"include_docs", true},
		{"use_db", false},
		{"!use_db", true},
		{"license", true},
		{"empty", false},
		{"count", true},
		{"zero", false},
		{"missing", false},
		{"include_docs && license", true},
		{"include_docs && use_db", false},
		{"use_db || license", true},
		{"use_db || empty", false},
		{"!(use_db || empty)", true},
		{"include_docs && !use_db && license", true},
		{"(include_docs || use_db) && license", true},
		{"!include_docs || use_db", false},
	}

	for _, tt := range tests {
		expr, err := Parse(tt.expr)
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", tt.expr, err)
		}
		if got := expr.Eval(vars); got != tt.want {
			t.Errorf("Eval(%q) = %v, want %v", tt.expr, got, tt.want)
		}
	}
}

func TestEvalDeterministic(t *testing.T) {
	vars := map[string]any{"a": true, "b": "x", "c": 0}

	expr, err := Parse("(a && b) || !c")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	first := expr.Eval(vars)
	for i := 0; i < 100; i++ {
		if expr.Eval(vars) != first {
			t.Fatal("identical environment produced different decisions")
		}
	}
}

func TestParseErrors(t *testing.T) {
	tests := []string{
		"",
		"   ",
		"&&",
		"a &&",
		"|| b",
		"(a",
		"a)",
		"a b",
		"a & b",
		"a | b",
		"!",
		"a == b",
		"1name",
	}

	for _, input := range tests {
		if _, err := Parse(input); err == nil {
			t.Errorf("Parse(%q) should have failed", input)
		}
	}
}

func TestParseErrorPosition(t *testing.T) {
	_, err := Parse("a && $")
	if err == nil {
		t.Fatal("expected parse error")
	}

	perr, ok := err.(*ParseError)
	if !ok {
		t.Fatalf("expected *ParseError, got %T", err)
	}
	if perr.Offset != 5 {
		t.Errorf("wrong offset: got %d, want 5", perr.Offset)
	}
}

func TestVars(t *testing.T) {
	expr, err := Parse("(include_docs || use_db) && !use_db && license")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	got := Vars(expr)
	want := []string{"include_docs", "license", "use_db"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Vars = %v, want %v", got, want)
	}
}

func TestTruthy(t *testing.T) {
	tests := []struct {
		value any
		want  bool
	}{
		{true, true},
		{false, false},
		{"x", true},
		{"", false},
		{1, true},
		{0, false},
		{int64(2), true},
		{int64(0), false},
		{1.5, true},
		{0.0, false},
		{nil, false},
	}

	for _, tt := range tests {
		if got := Truthy(tt.value); got != tt.want {
			t.Errorf("Truthy(%v) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestString(t *testing.T) {
	expr, err := Parse("!a && (b || c)")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	// Re-parsing the canonical form must yield an equivalent expression.
	again, err := Parse(expr.String())
	if err != nil {
		t.Fatalf("re-parse of %q failed: %v", expr.String(), err)
	}

	vars := map[string]any{"a": false, "b": true, "c": false}
	if expr.Eval(vars) != again.Eval(vars) {
		t.Error("canonical form is not equivalent to original")
	}
}
