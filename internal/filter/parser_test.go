package filter

import (
	"errors"
	"testing"
	"time"

	"github.com/akave-ai/logviewer/internal/model"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		input string
		want  []kind
	}{
		{"component:http", []kind{kindWord, kindCompare, kindWord, kindEnd}},
		{`level:"Error"`, []kind{kindWord, kindCompare, kindQuoted, kindEnd}},
		{"a AND b", []kind{kindWord, kindAnd, kindWord, kindEnd}},
		{"a or b", []kind{kindWord, kindOr, kindWord, kindEnd}},
		{"NOT a", []kind{kindNot, kindWord, kindEnd}},
		{"(a)", []kind{kindOpen, kindWord, kindClose, kindEnd}},
		{`key!="value"`, []kind{kindWord, kindCompare, kindQuoted, kindEnd}},
		{"msg~time", []kind{kindWord, kindCompare, kindWord, kindEnd}},
		{"path:/api/v1 @mt:x", []kind{kindWord, kindCompare, kindWord, kindWord, kindCompare, kindWord, kindEnd}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			toks, err := tokenize(tt.input)
			if err != nil {
				t.Fatalf("tokenize: %v", err)
			}
			if len(toks) != len(tt.want) {
				t.Fatalf("got %d tokens %+v, want %v", len(toks), toks, tt.want)
			}
			for i, k := range tt.want {
				if toks[i].kind != k {
					t.Errorf("token %d: kind %v, want %v (%q)", i, toks[i].kind, k, toks[i].text)
				}
			}
		})
	}
}

func TestTokenizeOperatorsAndEscapes(t *testing.T) {
	toks, err := tokenize(`a!=b c~d e:"say \"hi\""`)
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}
	if toks[1].op != OpNeq || toks[4].op != OpContains || toks[7].op != OpEq {
		t.Errorf("operators = %v %v %v", toks[1].op, toks[4].op, toks[7].op)
	}
	if toks[8].text != `say "hi"` {
		t.Errorf("escaped string = %q", toks[8].text)
	}

	for _, input := range []string{`"open`, "a ! b", "a = b"} {
		if _, err := tokenize(input); err == nil {
			t.Errorf("tokenize(%q) expected error", input)
		}
	}
}

func TestParsePrecedence(t *testing.T) {
	node, err := Parse("a OR b AND NOT c")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	or, ok := node.(Or)
	if !ok {
		t.Fatalf("expected OR at the root, got %#v", node)
	}
	and, ok := or.Right.(And)
	if !ok {
		t.Fatalf("expected AND on the right, got %#v", or.Right)
	}
	if _, ok := and.Right.(Not); !ok {
		t.Fatalf("expected NOT under AND, got %#v", and.Right)
	}
}

func TestParseTerms(t *testing.T) {
	node, err := Parse(`level!=debug`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if want := (Term{Key: "level", Op: OpNeq, Value: "debug"}); node != want {
		t.Fatalf("got %#v, want %#v", node, want)
	}
	node, err = Parse(`"connection refused"`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if want := (Term{Op: OpContains, Value: "connection refused"}); node != want {
		t.Fatalf("got %#v, want %#v", node, want)
	}
}

func TestParseErrors(t *testing.T) {
	for _, input := range []string{"(a", "level:", "a b", ")", "NOT", "level:(a)"} {
		if _, err := Parse(input); err == nil {
			t.Errorf("Parse(%q) expected error", input)
		}
	}
	if _, err := Parse("a AND"); !errors.Is(err, ErrEmpty) {
		t.Errorf("dangling AND: got %v, want ErrEmpty", err)
	}
	node, err := Parse("   ")
	if err != nil || node != nil {
		t.Errorf("blank input should give nil node, got %#v, %v", node, err)
	}
}

func sampleMessages() []*model.LogMessage {
	ts := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	return []*model.LogMessage{
		{Timestamp: ts, Level: model.LevelInformation, RenderedMessage: "request served", MessageTemplateText: "request served", Properties: map[string]any{"component": "http", "status": float64(200)}},
		{Timestamp: ts, Level: model.LevelError, RenderedMessage: "database timeout", MessageTemplateText: "database timeout", Exception: "context deadline exceeded", Properties: map[string]any{"component": "repository"}},
		{Timestamp: ts, Level: model.LevelDebug, RenderedMessage: "cache miss", Properties: map[string]any{"component": "cache"}},
		{Timestamp: ts, Level: model.LevelFatal, RenderedMessage: "cannot bind port"},
	}
}

func matching(t *testing.T, expr string) []string {
	t.Helper()
	pred := Compile(expr)
	var out []string
	for _, m := range sampleMessages() {
		if pred(m) {
			out = append(out, m.RenderedMessage)
		}
	}
	return out
}

func TestCompile(t *testing.T) {
	tests := []struct {
		expr string
		want []string
	}{
		{"", []string{"request served", "database timeout", "cache miss", "cannot bind port"}},
		{"level:Error OR level:Fatal", []string{"database timeout", "cannot bind port"}},
		{"level:info", []string{"request served"}},
		{"NOT level:Verbose AND NOT level:Debug", []string{"request served", "database timeout", "cannot bind port"}},
		{`exception!=""`, []string{"database timeout"}},
		{"component:HTTP", []string{"request served"}},
		{"status:200", []string{"request served"}},
		{`"timeout"`, []string{"database timeout"}},
		{"deadline", []string{"database timeout"}},
		{"msg~bind", []string{"cannot bind port"}},
		{"(component:cache OR component:http) AND NOT level:Debug", []string{"request served"}},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got := matching(t, tt.expr)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("got %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestCompileFallsBackToMessageSearch(t *testing.T) {
	got := matching(t, "bind port (")
	if len(got) != 0 {
		t.Fatalf("fallback searches the whole expression as text, got %v", got)
	}
	got = matching(t, `cannot bind "`)
	if len(got) != 0 {
		t.Fatalf("unexpected match: %v", got)
	}
	pred := Compile(`served (`)
	msg := &model.LogMessage{RenderedMessage: "Request SERVED ( twice"}
	if !pred(msg) {
		t.Fatalf("fallback should match a case-insensitive substring of the message")
	}
}
