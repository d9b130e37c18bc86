package mutationexec

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

func TestTextFormatter(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	f := newTextFormatter()

	tests := []struct {
		name   string
		level  LogLevel
		msg    string
		fields map[string]any
		want   string
	}{
		{
			name:  "no fields",
			level: LevelWarn,
			msg:   "hello",
			want:  "[WARN] 2024-01-02T03:04:05.000000Z hello\n",
		},
		{
			name:   "sorted fields",
			level:  LevelInfo,
			msg:    "msg",
			fields: map[string]any{"b": "two words", "a": 1, "c": Path{{Key: "g"}, {Any: true}}},
			want:   "[INFO] 2024-01-02T03:04:05.000000Z msg a=1 b=\"two words\" c=g[*]\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := string(f.format(ts, tt.level, tt.msg, renderFields(tt.fields)))
			if got != tt.want {
				t.Errorf("format() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"error":   LevelError,
		"WARN":    LevelWarn,
		"warning": LevelWarn,
		"Info":    LevelInfo,
		"debug":   LevelDebug,
		"bogus":   LevelWarn,
	}
	for in, want := range tests {
		if got := ParseLogLevel(in); got != want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLogger_LevelsAndFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LevelInfo, &buf).With(map[string]any{"analysis": "a1"})
	logger.Debugf("hidden")
	logger.With(map[string]any{"depth": 2}).Infof("Invoking %s", "f")
	logger.Errorf("boom")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 lines, got %q", buf.String())
	}
	if !strings.HasPrefix(lines[0], "[INFO] ") || !strings.HasSuffix(lines[0], "Invoking f analysis=a1 depth=2") {
		t.Errorf("Unexpected info line %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "[ERROR] ") || !strings.HasSuffix(lines[1], "boom analysis=a1") {
		t.Errorf("Unexpected error line %q", lines[1])
	}
}

func TestAnalyze_Logging(t *testing.T) {
	var buf bytes.Buffer
	opts := DefaultOptions()
	opts.Logger = NewLogger(LevelDebug, &buf)

	_, err := AnalyzeSource(context.Background(), "const f = (x) => x.push(1);\nf(globalArr);", testGlobals(), opts)
	if err != nil {
		t.Fatalf("AnalyzeSource failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Starting analysis", "Invoking function", "Calling built-in", "Violation: Can't call mutating array instance method on globalArr", "Analysis complete"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected log output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestReferenceSummary(t *testing.T) {
	r := NewReference(NewObject(), NewArray(), String("a"), Number(1), IntrinsicObject, ArrayPush, &Function{Name: "f"})
	if got := referenceSummary(r, 0); got != `{object,array,"a",1,Object,Array.prototype.push,fn f}` {
		t.Errorf("Unexpected summary %s", got)
	}
	if got := referenceSummary(r, 2); got != "{object,array,+5}" {
		t.Errorf("Unexpected truncated summary %s", got)
	}
}
