package tracing

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestMarkRecordsStagesInOrder(t *testing.T) {
	ctx, tr := Start(context.Background(), "rec-1")
	if FromContext(ctx) != tr {
		t.Fatal("trace not stored in context")
	}
	for _, name := range []string{"clean", "tokenize", "correct"} {
		FromContext(ctx).Mark(name)
	}
	stages := tr.Stages()
	if len(stages) != 3 {
		t.Fatalf("got %d stages, want 3", len(stages))
	}
	var sum int64
	for i, want := range []string{"clean", "tokenize", "correct"} {
		if stages[i].Name != want {
			t.Errorf("stage %d = %s, want %s", i, stages[i].Name, want)
		}
		sum += int64(stages[i].Duration)
	}
	if sum != int64(tr.Elapsed()) {
		t.Errorf("stage durations sum to %d, elapsed %d", sum, tr.Elapsed())
	}
}

func TestNilTraceIsNoop(t *testing.T) {
	tr := FromContext(context.Background())
	if tr != nil {
		t.Fatal("expected nil trace")
	}
	tr.Mark("clean")
	tr.SetAttr("k", 1)
	tr.Log(slog.Default())
	if tr.Stages() != nil || tr.Elapsed() != 0 {
		t.Error("nil trace should report nothing")
	}
}

func TestLogWritesStagesAtDebug(t *testing.T) {
	var buf bytes.Buffer
	debug := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	_, tr := Start(context.Background(), "rec-2")
	tr.Mark("clean")
	tr.SetAttr("tokens", 4)
	tr.Log(debug)
	out := buf.String()
	for _, want := range []string{"record trace", "record_id=rec-2", "clean_us=", "tokens=4"} {
		if !strings.Contains(out, want) {
			t.Errorf("log line %q missing %q", out, want)
		}
	}

	buf.Reset()
	info := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	tr.Log(info)
	if buf.Len() != 0 {
		t.Errorf("trace logged above debug: %q", buf.String())
	}
}
