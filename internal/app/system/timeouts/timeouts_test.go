package timeouts

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestConfigure_IgnoresZeroFields(t *testing.T) {
	t.Cleanup(Reset)

	Configure(Config{Short: 7 * time.Second, Batch: 3 * time.Minute})

	if got := Short(); got != 7*time.Second {
		t.Errorf("Short: got %v, want 7s", got)
	}
	if got := Batch(); got != 3*time.Minute {
		t.Errorf("Batch: got %v, want 3m", got)
	}
	if got := Medium(); got != DefaultMedium {
		t.Errorf("Medium: got %v, want default %v", got, DefaultMedium)
	}
	if got := Ping(); got != DefaultPing {
		t.Errorf("Ping: got %v, want default %v", got, DefaultPing)
	}
}

func TestReset(t *testing.T) {
	Configure(Config{Ping: time.Millisecond, Long: time.Millisecond})
	Reset()

	want := Config{Ping: DefaultPing, Short: DefaultShort, Medium: DefaultMedium, Long: DefaultLong, Batch: DefaultBatch}
	if got := Current(); got != want {
		t.Errorf("Current after Reset: got %+v, want %+v", got, want)
	}
}

func TestWithTimeout_LogsOnDeadline(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)

	ctx, cancel := WithTimeout(context.Background(), time.Millisecond, zap.New(core), "complaint list")
	<-ctx.Done()
	cancel()

	entries := logs.FilterMessage("operation timed out").All()
	if len(entries) != 1 {
		t.Fatalf("expected one timeout warning, got %d", len(entries))
	}
	if op := entries[0].ContextMap()["operation"]; op != "complaint list" {
		t.Errorf("operation field: got %v", op)
	}
}

func TestWithTimeout_SilentWhenCanceledEarly(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)

	_, cancel := WithTimeout(context.Background(), time.Minute, zap.New(core), "complaint list")
	cancel()

	if logs.Len() != 0 {
		t.Errorf("expected no log entries, got %d", logs.Len())
	}
}
