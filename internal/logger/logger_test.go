package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestNewWritesDailyJSON(t *testing.T) {
	root := t.TempDir()
	prev := zap.L()
	t.Cleanup(func() { zap.ReplaceGlobals(prev) })

	log, err := New(root, "debug", false)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	log.Debug("store op", zap.String("kind", "events"))
	_ = log.Sync()

	path := filepath.Join(root, "logs", time.Now().Format("2006-01-02")+".log")
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(b), `"msg":"store op"`) || !strings.Contains(string(b), `"level":"debug"`) {
		t.Fatalf("unexpected log content: %s", b)
	}
	if zap.L() != log {
		t.Error("logger not installed globally")
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	if _, err := New(t.TempDir(), "loud", false); err == nil {
		t.Fatal("unknown level accepted")
	}
}
