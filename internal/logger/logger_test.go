package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestHelpersBeforeInitAreNoops(t *testing.T) {
	Close()
	Debug("ignored", "k", 1)
	Warn("ignored")
}

func TestInitWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "qsql.log")
	if err := Init(path, true); err != nil {
		t.Fatalf("Init error: %v", err)
	}
	Debug("history loaded", "entries", 3)
	Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "history loaded") {
		t.Fatalf("log = %q, want it to contain %q", data, "history loaded")
	}
}

func TestLogPathEnv(t *testing.T) {
	t.Setenv("QSQL_LOG_FILE", "/tmp/custom.log")
	path, err := logPath()
	if err != nil {
		t.Fatalf("logPath error: %v", err)
	}
	if path != "/tmp/custom.log" {
		t.Fatalf("logPath = %q, want %q", path, "/tmp/custom.log")
	}

	t.Setenv("QSQL_LOG_FILE", "")
	t.Setenv("QSQL_CONFIG_HOME", "/tmp/cfg")
	if path, _ = logPath(); path != "/tmp/cfg/qsql.log" {
		t.Fatalf("logPath = %q, want %q", path, "/tmp/cfg/qsql.log")
	}
}
