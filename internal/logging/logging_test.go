package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInit_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "diskord.log")
	if err := Init(Config{Level: "debug", OutputPath: path}); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	Named("trash").Debug("staged item")
	if err := Sync(); err != nil {
		t.Fatalf("Sync() error = %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(content), "staged item") {
		t.Errorf("log file missing debug entry: %s", content)
	}

	SetLevel("error")
	Named("trash").Info("suppressed entry")
	_ = Sync()
	content, _ = os.ReadFile(path)
	if strings.Contains(string(content), "suppressed entry") {
		t.Error("info entry written after SetLevel(error)")
	}
}
