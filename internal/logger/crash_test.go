package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestCrashContext(t *testing.T) {
	global = &crashContext{}

	SetBasePath("/tmp/test-devflow")
	SetVersion("1.0.0-test")
	SetCommand("insights")
	SetLastQuestion("Which projects are at risk?")

	global.mu.RLock()
	defer global.mu.RUnlock()

	if global.basePath != "/tmp/test-devflow" {
		t.Errorf("basePath = %q", global.basePath)
	}
	if global.version != "1.0.0-test" {
		t.Errorf("version = %q", global.version)
	}
	if global.command != "insights" {
		t.Errorf("command = %q", global.command)
	}
	if global.lastQuestion != "Which projects are at risk?" {
		t.Errorf("lastQuestion = %q", global.lastQuestion)
	}
}

func TestSetLastQuestion_Truncation(t *testing.T) {
	global = &crashContext{}

	SetLastQuestion(strings.Repeat("a", 3000))

	global.mu.RLock()
	defer global.mu.RUnlock()

	if len(global.lastQuestion) > 2100 {
		t.Errorf("expected truncation, got length %d", len(global.lastQuestion))
	}
	if !strings.Contains(global.lastQuestion, "[truncated]") {
		t.Error("expected truncated marker")
	}
}

func TestNewCrashLog(t *testing.T) {
	global = &crashContext{
		version:      "1.0.0",
		command:      "analyze",
		lastQuestion: "what failed?",
	}

	log := newCrashLog("boom")

	if log.PanicValue != "boom" {
		t.Errorf("PanicValue = %q", log.PanicValue)
	}
	if log.Version != "1.0.0" {
		t.Errorf("Version = %q", log.Version)
	}
	if log.Command != "analyze" {
		t.Errorf("Command = %q", log.Command)
	}
	if log.LastQuestion != "what failed?" {
		t.Errorf("LastQuestion = %q", log.LastQuestion)
	}
	if log.StackTrace == "" {
		t.Error("expected non-empty stack trace")
	}
	if log.GoVersion == "" {
		t.Error("expected non-empty Go version")
	}
}

func TestFormatCrashLog(t *testing.T) {
	log := CrashLog{
		Timestamp:    time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC),
		Version:      "1.0.0",
		Command:      "ask",
		PanicValue:   "boom",
		StackTrace:   "goroutine 1 [running]:\nmain.main()",
		LastQuestion: "why slow?",
		GoVersion:    "go1.24.6",
		OS:           "linux",
		Arch:         "amd64",
	}

	formatted := formatCrashLog(log)

	for _, want := range []string{
		"DEVFLOW CRASH LOG",
		"Timestamp: 2025-01-01T12:00:00Z",
		"Version:   1.0.0",
		"Command:   ask",
		"Go:        go1.24.6",
		"OS/Arch:   linux/amd64",
		"PANIC VALUE",
		"boom",
		"STACK TRACE",
		"goroutine 1 [running]",
		"LAST QUESTION",
		"why slow?",
	} {
		if !strings.Contains(formatted, want) {
			t.Errorf("formatted log missing %q", want)
		}
	}
}

func TestWriteCrashLog(t *testing.T) {
	basePath := filepath.Join(t.TempDir(), ".devflow")
	global = &crashContext{basePath: basePath}

	log := CrashLog{
		Timestamp:  time.Now(),
		Version:    "1.0.0",
		Command:    "analyze",
		PanicValue: "boom",
		StackTrace: "stack",
		GoVersion:  "go1.24",
		OS:         "linux",
		Arch:       "amd64",
	}

	if err := writeCrashLog(log); err != nil {
		t.Fatalf("writeCrashLog: %v", err)
	}

	if _, err := os.Stat(filepath.Join(basePath, crashLogDir)); os.IsNotExist(err) {
		t.Error("expected crash log directory to be created")
	}

	logs, err := ListCrashLogs()
	if err != nil {
		t.Fatalf("ListCrashLogs: %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("expected 1 crash log, got %d", len(logs))
	}

	content, err := os.ReadFile(logs[0])
	if err != nil {
		t.Fatalf("read crash log: %v", err)
	}
	if !strings.Contains(string(content), "boom") {
		t.Error("expected crash log to contain panic value")
	}
}

func TestCleanOldCrashLogs(t *testing.T) {
	basePath := filepath.Join(t.TempDir(), ".devflow")
	crashDir := filepath.Join(basePath, crashLogDir)
	if err := os.MkdirAll(crashDir, 0o755); err != nil {
		t.Fatal(err)
	}
	global = &crashContext{basePath: basePath}

	for i := range maxCrashLogs + 5 {
		name := filepath.Join(crashDir, time.Date(2025, 1, 1, 12, 0, i, 0, time.UTC).Format("crash_20060102_150405.log"))
		if err := os.WriteFile(name, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	if err := cleanOldCrashLogs(crashDir); err != nil {
		t.Fatalf("cleanOldCrashLogs: %v", err)
	}

	logs, err := ListCrashLogs()
	if err != nil {
		t.Fatalf("ListCrashLogs: %v", err)
	}
	if len(logs) != maxCrashLogs {
		t.Errorf("expected %d crash logs after cleanup, got %d", maxCrashLogs, len(logs))
	}
}

func TestCrashLogPath(t *testing.T) {
	global = &crashContext{basePath: "/tmp/test"}

	got := crashLogPath(time.Date(2025, 1, 15, 14, 30, 45, 0, time.UTC))
	want := "/tmp/test/crash_logs/crash_20250115_143045.log"
	if got != want {
		t.Errorf("crashLogPath = %q, want %q", got, want)
	}
}

func TestDefaultBasePath(t *testing.T) {
	global = &crashContext{}

	if dir := crashLogDirPath(); dir != filepath.Join(".devflow", "crash_logs") {
		t.Errorf("default dir = %q", dir)
	}
}
