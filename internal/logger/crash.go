// Package logger provides crash logging for devflow. A deferred
// HandlePanic at the top of main captures panics with enough context to
// reproduce them: the command, the last question sent to the insight
// agent, and the stack trace.
package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strings"
	"sync"
	"time"
)

const (
	// crashLogDir is the crash log directory relative to the base path.
	crashLogDir = "crash_logs"

	// maxCrashLogs bounds the number of crash logs kept on disk.
	maxCrashLogs = 10
)

type crashContext struct {
	mu           sync.RWMutex
	command      string
	lastQuestion string
	version      string
	basePath     string
}

var global = &crashContext{}

// SetBasePath sets where crash logs are written (typically the .devflow
// directory).
func SetBasePath(path string) {
	global.mu.Lock()
	defer global.mu.Unlock()
	global.basePath = path
}

// SetVersion records the application version for crash logs.
func SetVersion(version string) {
	global.mu.Lock()
	defer global.mu.Unlock()
	global.version = version
}

// SetCommand records the command currently executing.
func SetCommand(cmd string) {
	global.mu.Lock()
	defer global.mu.Unlock()
	global.command = cmd
}

// SetLastQuestion records the last question sent to the insight agent.
func SetLastQuestion(q string) {
	global.mu.Lock()
	defer global.mu.Unlock()
	global.lastQuestion = truncateForLog(strings.TrimSpace(q), 2000)
}

func truncateForLog(value string, maxLen int) string {
	if len(value) <= maxLen {
		return value
	}
	return value[:maxLen] + "... [truncated]"
}

// CrashLog is a single crash record.
type CrashLog struct {
	Timestamp    time.Time
	Version      string
	Command      string
	PanicValue   string
	StackTrace   string
	LastQuestion string
	GoVersion    string
	OS           string
	Arch         string
}

// HandlePanic recovers from panics and writes a crash log.
// Usage: defer logger.HandlePanic()
func HandlePanic() {
	if r := recover(); r != nil {
		log := newCrashLog(r)
		if err := writeCrashLog(log); err != nil {
			fmt.Fprintf(os.Stderr, "\n[CRASH] failed to write crash log: %v\n", err)
			fmt.Fprintf(os.Stderr, "[CRASH] panic: %v\n%s\n", r, debug.Stack())
		} else {
			fmt.Fprintf(os.Stderr, "\ndevflow encountered an unexpected error.\n")
			fmt.Fprintf(os.Stderr, "A crash log has been saved to:\n  %s\n", crashLogPath(log.Timestamp))
		}
		os.Exit(1)
	}
}

func newCrashLog(panicValue any) CrashLog {
	global.mu.RLock()
	defer global.mu.RUnlock()

	return CrashLog{
		Timestamp:    time.Now(),
		Version:      global.version,
		Command:      global.command,
		PanicValue:   fmt.Sprintf("%v", panicValue),
		StackTrace:   string(debug.Stack()),
		LastQuestion: global.lastQuestion,
		GoVersion:    runtime.Version(),
		OS:           runtime.GOOS,
		Arch:         runtime.GOARCH,
	}
}

func writeCrashLog(log CrashLog) error {
	dir := crashLogDirPath()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create crash log dir: %w", err)
	}

	if err := cleanOldCrashLogs(dir); err != nil {
		fmt.Fprintf(os.Stderr, "[WARN] failed to clean old crash logs: %v\n", err)
	}

	path := crashLogPath(log.Timestamp)
	if err := os.WriteFile(path, []byte(formatCrashLog(log)), 0o644); err != nil {
		return fmt.Errorf("write crash log: %w", err)
	}
	return nil
}

func crashLogDirPath() string {
	global.mu.RLock()
	basePath := global.basePath
	global.mu.RUnlock()

	if basePath == "" {
		basePath = ".devflow"
	}
	return filepath.Join(basePath, crashLogDir)
}

func crashLogPath(t time.Time) string {
	return filepath.Join(crashLogDirPath(), fmt.Sprintf("crash_%s.log", t.Format("20060102_150405")))
}

func formatCrashLog(log CrashLog) string {
	var sb strings.Builder
	rule := strings.Repeat("-", 80)

	sb.WriteString("DEVFLOW CRASH LOG\n")
	sb.WriteString(rule + "\n")
	sb.WriteString(fmt.Sprintf("Timestamp: %s\n", log.Timestamp.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Version:   %s\n", log.Version))
	sb.WriteString(fmt.Sprintf("Command:   %s\n", log.Command))
	sb.WriteString(fmt.Sprintf("Go:        %s\n", log.GoVersion))
	sb.WriteString(fmt.Sprintf("OS/Arch:   %s/%s\n", log.OS, log.Arch))

	sb.WriteString("\nPANIC VALUE\n" + rule + "\n")
	sb.WriteString(log.PanicValue + "\n")

	sb.WriteString("\nSTACK TRACE\n" + rule + "\n")
	sb.WriteString(log.StackTrace)

	if log.LastQuestion != "" {
		sb.WriteString("\nLAST QUESTION\n" + rule + "\n")
		sb.WriteString(log.LastQuestion + "\n")
	}

	return sb.String()
}

func cleanOldCrashLogs(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var logs []os.DirEntry
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), "crash_") && strings.HasSuffix(e.Name(), ".log") {
			logs = append(logs, e)
		}
	}
	if len(logs) <= maxCrashLogs {
		return nil
	}

	// ReadDir sorts by name; the timestamp in the name makes oldest first.
	toRemove := len(logs) - maxCrashLogs
	for i := range toRemove {
		path := filepath.Join(dir, logs[i].Name())
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("remove old crash log %s: %w", logs[i].Name(), err)
		}
	}
	return nil
}

// ListCrashLogs returns the paths of all crash logs on disk.
func ListCrashLogs() ([]string, error) {
	dir := crashLogDirPath()
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var logs []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), "crash_") && strings.HasSuffix(e.Name(), ".log") {
			logs = append(logs, filepath.Join(dir, e.Name()))
		}
	}
	return logs, nil
}
