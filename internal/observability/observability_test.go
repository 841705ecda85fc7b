package observability

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsWriteTextfile(t *testing.T) {
	m := NewMetrics()
	m.RecordsFetched.Add(3)
	m.RecordsFailed.Inc()

	if got := testutil.ToFloat64(m.RecordsFetched); got != 3 {
		t.Errorf("RecordsFetched = %v, want 3", got)
	}

	path := filepath.Join(t.TempDir(), "run.prom")
	if err := m.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read metrics: %v", err)
	}
	if !strings.Contains(string(data), "chronam_essays_records_fetched_total 3") {
		t.Errorf("metrics textfile missing records counter:\n%s", data)
	}
	if !strings.Contains(string(data), "chronam_essays_records_failed_total 1") {
		t.Errorf("metrics textfile missing failed counter:\n%s", data)
	}
}

func TestMetricsWriteTextfileEmptyPath(t *testing.T) {
	if err := NewMetrics().WriteTextfile(""); err != nil {
		t.Errorf("WriteTextfile(\"\") error = %v", err)
	}
}

func TestNewLogger(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "logs", "run.log")
	logger, err := NewLogger(LoggerOptions{LogPath: logPath, LogLevel: "info", MaxSizeMB: 1, MaxBackups: 1})
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}

	logger.Info("Record fetched", "url", "https://www.loc.gov/item/sn85059812/?fo=json")
	logger.Debug("Dropped by level", "k", "v")
	logger.Sync()

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "Record fetched") {
		t.Errorf("log file missing info entry:\n%s", data)
	}
	if strings.Contains(string(data), "Dropped by level") {
		t.Errorf("debug entry should be filtered at info level")
	}

	if _, err := NewLogger(LoggerOptions{LogLevel: "loud"}); err == nil {
		t.Error("NewLogger() should reject unknown level")
	}
}
