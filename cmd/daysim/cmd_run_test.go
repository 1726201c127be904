package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/daysim/daysim/internal/runlog"
)

func TestRunCmd(t *testing.T) {
	root := t.TempDir()

	out, err := execute(t, newRunCmd(), "run", "--root", root, "--days", "3")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out, "3 days") {
		t.Errorf("unexpected output: %q", out)
	}

	// The run and each day must be recorded.
	store, err := runlog.Open(filepath.Join(root, ".daysim"))
	if err != nil {
		t.Fatalf("open run log: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	runs, err := store.ListRuns(ctx)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("got %d runs, want 1", len(runs))
	}
	if runs[0].Status != runlog.StatusDone {
		t.Errorf("Status = %s, want done", runs[0].Status)
	}
	if runs[0].DaysCompleted != 3 || runs[0].TotalDays != 3 {
		t.Errorf("run = %+v, want 3/3 days", runs[0])
	}

	days, err := store.Days(ctx, runs[0].ID)
	if err != nil {
		t.Fatalf("Days: %v", err)
	}
	if len(days) != 3 {
		t.Fatalf("got %d day rows, want 3", len(days))
	}
	for i, d := range days {
		if d.Day != i {
			t.Errorf("days[%d].Day = %d, want %d", i, d.Day, i)
		}
	}
}

func TestRunCmdJSON(t *testing.T) {
	root := t.TempDir()

	out, err := execute(t, newRunCmd(), "run", "--root", root, "--days", "5", "--json")
	if err != nil {
		t.Fatalf("run --json: %v", err)
	}

	var result map[string]any
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("output is not valid JSON: %v (out: %q)", err, out)
	}
	if result["status"] != "done" {
		t.Errorf("status = %v, want done", result["status"])
	}
	if result["days_run"] != float64(5) {
		t.Errorf("days_run = %v, want 5", result["days_run"])
	}
	if result["current_day"] != float64(5) {
		t.Errorf("current_day = %v, want 5", result["current_day"])
	}
}

func TestRunCmdUsesConfigFile(t *testing.T) {
	root := t.TempDir()
	daysimDir := filepath.Join(root, ".daysim")
	if err := os.MkdirAll(daysimDir, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	configContent := `
simulation:
  total_days: 4
`
	if err := os.WriteFile(filepath.Join(daysimDir, "daysim.yaml"), []byte(configContent), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	out, err := execute(t, newRunCmd(), "run", "--root", root, "--json")
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	var result map[string]any
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if result["total_days"] != float64(4) {
		t.Errorf("total_days = %v, want 4", result["total_days"])
	}
}

func TestRunCmdExplicitConfig(t *testing.T) {
	root := t.TempDir()
	configPath := filepath.Join(root, "custom.yaml")
	configContent := `
simulation:
  total_days: 2
runlog:
  enabled: false
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	out, err := execute(t, newRunCmd(), "run", "--root", root, "--config", configPath, "--json")
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	var result map[string]any
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if result["days_run"] != float64(2) {
		t.Errorf("days_run = %v, want 2", result["days_run"])
	}
	if _, ok := result["run_id"]; ok {
		t.Error("run_id should be absent when the run log is disabled")
	}

	// No database is created when the run log is disabled.
	if _, err := os.Stat(filepath.Join(root, ".daysim", "daysim.db")); !os.IsNotExist(err) {
		t.Error("daysim.db should not exist with runlog disabled")
	}
}

func TestRunCmdInvalidDays(t *testing.T) {
	root := t.TempDir()

	t.Setenv("DAYSIM_TOTAL_DAYS", "-1")
	if _, err := execute(t, newRunCmd(), "run", "--root", root); err == nil {
		t.Fatal("expected error for non-positive total days")
	}
}

func TestRunCmdRecordsMultipleRuns(t *testing.T) {
	root := t.TempDir()

	for i := 0; i < 2; i++ {
		if _, err := execute(t, newRunCmd(), "run", "--root", root, "--days", "1"); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
	}

	store, err := runlog.Open(filepath.Join(root, ".daysim"))
	if err != nil {
		t.Fatalf("open run log: %v", err)
	}
	defer store.Close()

	runs, err := store.ListRuns(context.Background())
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Errorf("got %d runs, want 2", len(runs))
	}
}

func TestRunCmdDebugWritesTrace(t *testing.T) {
	root := t.TempDir()

	t.Setenv("DAYSIM_LOG_LEVEL", "debug")
	if _, err := execute(t, newRunCmd(), "run", "--root", root, "--days", "2"); err != nil {
		t.Fatalf("run: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(root, ".daysim", "trace.jsonl"))
	if err != nil {
		t.Fatalf("trace.jsonl not written: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d trace lines, want 2", len(lines))
	}
	var event map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &event); err != nil {
		t.Fatalf("trace line is not valid JSON: %v", err)
	}
	if event["event"] != "day_completed" || event["day"] != float64(0) {
		t.Errorf("first trace event = %v, want day_completed day 0", event)
	}
}

func TestRunsCmdEmpty(t *testing.T) {
	root := t.TempDir()

	out, err := execute(t, newRunsCmd(), "runs", "--root", root)
	if err != nil {
		t.Fatalf("runs: %v", err)
	}
	if !strings.Contains(out, "No runs recorded yet") {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestRunsCmdListsRuns(t *testing.T) {
	root := t.TempDir()

	if _, err := execute(t, newRunCmd(), "run", "--root", root, "--days", "2"); err != nil {
		t.Fatalf("run: %v", err)
	}

	out, err := execute(t, newRunsCmd(), "runs", "--root", root, "--json")
	if err != nil {
		t.Fatalf("runs --json: %v", err)
	}

	var result struct {
		Runs  []runlog.Run `json:"runs"`
		Count int          `json:"count"`
	}
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("output is not valid JSON: %v (out: %q)", err, out)
	}
	if result.Count != 1 || len(result.Runs) != 1 {
		t.Fatalf("count = %d, runs = %d, want 1", result.Count, len(result.Runs))
	}
	if result.Runs[0].Status != runlog.StatusDone {
		t.Errorf("Status = %s, want done", result.Runs[0].Status)
	}
}
