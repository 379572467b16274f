package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/melih-ucgun/wrtprov/internal/reconcile"
)

// RunEntry records the terminal outcome of one resource within a run.
type RunEntry struct {
	Kind     string `json:"kind"`
	Resource string `json:"resource"` // final key, after any rename
	State    string `json:"state"`    // already-present, installed, skipped, failed
	Method   string `json:"method,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Run represents one complete apply invocation.
type Run struct {
	ID        string     `json:"id"`
	Timestamp string     `json:"timestamp"`
	Host      string     `json:"host"`   // localhost or manifest host name
	Status    string     `json:"status"` // success, failed, aborted
	Entries   []RunEntry `json:"entries"`
}

// HistoryManager manages the persistent history of runs
type HistoryManager struct {
	HistoryFile string
}

func NewHistoryManager(baseDir string) *HistoryManager {
	if baseDir == "" {
		home, _ := os.UserHomeDir()
		baseDir = filepath.Join(home, ".wrtprov")
	}
	return &HistoryManager{
		HistoryFile: filepath.Join(baseDir, "history.json"),
	}
}

// Record appends one run, built from a reconciliation report, to the
// history file.
func (hm *HistoryManager) Record(host, status string, rep reconcile.Report) error {
	run := Run{
		ID:        GenerateID(),
		Timestamp: time.Now().Format(time.RFC3339),
		Host:      host,
		Status:    status,
	}
	for _, o := range rep.Outcomes {
		run.Entries = append(run.Entries, RunEntry{
			Kind:     string(o.Kind),
			Resource: o.Resource,
			State:    string(o.FinalState),
			Method:   string(o.MethodUsed),
			Error:    o.ErrorDetail,
		})
	}

	runs, err := hm.LoadHistory()
	if err != nil {
		runs = []Run{}
	}
	runs = append(runs, run)
	return hm.save(runs)
}

// LoadHistory reads the history file
func (hm *HistoryManager) LoadHistory() ([]Run, error) {
	if _, err := os.Stat(hm.HistoryFile); os.IsNotExist(err) {
		return []Run{}, nil
	}

	data, err := os.ReadFile(hm.HistoryFile)
	if err != nil {
		return nil, err
	}

	var runs []Run
	if err := json.Unmarshal(data, &runs); err != nil {
		return nil, err
	}
	return runs, nil
}

func (hm *HistoryManager) save(runs []Run) error {
	if err := os.MkdirAll(filepath.Dir(hm.HistoryFile), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(runs, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(hm.HistoryFile, data, 0644)
}

// GenerateID creates a simple unique ID
func GenerateID() string {
	return fmt.Sprintf("run-%s", time.Now().Format("20060102-150405"))
}
