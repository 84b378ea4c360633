package orchestrator

import (
	"encoding/json"
	"path/filepath"
	"time"

	"github.com/maastricht-university/audiosort/storage"
)

const reportFile = "report.json"

func newRunID(now time.Time) string {
	return "run_" + now.Format("20060102-150405")
}

func writeJSON(s *storage.Store, path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return s.WriteFile(path, append(b, '\n'))
}

func persist(s *storage.Store, outputsRoot string, r *Report) (string, error) {
	path := filepath.Join(outputsRoot, reportFile)
	if err := writeJSON(s, path, r); err != nil {
		return "", err
	}
	return path, nil
}

// LoadReport reads a report written by a previous run.
func LoadReport(s *storage.Store, outputsRoot string) (*Report, error) {
	b, err := s.ReadFile(filepath.Join(outputsRoot, reportFile))
	if err != nil {
		return nil, err
	}
	var r Report
	if err := json.Unmarshal(b, &r); err != nil {
		return nil, err
	}
	return &r, nil
}
