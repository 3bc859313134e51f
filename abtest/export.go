package abtest

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/zeu5/ran-rl-opt/util"
)

// ExportResults writes the history as an indented JSON list
func (h *Harness) ExportResults(path string) error {
	bs, err := json.MarshalIndent(h.History(), "", "  ")
	if err != nil {
		return fmt.Errorf("encoding results: %w", err)
	}
	if err := util.WriteFileAtomic(path, bs, 0644); err != nil {
		return err
	}
	h.logger.Info("exported test results", "path", path, "results", len(h.history))
	return nil
}

// LoadResults reads a file written by ExportResults
func LoadResults(path string) ([]*TestResult, error) {
	bs, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	results := make([]*TestResult, 0)
	if err := json.Unmarshal(bs, &results); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return results, nil
}
