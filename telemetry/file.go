package telemetry

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FileSource serves records loaded from a YAML (or JSON) document
// holding a list of cell records.
type FileSource struct {
	path    string
	records []CellRecord
}

var _ Source = &FileSource{}

func LoadFile(path string) (*FileSource, error) {
	bs, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading telemetry file: %w", err)
	}
	records := make([]CellRecord, 0)
	if err := yaml.Unmarshal(bs, &records); err != nil {
		return nil, fmt.Errorf("parsing telemetry file %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrNoRecords)
	}
	return &FileSource{path: path, records: records}, nil
}

// NewStaticSource serves the given records, mostly useful for tests and demos
func NewStaticSource(records []CellRecord) *FileSource {
	return &FileSource{records: records}
}

func (f *FileSource) Sample(n int, seed uint64) ([]CellRecord, error) {
	return sample(f.records, n, seed)
}

func (f *FileSource) Len() int {
	return len(f.records)
}

func (f *FileSource) Path() string {
	return f.path
}
