package abtest

type Config struct {
	// Ratio of the cells placed in the treatment group
	Ratio float64 `yaml:"ratio" json:"ratio"`
	// Steps run by each test
	Steps int `yaml:"steps" json:"steps"`
	// MinSampleSize below which a test still runs but is logged as under-sized
	MinSampleSize int `yaml:"min_sample_size" json:"min_sample_size"`
	// SignificanceThreshold in percentage points of mean relative improvement
	SignificanceThreshold float64 `yaml:"significance_threshold" json:"significance_threshold"`
	// ExportPath where the history is written, empty disables the export
	ExportPath string `yaml:"export_path" json:"export_path"`
	// Seed of the group split, 0 seeds from the clock
	Seed int64 `yaml:"seed" json:"seed"`
}

func DefaultConfig() Config {
	return Config{
		Ratio:                 0.5,
		Steps:                 50,
		MinSampleSize:         10,
		SignificanceThreshold: 5,
		ExportPath:            "ab_test_results.json",
	}
}
