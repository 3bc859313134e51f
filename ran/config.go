package ran

// NoiseConfig holds the amplitudes of the uniform noise added after every step.
// A zero amplitude disables that noise source.
type NoiseConfig struct {
	Throughput float64 `yaml:"throughput" json:"throughput"`
	DropRate   float64 `yaml:"drop_rate" json:"drop_rate"`
}

// RewardConfig weights the components of the reward.
// The magnitudes are tunable, their proportions are what the agent learns from.
type RewardConfig struct {
	Throughput          float64 `yaml:"throughput" json:"throughput"`
	DropRate            float64 `yaml:"drop_rate" json:"drop_rate"`
	Power               float64 `yaml:"power" json:"power"`
	Interference        float64 `yaml:"interference" json:"interference"`
	Satisfaction        float64 `yaml:"satisfaction" json:"satisfaction"`
	RecommendationBonus float64 `yaml:"recommendation_bonus" json:"recommendation_bonus"`

	DropPenaltyThreshold       float64 `yaml:"drop_penalty_threshold" json:"drop_penalty_threshold"`
	DropPenalty                float64 `yaml:"drop_penalty" json:"drop_penalty"`
	ThroughputPenaltyThreshold float64 `yaml:"throughput_penalty_threshold" json:"throughput_penalty_threshold"`
	ThroughputPenalty          float64 `yaml:"throughput_penalty" json:"throughput_penalty"`
}

type Config struct {
	NumCells int `yaml:"num_cells" json:"num_cells"`
	// Horizon is the number of steps after which an episode is terminal
	Horizon int `yaml:"horizon" json:"horizon"`
	// Seed of the generator, 0 seeds from the clock
	Seed   int64        `yaml:"seed" json:"seed"`
	Noise  NoiseConfig  `yaml:"noise" json:"noise"`
	Reward RewardConfig `yaml:"-" json:"reward"`
}

func DefaultNoiseConfig() NoiseConfig {
	return NoiseConfig{
		Throughput: 2,
		DropRate:   0.005,
	}
}

func DefaultRewardConfig() RewardConfig {
	return RewardConfig{
		Throughput:          0.1,
		DropRate:            100,
		Power:               0.2,
		Interference:        10,
		Satisfaction:        0.5,
		RecommendationBonus: 2,

		DropPenaltyThreshold:       0.08,
		DropPenalty:                10,
		ThroughputPenaltyThreshold: 30,
		ThroughputPenalty:          5,
	}
}

func DefaultConfig() Config {
	return Config{
		NumCells: 10,
		Horizon:  100,
		Seed:     0,
		Noise:    DefaultNoiseConfig(),
		Reward:   DefaultRewardConfig(),
	}
}
