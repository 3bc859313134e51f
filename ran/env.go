package ran

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/zeu5/ran-rl-opt/telemetry"
	"github.com/zeu5/ran-rl-opt/types"
	"golang.org/x/exp/rand"
)

// Defaults of synthetic cells
const (
	defaultTxPower           = 40.0
	defaultAntennaTilt       = 3.0
	defaultHandoverThreshold = 70.0
)

// Environment is a network of cells optimised one cell per step in round robin order.
// It is not safe for concurrent use.
type Environment struct {
	config Config
	rand   *rand.Rand
	source telemetry.Source
	logger *slog.Logger

	cells    []*Cell
	cursor   int
	step     int
	episodes int
	external bool
}

var _ types.Environment = &Environment{}

type Option func(*Environment)

// WithSource seeds every reset from recorded telemetry
func WithSource(source telemetry.Source) Option {
	return func(e *Environment) {
		e.source = source
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(e *Environment) {
		e.logger = logger
	}
}

// NewEnvironment creates the network and performs the first reset
func NewEnvironment(config Config, opts ...Option) *Environment {
	if config.NumCells <= 0 {
		config.NumCells = DefaultConfig().NumCells
	}
	if config.Horizon <= 0 {
		config.Horizon = DefaultConfig().Horizon
	}
	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	e := &Environment{
		config: config,
		rand:   rand.New(rand.NewSource(uint64(seed))),
		logger: slog.Default(),
		cells:  make([]*Cell, 0, config.NumCells),
	}
	for _, o := range opts {
		o(e)
	}
	e.Reset()
	return e
}

// Seed replaces the generator, subsequent resets and steps are reproducible
func (e *Environment) Seed(seed int64) {
	e.rand = rand.New(rand.NewSource(uint64(seed)))
}

func (e *Environment) Config() Config {
	return e.config
}

// Reset repopulates every cell and rewinds the episode
func (e *Environment) Reset() []float64 {
	e.episodes += 1
	e.cells = make([]*Cell, 0, e.config.NumCells)
	e.external = false

	if e.source != nil {
		if err := e.resetFromSource(); err != nil {
			e.logger.Warn("telemetry unavailable, falling back to synthetic cells", "error", err)
			// stop retrying a broken source every episode
			e.source = nil
			e.cells = make([]*Cell, 0, e.config.NumCells)
		}
	}
	if len(e.cells) == 0 {
		e.resetSynthetic()
	}

	e.cursor = 0
	e.step = 0
	return e.Observation()
}

func (e *Environment) resetFromSource() error {
	records, err := e.source.Sample(e.config.NumCells, e.rand.Uint64())
	if err != nil {
		return err
	}
	if len(records) != e.config.NumCells {
		return fmt.Errorf("telemetry returned %d cells, expected %d", len(records), e.config.NumCells)
	}
	for i, r := range records {
		cell := &Cell{
			ID:                i,
			Type:              CellType(r.CellType),
			TxPower:           r.TxPower,
			AntennaTilt:       r.AntennaTilt,
			HandoverThreshold: r.HandoverThreshold,
			NumUsers:          r.NumUsers,
			Throughput:        r.Throughput,
			DropRate:          r.DropRate,
			Interference:      r.Interference,
			QoSSatisfaction:   r.QoSSatisfaction,
			OptimizedAction:   r.OptimizedAction,
			OptimizedPower:    r.OptimizedPower,
		}
		if cell.Type == "" {
			cell.Type = Macro
		}
		if cell.AntennaTilt == 0 {
			cell.AntennaTilt = defaultAntennaTilt
		}
		if cell.HandoverThreshold == 0 {
			cell.HandoverThreshold = defaultHandoverThreshold
		}
		if cell.OptimizedAction == "" {
			cell.OptimizedAction = MaintainPower
		}
		if cell.OptimizedPower == 0 {
			cell.OptimizedPower = cell.TxPower
		}
		cell.clamp()
		e.cells = append(e.cells, cell)
	}
	e.external = true
	return nil
}

func (e *Environment) resetSynthetic() {
	for i := 0; i < e.config.NumCells; i++ {
		cell := &Cell{
			ID:                i,
			Type:              Macro,
			TxPower:           defaultTxPower,
			AntennaTilt:       defaultAntennaTilt,
			HandoverThreshold: defaultHandoverThreshold,
			NumUsers:          50 + e.rand.Intn(450),
			Throughput:        e.uniform(20, 100),
			DropRate:          e.uniform(0, 0.1),
			Interference:      e.uniform(0, 0.3),
		}
		cell.clamp()
		e.cells = append(e.cells, cell)
	}
}

// Observation encodes every cell, in cell order, as FeaturesPerCell values in [0, 1]
func (e *Environment) Observation() []float64 {
	obs := make([]float64, 0, len(e.cells)*FeaturesPerCell)
	for _, c := range e.cells {
		obs = append(obs, c.features()...)
	}
	return obs
}

func (e *Environment) ObservationSize() int {
	return e.config.NumCells * FeaturesPerCell
}

func (e *Environment) NumActions() int {
	return NumActions
}

// Step applies the action to the cell under the cursor and advances the cursor
func (e *Environment) Step(action int) *types.StepResult {
	cell := e.cells[e.cursor]
	delta := DecodeAction(action)

	before := cell.Metrics()
	cell.applyDelta(delta)
	e.simulateChanges(cell, delta)
	after := cell.Metrics()

	recommended := e.external && cell.OptimizedAction != "" && cell.matchesRecommendation()
	reward := e.config.Reward.Reward(before, after, recommended)

	e.cursor = (e.cursor + 1) % len(e.cells)
	e.step += 1

	return &types.StepResult{
		Observation: e.Observation(),
		Reward:      reward,
		Done:        e.step >= e.config.Horizon,
		Info: types.StepInfo{
			CellID:         cell.ID,
			CellType:       string(cell.Type),
			Before:         before,
			After:          after,
			Delta:          delta,
			Recommendation: cell.OptimizedAction,
		},
	}
}

// Cells returns a snapshot of the cells, mutating it does not affect the network
func (e *Environment) Cells() []Cell {
	out := make([]Cell, len(e.cells))
	for i, c := range e.cells {
		out[i] = *c
	}
	return out
}

// Cursor is the index of the cell the next Step acts upon
func (e *Environment) Cursor() int {
	return e.cursor
}

// StepCount is the number of steps taken in the current episode
func (e *Environment) StepCount() int {
	return e.step
}

// Episodes counts the resets so far
func (e *Environment) Episodes() int {
	return e.episodes
}

type DataInfo struct {
	Mode     string `json:"mode"`
	NumCells int    `json:"num_cells"`
}

// DataInfo reports where the cells of the current episode came from
func (e *Environment) DataInfo() DataInfo {
	mode := "simulated"
	if e.external {
		mode = "real_data"
	}
	return DataInfo{Mode: mode, NumCells: len(e.cells)}
}
