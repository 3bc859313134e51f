package ran

import "github.com/zeu5/ran-rl-opt/types"

// Reward of moving a cell from before to after.
// recommended is true when the change follows the recorded recommendation of the cell.
func (r RewardConfig) Reward(before, after types.Metrics, recommended bool) float64 {
	reward := 0.0

	reward += (after.Throughput - before.Throughput) * r.Throughput
	reward += (before.DropRate - after.DropRate) * r.DropRate
	reward += (before.Power - after.Power) * r.Power
	reward += (before.Interference - after.Interference) * r.Interference
	reward += (after.Satisfaction - before.Satisfaction) * r.Satisfaction

	if recommended {
		reward += r.RecommendationBonus
	}

	if after.DropRate > r.DropPenaltyThreshold {
		reward -= r.DropPenalty
	}
	if after.Throughput < r.ThroughputPenaltyThreshold {
		reward -= r.ThroughputPenalty
	}
	return reward
}
