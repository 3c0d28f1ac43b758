package trip

import "math"

const rewardBase = 50

// arrivalReward reconciles the completion reward. The base amount grows by a
// multiplier for each accuracy signal: prediction within 5 minutes of the
// actual duration (+0.4), within 10 (+0.2), and an expected congestion level
// of 2 or better (+0.2). Tags name the signals that fired.
func arrivalReward(predictedMin, actualMin, congestionLevel int) (int, []string) {
	multiplier := 1.0
	var tags []string

	diff := predictedMin - actualMin
	if diff < 0 {
		diff = -diff
	}
	switch {
	case diff <= 5:
		multiplier += 0.4
		tags = append(tags, "exact_time")
	case diff <= 10:
		multiplier += 0.2
		tags = append(tags, "close_time")
	}

	if congestionLevel <= 2 {
		multiplier += 0.2
		tags = append(tags, "low_congestion")
	}

	return int(math.Round(rewardBase * multiplier)), tags
}
