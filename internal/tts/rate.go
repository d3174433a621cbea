package tts

import (
	"fmt"
	"math"
)

const (
	minRatePercent = -50
	maxRatePercent = 100
)

// RateFromSpeed maps a playback speed multiplier to the percentage rate
// string the Edge speech service expects, for example "+5%" for 1.05.
// Speeds at or near 1.0 return the empty string so the voice keeps its
// natural rate. The result is clamped to the range the service accepts.
func RateFromSpeed(speed float64) string {
	if speed <= 0 {
		return ""
	}

	delta := (speed - 1.0) * 100
	if math.Abs(delta) < 0.5 {
		return ""
	}

	if delta > maxRatePercent {
		delta = maxRatePercent
	} else if delta < minRatePercent {
		delta = minRatePercent
	}

	rounded := int(math.Round(delta))
	if rounded == 0 {
		return ""
	}
	return fmt.Sprintf("%+d%%", rounded)
}
