package recommendation

import (
	"math"

	"marketpush/internal/domain"
)

// ScoreAccessory ranks an accessory as an add-on for the trigger device.
func ScoreAccessory(accessory, device domain.Item) int {
	score := 0
	if accessory.CompatibleWith(device.Brand) {
		score += 100
	}
	if accessory.DeviceCategory != "" && accessory.DeviceCategory == device.Category {
		score += 50
	}
	if len(accessory.CompatibleBrands) > 2 {
		score += 10
	}
	if accessory.Price < device.Price*0.3 {
		score += 5
	}
	return score
}

// ScoreSimilarDevice ranks a device as an alternative to the one the user is browsing.
// Category outweighs brand.
func ScoreSimilarDevice(candidate, trigger domain.Item) int {
	score := 0
	if candidate.Category == trigger.Category {
		score += 100
	}
	if candidate.Brand != "" && candidate.Brand == trigger.Brand {
		score += 30
	}
	if math.Abs(candidate.Price-trigger.Price) < trigger.Price*0.3 {
		score += 10
	}
	return score
}
