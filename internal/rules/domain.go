package rules

// Rules is the singleton record of tenant-wide business thresholds.
// Validators and analytics read it; only the admin update command
// mutates it, always wholesale.
type Rules struct {
	MaxDiscountPercentage  float64 `json:"maxDiscountPercentage"`
	MinTimeBetweenRequests int     `json:"minTimeBetweenRequests"` // hours
	DailyVolumeLimit       int     `json:"dailyVolumeLimit"`
}

// Defaults returns the thresholds applied before any admin edit.
func Defaults() Rules {
	return Rules{
		MaxDiscountPercentage:  50,
		MinTimeBetweenRequests: 24,
		DailyVolumeLimit:       10,
	}
}
