package editor

import "math"

// Quality bounds of the 1..12 JPEG scale used throughout the configuration
const (
	MinQuality = 1
	MaxQuality = 12
)

// EncoderQuality maps the 1..12 scale onto an encoder's 1..100 scale
func EncoderQuality(q int) int {
	if q < MinQuality {
		q = MinQuality
	}
	if q > MaxQuality {
		q = MaxQuality
	}
	return int(math.Round(float64(q) / MaxQuality * 100))
}
