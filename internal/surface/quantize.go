package surface

import "math"

const (
	// MinRaw and MaxRaw bound every code produced by quantization; Invalid is never produced
	MinRaw = math.MinInt16 + 1
	MaxRaw = math.MaxInt16
)

// Clamp saturates v to the range of valid raw codes
func Clamp(v int64) int16 {
	if v < MinRaw {
		return MinRaw
	}
	if v > MaxRaw {
		return MaxRaw
	}
	return int16(v)
}

// bound applied to quantized steps before they are converted to int64
const maxStep = 1e18

// QuantizeStep returns round((v - offset) / scale), bounded so that it always fits an int64.
// The second return value is false when v is not a finite number.
func QuantizeStep(v, offset, scale float32) (int64, bool) {
	if !isFinite(v) {
		return 0, false
	}
	q := math.Round(float64(v-offset) / float64(scale))
	if math.IsNaN(q) {
		return 0, false
	}
	return int64(math.Max(-maxStep, math.Min(maxStep, q))), true
}

// Quantize encodes v as a raw code, saturating to [MinRaw, MaxRaw]. Non finite values encode to Invalid.
func Quantize(v, offset, scale float32) int16 {
	q, ok := QuantizeStep(v, offset, scale)
	if !ok {
		return Invalid
	}
	return Clamp(q)
}

// ClampIntensity saturates v to a byte
func ClampIntensity(v int64) uint8 {
	if v < 0 {
		return 0
	}
	if v > math.MaxUint8 {
		return math.MaxUint8
	}
	return uint8(v)
}
