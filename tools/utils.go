package tools

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ecopia-map/surface_sampler/internal/geometry"
)

func FmtJSONString(v interface{}) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "marshal data fail"
	}
	return string(data)
}

const (
	FloatMin = 0.000001
)

func IsFloatEqual(f1, f2 float64) bool {
	return math.Abs(f1-f2) < FloatMin
}

// Parses 16 comma or space separated values, in row-major order, into a matrix
func ParseMatrix(value string) (*geometry.Matrix4, error) {
	fields := strings.FieldsFunc(value, func(r rune) bool {
		return r == ',' || r == ' ' || r == ';'
	})
	values := make([]float32, len(fields))
	for i, field := range fields {
		v, err := strconv.ParseFloat(field, 32)
		if err != nil {
			return nil, fmt.Errorf("matrix value %d: %w", i, err)
		}
		values[i] = float32(v)
	}
	matrix, err := geometry.NewMatrix4(values)
	if err != nil {
		return nil, err
	}
	return &matrix, nil
}
