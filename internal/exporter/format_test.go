package exporter

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		decimals int
		expected string
	}{
		{"zero value", 0, 2, "0.00"},
		{"rounds to precision", 104.761904, 4, "104.7619"},
		{"negative", -0.238095, 4, "-0.2381"},
		{"negative rounding to zero", -0.00001, 2, "0.00"},
		{"no decimals", 12.6, 0, "13"},
		{"shortest representation", 0.1 + 0.2, -1, "0.30000000000000004"},
		{"NaN is empty", math.NaN(), 2, ""},
		{"infinity is empty", math.Inf(1), 2, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatFloat(tt.input, tt.decimals))
		})
	}
}

func TestFormatCell(t *testing.T) {
	rate := 4.7619
	var missing *float64

	tests := []struct {
		name     string
		input    interface{}
		expected string
	}{
		{"nil", nil, ""},
		{"float", 1.5, "1.50"},
		{"optional set", &rate, "4.76"},
		{"optional nil", missing, ""},
		{"int", 2020, "2020"},
		{"int64", int64(-3), "-3"},
		{"bool", true, "true"},
		{"string", "Basis", "Basis"},
		{"unsupported", struct{}{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatCell(tt.input, 2))
		})
	}
}
