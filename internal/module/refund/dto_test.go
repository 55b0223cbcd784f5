package refund

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMajorToMinor(t *testing.T) {
	tests := []struct {
		name   string
		amount float64
		want   int64
	}{
		{"whole dollars", 100.0, 10000},
		{"exact cents", 19.99, 1999},
		{"half cent rounds up", 10.005, 1001},
		{"just below half cent rounds down", 10.004, 1000},
		{"just above half cent rounds up", 10.006, 1001},
		{"zero", 0, 0},
		{"single cent", 0.01, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MajorToMinor(tt.amount))
		})
	}
}

func TestMinorToDecimal(t *testing.T) {
	assert.Equal(t, "100.00", MinorToDecimal(10000))
	assert.Equal(t, "19.99", MinorToDecimal(1999))
	assert.Equal(t, "0.05", MinorToDecimal(5))
	assert.Equal(t, "0.00", MinorToDecimal(0))
	assert.Equal(t, "-3.50", MinorToDecimal(-350))
}
