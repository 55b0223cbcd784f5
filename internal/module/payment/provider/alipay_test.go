package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestYuanToMinor(t *testing.T) {
	tests := []struct {
		name  string
		yuan  string
		want  int64
		isErr bool
	}{
		{"exact cents", "19.99", 1999, false},
		{"whole yuan", "100.00", 10000, false},
		{"no decimals", "7", 700, false},
		{"single cent", "0.01", 1, false},
		{"float-hostile value", "2.67", 267, false},
		{"garbage", "not-a-number", 0, true},
		{"empty", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := yuanToMinor(tt.yuan)
			if tt.isErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
