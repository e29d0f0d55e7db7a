package expense

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestLineAmount(t *testing.T) {
	tests := []struct {
		qty, price, want string
	}{
		{"10", "150", "1500"},
		{"2.5", "3.333", "8.33"},
		{"0", "99", "0"},
		{"-1", "10", "0"},
		{"4", "-2", "0"},
	}
	for _, tt := range tests {
		got := LineAmount(decimal.RequireFromString(tt.qty), decimal.RequireFromString(tt.price))
		if !got.Equal(decimal.RequireFromString(tt.want)) {
			t.Errorf("LineAmount(%s, %s) = %s, want %s", tt.qty, tt.price, got, tt.want)
		}
	}
}
