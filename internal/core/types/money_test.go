package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFitsScale(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"0", true},
		{"100", true},
		{"2.13", true},
		{"2.130", true},
		{"-7.5", true},
		{"2.125", false},
		{"0.001", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FitsScale(MustMoney(tt.in)), tt.in)
	}
}

func TestPercent(t *testing.T) {
	assert.True(t, MustMoney("21250").Equal(Percent(MustMoney("1000000"), MustMoney("2.125"))))
	assert.True(t, MustMoney("21300").Equal(Percent(MustMoney("1000000"), MustMoney("2.13"))))
}
