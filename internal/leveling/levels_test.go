package leveling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThresholdsStrictlyIncreasing(t *testing.T) {
	table := Thresholds()
	require.Len(t, table, 50)
	assert.Equal(t, 0, table[0])
	assert.Equal(t, []int{0, 100, 250, 500, 850, 1300}, table[:6])

	for i := 1; i < len(table); i++ {
		if table[i] <= table[i-1] {
			t.Fatalf("threshold[%d]=%d is not greater than threshold[%d]=%d", i, table[i], i-1, table[i-1])
		}
	}
}

func TestLevelForXP(t *testing.T) {
	tests := []struct {
		xp   int
		want int
	}{
		{0, 1},
		{50, 1},
		{99, 1},
		{100, 2},
		{249, 2},
		{250, 3},
		{1300, 6},
		{120099, 49},
		{120100, 50},
		{10_000_000, 50},
	}

	for _, tt := range tests {
		if got := LevelForXP(tt.xp); got != tt.want {
			t.Errorf("LevelForXP(%d) = %d, want %d", tt.xp, got, tt.want)
		}
	}
}

func TestLevelForXP_ThresholdBoundaries(t *testing.T) {
	table := Thresholds()
	for i, threshold := range table {
		assert.Equal(t, i+1, LevelForXP(threshold), "at threshold[%d]", i)
		if i > 0 {
			assert.Equal(t, i, LevelForXP(threshold-1), "just below threshold[%d]", i)
		}
	}
}

func TestLevelForXP_Monotonic(t *testing.T) {
	prev := LevelForXP(0)
	for xp := 1; xp <= 125000; xp += 7 {
		level := LevelForXP(xp)
		if level < prev {
			t.Fatalf("level decreased from %d to %d at xp=%d", prev, level, xp)
		}
		prev = level
	}
}

func TestXPRequiredForNextLevel(t *testing.T) {
	assert.Equal(t, 100, XPRequiredForNextLevel(1))
	assert.Equal(t, 250, XPRequiredForNextLevel(2))
	assert.Equal(t, 120100, XPRequiredForNextLevel(49))
	assert.Equal(t, 120100, XPRequiredForNextLevel(50))
	assert.Equal(t, 120100, XPRequiredForNextLevel(99))
	assert.Equal(t, 0, XPRequiredForNextLevel(0))
}

func TestProgress(t *testing.T) {
	t.Run("start of level", func(t *testing.T) {
		p := Progress(0)
		assert.Equal(t, 1, p.Level)
		assert.Equal(t, 0, p.Current)
		assert.Equal(t, 100, p.Needed)
		assert.Equal(t, 100, p.NextAt)
		assert.InDelta(t, 0.0, p.Percent, 0.001)
	})

	t.Run("midway", func(t *testing.T) {
		p := Progress(175)
		assert.Equal(t, 2, p.Level)
		assert.Equal(t, 75, p.Current)
		assert.Equal(t, 150, p.Needed)
		assert.InDelta(t, 50.0, p.Percent, 0.001)
	})

	t.Run("max level", func(t *testing.T) {
		p := Progress(200000)
		assert.Equal(t, MaxLevel, p.Level)
		assert.InDelta(t, 100.0, p.Percent, 0.001)
	})
}
