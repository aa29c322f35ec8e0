package leveling

import (
	"fmt"
	"sort"
)

// Rank is the cosmetic title bound to a range of levels.
type Rank struct {
	Name  string `json:"name" yaml:"name"`
	Color string `json:"color" yaml:"color"`
	Icon  string `json:"icon" yaml:"icon"`
}

// RankTier binds a rank to the lowest level that earns it.
type RankTier struct {
	MinLevel int  `json:"min_level" yaml:"min_level"`
	Rank     Rank `json:"rank" yaml:"rank"`
}

// RankTable is a step function from level to rank.
type RankTable struct {
	tiers []RankTier
}

// NewRankTable sorts tiers by MinLevel and validates them. The lowest tier
// must start at level 1 and MinLevel values must be unique.
func NewRankTable(tiers []RankTier) (*RankTable, error) {
	if len(tiers) == 0 {
		return nil, fmt.Errorf("rank table must not be empty")
	}

	sorted := make([]RankTier, len(tiers))
	copy(sorted, tiers)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].MinLevel < sorted[j].MinLevel
	})

	if sorted[0].MinLevel != 1 {
		return nil, fmt.Errorf("lowest rank must start at level 1, got %d", sorted[0].MinLevel)
	}
	for i := 1; i < len(sorted); i++ {
		if sorted[i].MinLevel == sorted[i-1].MinLevel {
			return nil, fmt.Errorf("duplicate rank min level %d", sorted[i].MinLevel)
		}
	}

	return &RankTable{tiers: sorted}, nil
}

// MustRankTable is NewRankTable that panics on invalid input.
func MustRankTable(tiers []RankTier) *RankTable {
	t, err := NewRankTable(tiers)
	if err != nil {
		panic(err)
	}
	return t
}

// DefaultRankTiers returns the built-in rank ladder.
func DefaultRankTiers() []RankTier {
	return []RankTier{
		{MinLevel: 1, Rank: Rank{Name: "Novice", Color: "#9E9E9E", Icon: "🌱"}},
		{MinLevel: 5, Rank: Rank{Name: "Initiate", Color: "#8BC34A", Icon: "🌿"}},
		{MinLevel: 10, Rank: Rank{Name: "Apprentice", Color: "#4CAF50", Icon: "📘"}},
		{MinLevel: 15, Rank: Rank{Name: "Practitioner", Color: "#00BCD4", Icon: "🔬"}},
		{MinLevel: 20, Rank: Rank{Name: "Adept", Color: "#2196F3", Icon: "🧭"}},
		{MinLevel: 25, Rank: Rank{Name: "Expert", Color: "#3F51B5", Icon: "🎓"}},
		{MinLevel: 30, Rank: Rank{Name: "Master", Color: "#9C27B0", Icon: "🔮"}},
		{MinLevel: 35, Rank: Rank{Name: "Sage", Color: "#E91E63", Icon: "🦉"}},
		{MinLevel: 40, Rank: Rank{Name: "Luminary", Color: "#FF9800", Icon: "✨"}},
		{MinLevel: 45, Rank: Rank{Name: "Transcendent", Color: "#FFD700", Icon: "🌌"}},
	}
}

// DefaultRankTable returns the built-in rank ladder as a table.
func DefaultRankTable() *RankTable {
	return MustRankTable(DefaultRankTiers())
}

// Rank returns the rank of the greatest tier whose MinLevel is <= level.
// Levels below 1 get the lowest rank.
func (t *RankTable) Rank(level int) Rank {
	// first tier with MinLevel > level
	i := sort.Search(len(t.tiers), func(i int) bool {
		return t.tiers[i].MinLevel > level
	})
	if i == 0 {
		return t.tiers[0].Rank
	}
	return t.tiers[i-1].Rank
}

// Tiers returns a copy of the sorted tiers.
func (t *RankTable) Tiers() []RankTier {
	out := make([]RankTier, len(t.tiers))
	copy(out, t.tiers)
	return out
}
