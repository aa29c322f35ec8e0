package leveling

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Requirement is the unlock condition of an achievement.
// Implementations are CounterThreshold and EarlyMemberRank.
type Requirement interface {
	Satisfied(s Stats) bool
	isRequirement()
}

// CounterThreshold is satisfied once a counter reaches Count.
type CounterThreshold struct {
	Stat  StatKind `json:"stat"`
	Count int      `json:"count"`
}

// Satisfied implements Requirement.
func (r CounterThreshold) Satisfied(s Stats) bool {
	return s.Counter(r.Stat) >= r.Count
}

func (CounterThreshold) isRequirement() {}

// MarshalJSON tags the requirement with its kind.
func (r CounterThreshold) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type  string   `json:"type"`
		Stat  StatKind `json:"stat"`
		Count int      `json:"count"`
	}{"count", r.Stat, r.Count})
}

// EarlyMemberRank is satisfied by the first Rank members to sign up.
type EarlyMemberRank struct {
	Rank int `json:"rank"`
}

// Satisfied implements Requirement.
func (r EarlyMemberRank) Satisfied(s Stats) bool {
	return s.MemberNumber >= 1 && s.MemberNumber <= r.Rank
}

func (EarlyMemberRank) isRequirement() {}

// MarshalJSON tags the requirement with its kind.
func (r EarlyMemberRank) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type string `json:"type"`
		Rank int    `json:"rank"`
	}{"rank", r.Rank})
}

// Achievement is an immutable catalog entry. A nil Requirement means the
// achievement can only be granted manually.
type Achievement struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Icon        string      `json:"icon"`
	XP          int         `json:"xp"`
	Category    string      `json:"category"`
	Requirement Requirement `json:"requirement,omitempty"`
}

// Catalog is an ordered set of achievements.
type Catalog struct {
	items []Achievement
	byID  map[string]int
}

// NewCatalog builds a catalog, rejecting empty or duplicate ids.
func NewCatalog(items []Achievement) (*Catalog, error) {
	c := &Catalog{
		items: make([]Achievement, 0, len(items)),
		byID:  make(map[string]int, len(items)),
	}
	for _, a := range items {
		if a.ID == "" {
			return nil, fmt.Errorf("achievement without id")
		}
		if _, dup := c.byID[a.ID]; dup {
			return nil, fmt.Errorf("duplicate achievement id %q", a.ID)
		}
		if a.XP < 0 {
			return nil, fmt.Errorf("achievement %q has negative xp", a.ID)
		}
		c.byID[a.ID] = len(c.items)
		c.items = append(c.items, a)
	}
	return c, nil
}

// All returns the achievements in catalog order.
func (c *Catalog) All() []Achievement {
	out := make([]Achievement, len(c.items))
	copy(out, c.items)
	return out
}

// Get looks up an achievement by id.
func (c *Catalog) Get(id string) (Achievement, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Achievement{}, false
	}
	return c.items[i], true
}

// Len returns the number of achievements.
func (c *Catalog) Len() int {
	return len(c.items)
}

// DefaultCatalog returns the built-in achievements.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog([]Achievement{
		{ID: "first_post", Name: "First Words", Description: "Share your first post with the community",
			Icon: "✍️", XP: 10, Category: "community", Requirement: CounterThreshold{Stat: StatPostsCreated, Count: 1}},
		{ID: "prolific_poster", Name: "Prolific Poster", Description: "Create 50 posts",
			Icon: "📣", XP: 100, Category: "community", Requirement: CounterThreshold{Stat: StatPostsCreated, Count: 50}},
		{ID: "first_paper", Name: "Published", Description: "Upload your first research paper",
			Icon: "📄", XP: 50, Category: "research", Requirement: CounterThreshold{Stat: StatPapersUploaded, Count: 1}},
		{ID: "research_contributor", Name: "Research Contributor", Description: "Upload 10 research papers",
			Icon: "🔬", XP: 200, Category: "research", Requirement: CounterThreshold{Stat: StatPapersUploaded, Count: 10}},
		{ID: "course_creator", Name: "Educator", Description: "Create your first course",
			Icon: "🎓", XP: 100, Category: "education", Requirement: CounterThreshold{Stat: StatCoursesCreated, Count: 1}},
		{ID: "lifelong_learner", Name: "Lifelong Learner", Description: "Complete 25 lessons",
			Icon: "📚", XP: 150, Category: "education", Requirement: CounterThreshold{Stat: StatLessonsCompleted, Count: 25}},
		{ID: "course_finisher", Name: "Graduate", Description: "Complete a full course",
			Icon: "🏅", XP: 100, Category: "education", Requirement: CounterThreshold{Stat: StatCoursesCompleted, Count: 1}},
		{ID: "conversationalist", Name: "Conversationalist", Description: "Leave 100 comments",
			Icon: "💬", XP: 100, Category: "community", Requirement: CounterThreshold{Stat: StatCommentsMade, Count: 100}},
		{ID: "week_streak", Name: "Dedicated", Description: "Log in 7 days in a row",
			Icon: "🔥", XP: 50, Category: "engagement", Requirement: CounterThreshold{Stat: StatLoginStreak, Count: 7}},
		{ID: "month_streak", Name: "Devoted", Description: "Log in 30 days in a row",
			Icon: "⚡", XP: 250, Category: "engagement", Requirement: CounterThreshold{Stat: StatLoginStreak, Count: 30}},
		{ID: "early_adopter", Name: "Early Adopter", Description: "One of the first 100 members",
			Icon: "🚀", XP: 100, Category: "special", Requirement: EarlyMemberRank{Rank: 100}},
	})
	if err != nil {
		panic(err)
	}
	return c
}

// catalogFile is the YAML shape of an achievement catalog override.
type catalogFile struct {
	Achievements []struct {
		ID          string `yaml:"id"`
		Name        string `yaml:"name"`
		Description string `yaml:"description"`
		Icon        string `yaml:"icon"`
		XP          int    `yaml:"xp"`
		Category    string `yaml:"category"`
		Requirement *struct {
			Type  string `yaml:"type"` // "count" or "rank"
			Stat  string `yaml:"stat"`
			Count int    `yaml:"count"`
			Rank  int    `yaml:"rank"`
		} `yaml:"requirement"`
	} `yaml:"achievements"`
}

// LoadCatalog reads an achievement catalog from a YAML file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes a YAML achievement catalog.
func ParseCatalog(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	items := make([]Achievement, 0, len(file.Achievements))
	for _, entry := range file.Achievements {
		a := Achievement{
			ID:          entry.ID,
			Name:        entry.Name,
			Description: entry.Description,
			Icon:        entry.Icon,
			XP:          entry.XP,
			Category:    entry.Category,
		}
		if req := entry.Requirement; req != nil {
			switch req.Type {
			case "count":
				if req.Stat == "" || req.Count < 1 {
					return nil, fmt.Errorf("achievement %q: count requirement needs stat and count >= 1", entry.ID)
				}
				kind, err := ParseStat(req.Stat)
				if err != nil {
					return nil, fmt.Errorf("achievement %q: %w", entry.ID, err)
				}
				a.Requirement = CounterThreshold{Stat: kind, Count: req.Count}
			case "rank":
				if req.Rank < 1 {
					return nil, fmt.Errorf("achievement %q: rank requirement needs rank >= 1", entry.ID)
				}
				a.Requirement = EarlyMemberRank{Rank: req.Rank}
			default:
				return nil, fmt.Errorf("achievement %q: unknown requirement type %q", entry.ID, req.Type)
			}
		}
		items = append(items, a)
	}

	return NewCatalog(items)
}
