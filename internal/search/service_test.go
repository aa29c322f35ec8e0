package search

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/symposium-labs/engage/internal/config"
	"github.com/symposium-labs/engage/internal/content"
	"github.com/symposium-labs/engage/internal/models"
	"github.com/symposium-labs/engage/pkg/logger"
)

// fakeCatalog serves fixed records and can fail a single content type.
type fakeCatalog struct {
	posts   []models.Post
	papers  []models.Paper
	courses []models.Course
	people  []models.Professional
	rooms   []models.VoiceRoom
	spaces  []models.VirtualSpace
	failOn  ContentType
}

func (f *fakeCatalog) fail(ct ContentType) error {
	if f.failOn == ct {
		return errors.New("catalog unavailable")
	}
	return nil
}

func (f *fakeCatalog) Posts(context.Context) ([]models.Post, error) {
	return f.posts, f.fail(TypePosts)
}

func (f *fakeCatalog) Papers(context.Context) ([]models.Paper, error) {
	return f.papers, f.fail(TypePapers)
}

func (f *fakeCatalog) Courses(context.Context) ([]models.Course, error) {
	return f.courses, f.fail(TypeCourses)
}

func (f *fakeCatalog) Professionals(context.Context) ([]models.Professional, error) {
	return f.people, f.fail(TypeUsers)
}

func (f *fakeCatalog) VoiceRooms(context.Context) ([]models.VoiceRoom, error) {
	return f.rooms, f.fail(TypeVoiceRooms)
}

func (f *fakeCatalog) VirtualSpaces(context.Context) ([]models.VirtualSpace, error) {
	return f.spaces, f.fail(TypeVirtualSpaces)
}

func testSearchConfig() config.SearchConfig {
	return config.SearchConfig{
		MinQueryLength:    2,
		DefaultLimit:      10,
		QuickLimit:        5,
		QuickPerTypeLimit: 3,
		MaxSuggestions:    5,
		AdapterTimeout:    time.Second,
		RecentLimit:       10,
	}
}

func setupSeedService(t *testing.T) *Service {
	t.Helper()
	seed, err := content.Default()
	require.NoError(t, err)
	return NewService(content.NewMemoryCatalog(seed), testSearchConfig(), logger.New("debug", "text", "stdout"))
}

func assertSorted(t *testing.T, results []Result) {
	t.Helper()
	for i := 0; i+1 < len(results); i++ {
		assert.GreaterOrEqual(t, results[i].RelevanceScore, results[i+1].RelevanceScore,
			"results[%d] (%s) scored below results[%d] (%s)", i, results[i].ID, i+1, results[i+1].ID)
	}
}

func TestGlobalSearch_ShortQuery(t *testing.T) {
	svc := setupSeedService(t)

	for _, q := range []string{"", "a", "  a  ", "   "} {
		resp, err := svc.GlobalSearch(context.Background(), q, Options{})
		require.NoError(t, err)
		assert.Equal(t, "", resp.Query)
		assert.Equal(t, 0, resp.TotalResults)
		assert.Empty(t, resp.Results)
		assert.NotNil(t, resp.Results)
		assert.Equal(t, []string{}, resp.Suggestions)
		assert.Nil(t, resp.Timestamp)
	}
}

func TestGlobalSearch_AllTypesSorted(t *testing.T) {
	svc := setupSeedService(t)

	resp, err := svc.GlobalSearch(context.Background(), "research", Options{})
	require.NoError(t, err)

	assert.Equal(t, "research", resp.Query)
	assert.NotNil(t, resp.Timestamp)
	assert.Len(t, resp.Results, 6)

	total := 0
	for ct, results := range resp.Results {
		assertSorted(t, results)
		for _, r := range results {
			assert.Equal(t, ct, r.Type)
		}
		total += len(results)
	}
	assert.Equal(t, total, resp.TotalResults)
	assert.Positive(t, total)
}

func TestGlobalSearch_TypeFilter(t *testing.T) {
	svc := setupSeedService(t)

	resp, err := svc.GlobalSearch(context.Background(), "therapy", Options{Type: TypePapers})
	require.NoError(t, err)

	require.Len(t, resp.Results, 1)
	papers, ok := resp.Results[TypePapers]
	require.True(t, ok)
	assert.NotEmpty(t, papers)
	assert.Equal(t, len(papers), resp.TotalResults)
	assertSorted(t, papers)
}

func TestGlobalSearch_Limit(t *testing.T) {
	svc := setupSeedService(t)

	resp, err := svc.GlobalSearch(context.Background(), "research", Options{Limit: 2})
	require.NoError(t, err)

	for ct, results := range resp.Results {
		assert.LessOrEqual(t, len(results), 2, "type %s", ct)
	}
}

func TestGlobalSearch_UnknownAndAdapterlessTypes(t *testing.T) {
	svc := setupSeedService(t)

	for _, ct := range []ContentType{TypeEvents, ContentType("podcasts")} {
		resp, err := svc.GlobalSearch(context.Background(), "research", Options{Type: ct})
		require.NoError(t, err)
		assert.Equal(t, "research", resp.Query)
		assert.Empty(t, resp.Results)
		assert.Zero(t, resp.TotalResults)
		assert.Equal(t, []string{}, resp.Suggestions)
	}
}

func TestGlobalSearch_StableTies(t *testing.T) {
	catalog := &fakeCatalog{
		courses: []models.Course{
			{ID: "c1", Title: "Intro to research"},
			{ID: "c2", Title: "Research methods"},
			{ID: "c3", Title: "Advanced research"},
			{ID: "c4", Title: "Unrelated", Description: "mentions research only in the body"},
		},
	}
	svc := NewService(catalog, testSearchConfig(), logger.New("debug", "text", "stdout"))

	resp, err := svc.GlobalSearch(context.Background(), "research", Options{Type: TypeCourses})
	require.NoError(t, err)

	courses := resp.Results[TypeCourses]
	ids := make([]string, 0, len(courses))
	for _, c := range courses {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []string{"c2", "c1", "c3", "c4"}, ids)
	assert.Equal(t, 170.0, courses[0].RelevanceScore)
	assert.Equal(t, 0.0, courses[3].RelevanceScore)
}

func TestGlobalSearch_ResultShapes(t *testing.T) {
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	catalog := &fakeCatalog{
		posts: []models.Post{
			{ID: "p1", Content: strings.Repeat("integration ", 20), Author: &models.Person{Name: "Ana"},
				Tags: []string{"integration"}, Reactions: 3, Comments: 1, CreatedAt: created},
			{ID: "p2", Content: "integration without an author"},
		},
		papers: []models.Paper{
			{ID: "x1", Title: "Integration outcomes", Abstract: "integration matters",
				Authors: []models.Person{{Name: "Lee"}}, Year: 2023},
		},
		people: []models.Professional{
			{ID: "u1", Name: "Kai", Title: "Integration Coach", Institution: "Open Clinic",
				Expertise: []string{"integration", "coaching"}},
		},
		rooms: []models.VoiceRoom{
			{ID: "r1", Title: "Integration hour", Status: "live", ListenerCount: 9},
		},
		spaces: []models.VirtualSpace{
			{ID: "s1", Name: "Garden", Features: []string{"integration circle"}},
		},
	}
	svc := NewService(catalog, testSearchConfig(), logger.New("debug", "text", "stdout"))

	resp, err := svc.GlobalSearch(context.Background(), "integration", Options{})
	require.NoError(t, err)

	posts := resp.Results[TypePosts]
	require.Len(t, posts, 2)
	assert.Equal(t, "Post by Ana", posts[0].Title)
	assert.Equal(t, "/feed#p1", posts[0].URL)
	assert.Len(t, []rune(posts[0].Description), 153)
	assert.True(t, strings.HasSuffix(posts[0].Description, "..."))
	assert.Equal(t, 3, posts[0].Metadata["reactions"])
	assert.Equal(t, created, posts[0].Metadata["createdAt"])
	assert.Equal(t, "Post", posts[1].Title)
	assert.Equal(t, []string{}, posts[1].Metadata["tags"])

	papers := resp.Results[TypePapers]
	require.Len(t, papers, 1)
	assert.Equal(t, "/library/x1", papers[0].URL)
	// title: 100 + 20 + 50, abstract: (100 + 20 + 50) * 0.5
	assert.Equal(t, 255.0, papers[0].RelevanceScore)

	users := resp.Results[TypeUsers]
	require.Len(t, users, 1)
	assert.Equal(t, "Integration Coach at Open Clinic", users[0].Description)
	assert.Equal(t, "/profile/u1", users[0].URL)
	// name: 0, title: 170 * 0.5
	assert.Equal(t, 85.0, users[0].RelevanceScore)

	rooms := resp.Results[TypeVoiceRooms]
	require.Len(t, rooms, 1)
	assert.Equal(t, "/voice-rooms/r1", rooms[0].URL)
	assert.Equal(t, true, rooms[0].Metadata["isLive"])

	spaces := resp.Results[TypeVirtualSpaces]
	require.Len(t, spaces, 1)
	assert.Equal(t, "/virtual-space/s1", spaces[0].URL)
	assert.Equal(t, 0.0, spaces[0].RelevanceScore)

	assert.Empty(t, resp.Results[TypeCourses])
	assert.NotNil(t, resp.Results[TypeCourses])

	assert.Equal(t, []string{"coaching"}, resp.Suggestions)
}

func TestGlobalSearch_Suggestions(t *testing.T) {
	catalog := &fakeCatalog{
		posts: []models.Post{
			{ID: "p1", Content: "ketamine notes", Tags: []string{"Ketamine", "depression", "clinics"}},
			{ID: "p2", Content: "more ketamine notes", Tags: []string{"depression", "research", "dosing"}},
		},
		people: []models.Professional{
			{ID: "u1", Name: "Dr. K", Bio: "ketamine clinician", Expertise: []string{"anesthesia", "psychiatry"}},
		},
	}
	svc := NewService(catalog, testSearchConfig(), logger.New("debug", "text", "stdout"))

	resp, err := svc.GlobalSearch(context.Background(), "ketamine", Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{"depression", "clinics", "research", "dosing", "anesthesia"}, resp.Suggestions)
}

func TestGlobalSearch_SuggestionsOnlyFromPostsAndPeople(t *testing.T) {
	catalog := &fakeCatalog{
		posts: []models.Post{
			{ID: "p1", Content: "ketamine notes", Tags: []string{"depression"}},
		},
		rooms: []models.VoiceRoom{
			{ID: "r1", Title: "Ketamine hour", Tags: []string{"live-talk"}},
		},
		spaces: []models.VirtualSpace{
			{ID: "s1", Name: "Ketamine lounge", Tags: []string{"lounge"}},
		},
	}
	svc := NewService(catalog, testSearchConfig(), logger.New("debug", "text", "stdout"))

	resp, err := svc.GlobalSearch(context.Background(), "ketamine", Options{})
	require.NoError(t, err)

	require.Len(t, resp.Results[TypeVoiceRooms], 1)
	require.Len(t, resp.Results[TypeVirtualSpaces], 1)
	assert.NotContains(t, resp.Results[TypeVoiceRooms][0].Metadata, "tags")
	assert.NotContains(t, resp.Results[TypeVirtualSpaces][0].Metadata, "tags")
	assert.Equal(t, []string{"depression"}, resp.Suggestions)
}

func TestGlobalSearch_SuggestionsNeverContainQuery(t *testing.T) {
	svc := setupSeedService(t)

	for _, q := range []string{"psilocybin", "integration", "research", "Neuroplasticity"} {
		resp, err := svc.GlobalSearch(context.Background(), q, Options{})
		require.NoError(t, err)
		assert.LessOrEqual(t, len(resp.Suggestions), 5)
		for _, s := range resp.Suggestions {
			assert.False(t, strings.EqualFold(s, q), "suggestion %q equals query %q", s, q)
		}
	}
}

func TestGlobalSearch_AdapterError(t *testing.T) {
	catalog := &fakeCatalog{failOn: TypePapers}
	svc := NewService(catalog, testSearchConfig(), logger.New("debug", "text", "stdout"))

	_, err := svc.GlobalSearch(context.Background(), "therapy", Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "papers")

	// Other types are unaffected.
	_, err = svc.GlobalSearch(context.Background(), "therapy", Options{Type: TypeCourses})
	assert.NoError(t, err)
}

func TestGlobalSearch_SimulatedLatencyHonoursContext(t *testing.T) {
	cfg := testSearchConfig()
	cfg.SimulatedLatency = time.Minute
	svc := NewService(&fakeCatalog{}, cfg, logger.New("debug", "text", "stdout"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.GlobalSearch(ctx, "therapy", Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestQuickSearch(t *testing.T) {
	svc := setupSeedService(t)

	resp, err := svc.QuickSearch(context.Background(), "psilocybin", 5)
	require.NoError(t, err)

	assert.Equal(t, "psilocybin", resp.Query)
	assert.LessOrEqual(t, len(resp.Results), 5)
	assert.Equal(t, len(resp.Results), resp.TotalResults)
	assert.NotEmpty(t, resp.Results)
	assertSorted(t, resp.Results)
}

func TestQuickSearch_PerTypeLimit(t *testing.T) {
	courses := make([]models.Course, 6)
	for i := range courses {
		courses[i] = models.Course{ID: string(rune('a' + i)), Title: "Breathwork basics"}
	}
	svc := NewService(&fakeCatalog{courses: courses}, testSearchConfig(), logger.New("debug", "text", "stdout"))

	resp, err := svc.QuickSearch(context.Background(), "breathwork", 0)
	require.NoError(t, err)

	// Only three courses survive the per-type cut, in source order.
	require.Len(t, resp.Results, 3)
	assert.Equal(t, "a", resp.Results[0].ID)
	assert.Equal(t, "c", resp.Results[2].ID)
}

func TestQuickSearch_ShortQuery(t *testing.T) {
	svc := setupSeedService(t)

	resp, err := svc.QuickSearch(context.Background(), "p", 5)
	require.NoError(t, err)
	assert.Equal(t, "p", resp.Query)
	assert.Empty(t, resp.Results)
	assert.Zero(t, resp.TotalResults)
}

func TestStaticTrending(t *testing.T) {
	trending, err := StaticTrending{}.Trending(context.Background())
	require.NoError(t, err)
	require.Len(t, trending, 8)
	assert.Equal(t, TrendingQuery{Query: "psilocybin therapy", Count: 1250}, trending[0])
	assert.Equal(t, TrendingQuery{Query: "psychedelic safety", Count: 480}, trending[7])

	trending[0].Count = 0
	again, _ := StaticTrending{}.Trending(context.Background())
	assert.Equal(t, 1250, again[0].Count)
}
