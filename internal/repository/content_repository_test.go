package repository

import (
	"testing"

	"github.com/symposium-labs/engage/internal/content"
)

func TestContentRepository_SeedAndList(t *testing.T) {
	db := setupTestDB(t)
	repo := NewContentRepository(db)
	ctx := t.Context()

	seed, err := content.Default()
	if err != nil {
		t.Fatalf("content.Default() failed: %v", err)
	}

	if err := repo.Seed(ctx, seed); err != nil {
		t.Fatalf("Seed() failed: %v", err)
	}
	// Seeding twice must not duplicate rows.
	if err := repo.Seed(ctx, seed); err != nil {
		t.Fatalf("Seed() second call failed: %v", err)
	}

	counts, err := repo.Counts(ctx)
	if err != nil {
		t.Fatalf("Counts() failed: %v", err)
	}
	if counts["posts"] != int64(len(seed.Posts)) {
		t.Errorf("Expected %d posts, got %d", len(seed.Posts), counts["posts"])
	}
	if counts["virtual_spaces"] != int64(len(seed.VirtualSpaces)) {
		t.Errorf("Expected %d spaces, got %d", len(seed.VirtualSpaces), counts["virtual_spaces"])
	}

	papers, err := repo.Papers(ctx)
	if err != nil {
		t.Fatalf("Papers() failed: %v", err)
	}
	if len(papers) != len(seed.Papers) {
		t.Fatalf("Expected %d papers, got %d", len(seed.Papers), len(papers))
	}
	for i := range papers {
		if papers[i].ID != seed.Papers[i].ID {
			t.Errorf("Position %d: expected %s, got %s", i, seed.Papers[i].ID, papers[i].ID)
		}
	}
	if len(papers[0].Authors) == 0 || len(papers[0].Keywords) == 0 {
		t.Errorf("Expected JSON columns to round-trip, got %+v", papers[0])
	}

	rooms, err := repo.VoiceRooms(ctx)
	if err != nil || len(rooms) != len(seed.VoiceRooms) {
		t.Errorf("Expected %d rooms, got %d (err %v)", len(seed.VoiceRooms), len(rooms), err)
	}
}

func TestContentRepository_SeedOverwritesByID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewContentRepository(db)
	ctx := t.Context()

	first, err := content.Parse([]byte(`
courses:
  - id: c1
    title: Original Title
`))
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}
	second, _ := content.Parse([]byte(`
courses:
  - id: c1
    title: Renamed Title
`))

	_ = repo.Seed(ctx, first)
	if err := repo.Seed(ctx, second); err != nil {
		t.Fatalf("Seed() failed: %v", err)
	}

	courses, _ := repo.Courses(ctx)
	if len(courses) != 1 || courses[0].Title != "Renamed Title" {
		t.Errorf("Expected renamed course, got %+v", courses)
	}
}
