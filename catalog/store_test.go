package catalog

import (
	"testing"
)

func testStore(t *testing.T) *Store {
	t.Helper()

	channels := []Channel{
		{ID: 10, Name: "News One", CategoryID: "1"},
		{ID: 20, Name: "Sports A", CategoryID: "2"},
		{ID: 30, Name: "News Two", CategoryID: "1", ArchiveDuration: 7},
		{ID: 40, Name: "Movies", CategoryID: "3"},
	}
	categories := []Category{
		{ID: "1", Name: "News"},
		{ID: "2", Name: "Sports"},
		{ID: "3", Name: "Movies"},
	}

	store, err := NewStore(channels, categories)
	if err != nil {
		t.Fatalf("error building store: %v", err)
	}
	return store
}

func TestStoreChannelsPreserveOrder(t *testing.T) {
	store := testStore(t)

	got := store.Channels()
	want := []int{10, 20, 30, 40}
	if len(got) != len(want) {
		t.Fatalf("expected %d channels, got %d", len(want), len(got))
	}
	for i, ch := range got {
		if ch.ID != want[i] {
			t.Errorf("position %d: got channel %d, want %d", i, ch.ID, want[i])
		}
	}
}

func TestStoreChannelByID(t *testing.T) {
	store := testStore(t)

	ch, ok := store.ChannelByID(30)
	if !ok || ch.Name != "News Two" || ch.ArchiveDuration != 7 {
		t.Errorf("unexpected lookup result: %+v (found=%v)", ch, ok)
	}

	if _, ok := store.ChannelByID(999); ok {
		t.Error("lookup of unknown id should fail")
	}
}

func TestStoreCategoryName(t *testing.T) {
	store := testStore(t)

	if name := store.CategoryName("2"); name != "Sports" {
		t.Errorf("expected Sports, got %q", name)
	}
	if name := store.CategoryName("nope"); name != "" {
		t.Errorf("expected empty name for unknown category, got %q", name)
	}
}

func TestStoreFilterByCategoryName(t *testing.T) {
	store := testStore(t)

	news := store.FilterByCategoryName("News")
	if len(news) != 2 {
		t.Fatalf("expected 2 news channels, got %d", len(news))
	}
	if news[0].ID != 10 || news[1].ID != 30 {
		t.Errorf("filter broke catalog order: %+v", news)
	}

	if got := store.FilterByCategoryName("Documentary"); got != nil {
		t.Errorf("expected nil for unknown category, got %+v", got)
	}
}
