package state

import (
	"errors"
	"reflect"
	"testing"

	"github.com/Its-donkey/newsdesk/internal/ui/model"
)

func orders(items []model.Item) []int {
	out := make([]int, len(items))
	for i, it := range items {
		out[i] = it.Order
	}
	return out
}

func headlines(items []model.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Get(model.FieldHeadline)
	}
	return out
}

func TestInsertPreservesInsertionOrderAndSortsOnEdit(t *testing.T) {
	s := NewStore("be")
	for _, o := range []int{3, 1, 2} {
		if err := s.Insert(model.NewsStories, model.NewItem(o)); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	items, _ := s.Snapshot(model.NewsStories)
	if got := orders(items); !reflect.DeepEqual(got, []int{3, 1, 2}) {
		t.Fatalf("expected insertion order [3 1 2] got %v", got)
	}
	if err := s.Update(model.NewsStories, 2, model.OrderPatch(0)); err != nil {
		t.Fatalf("update: %v", err)
	}
	items, _ = s.Snapshot(model.NewsStories)
	if got := orders(items); !reflect.DeepEqual(got, []int{0, 3, 1}) {
		t.Fatalf("expected [0 3 1] got %v", got)
	}
}

func TestInsertDefaultsOrderToCountPlusOne(t *testing.T) {
	s := NewStore("be")
	_ = s.Insert(model.FamilyNotices, model.NewItem(0, model.FieldName, "A"))
	_ = s.Insert(model.FamilyNotices, model.NewItem(-4, model.FieldName, "B"))
	_ = s.Insert(model.FamilyNotices, model.NewItem(9, model.FieldName, "C"))
	items, _ := s.Snapshot(model.FamilyNotices)
	if got := orders(items); !reflect.DeepEqual(got, []int{1, 2, 9}) {
		t.Fatalf("expected [1 2 9] got %v", got)
	}
}

func TestInsertThenRemoveInReverseYieldsEmpty(t *testing.T) {
	s := NewStore("be")
	const n = 6
	for i := 0; i < n; i++ {
		if err := s.Insert(model.SportsStories, model.NewItem(0)); err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
	}
	for i := n - 1; i >= 0; i-- {
		if err := s.Remove(model.SportsStories, i); err != nil {
			t.Fatalf("remove %d: %v", i, err)
		}
	}
	if got := s.Len(model.SportsStories); got != 0 {
		t.Fatalf("expected empty collection got %d items", got)
	}
}

func TestUpdateSortIsStableOnTies(t *testing.T) {
	s := NewStore("be")
	for i, h := range []string{"a", "b", "c", "d"} {
		_ = s.Insert(model.NewsStories, model.NewItem(i+1, model.FieldHeadline, h))
	}
	// d moves onto order 2, tying with b; b was first so it stays ahead.
	if err := s.Update(model.NewsStories, 3, model.OrderPatch(2)); err != nil {
		t.Fatalf("update: %v", err)
	}
	items, _ := s.Snapshot(model.NewsStories)
	if got := headlines(items); !reflect.DeepEqual(got, []string{"a", "b", "d", "c"}) {
		t.Fatalf("expected [a b d c] got %v", got)
	}

	tied := NewStore("be")
	for _, h := range []string{"e", "f", "g"} {
		_ = tied.Insert(model.NewsStories, model.NewItem(1, model.FieldHeadline, h))
	}
	if err := tied.Update(model.NewsStories, 2, model.OrderPatch(0)); err != nil {
		t.Fatalf("update: %v", err)
	}
	items, _ = tied.Snapshot(model.NewsStories)
	if got := headlines(items); !reflect.DeepEqual(got, []string{"g", "e", "f"}) {
		t.Fatalf("expected [g e f] got %v", got)
	}
}

func TestFieldOnlyUpdateDoesNotResort(t *testing.T) {
	s := NewStore("be")
	_ = s.Insert(model.NewsStories, model.NewItem(5, model.FieldHeadline, "first"))
	_ = s.Insert(model.NewsStories, model.NewItem(1, model.FieldHeadline, "second"))
	err := s.Update(model.NewsStories, 0, model.ItemPatch{Fields: map[string]string{model.FieldAuthor: "Desk"}})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	items, _ := s.Snapshot(model.NewsStories)
	if got := headlines(items); !reflect.DeepEqual(got, []string{"first", "second"}) {
		t.Fatalf("unrelated edit moved rows: %v", got)
	}
	if items[0].Get(model.FieldAuthor) != "Desk" || items[0].Get(model.FieldHeadline) != "first" {
		t.Fatalf("fields not merged: %+v", items[0].Fields)
	}
}

func TestIndexOutOfRange(t *testing.T) {
	s := NewStore("be")
	_ = s.Insert(model.VerticalAdverts, model.NewItem(0))
	cases := []struct {
		name string
		run  func() error
	}{
		{name: "update past end", run: func() error { return s.Update(model.VerticalAdverts, 1, model.OrderPatch(2)) }},
		{name: "update negative", run: func() error { return s.Update(model.VerticalAdverts, -1, model.OrderPatch(2)) }},
		{name: "remove past end", run: func() error { return s.Remove(model.VerticalAdverts, 3) }},
		{name: "remove empty", run: func() error { return s.Remove(model.HorizontalAdverts, 0) }},
	}
	for _, tc := range cases {
		err := tc.run()
		if !errors.Is(err, ErrIndexOutOfRange) {
			t.Fatalf("%s: expected ErrIndexOutOfRange got %v", tc.name, err)
		}
		var idxErr *IndexError
		if !errors.As(err, &idxErr) {
			t.Fatalf("%s: expected *IndexError got %T", tc.name, err)
		}
	}
	if s.Len(model.VerticalAdverts) != 1 {
		t.Fatalf("failed operations must not mutate the collection")
	}
}

func TestUnknownCollection(t *testing.T) {
	s := NewStore("be")
	if err := s.Insert("adverts", model.NewItem(1)); !errors.Is(err, ErrUnknownCollection) {
		t.Fatalf("expected ErrUnknownCollection got %v", err)
	}
	if _, err := s.Snapshot("nope"); !errors.Is(err, ErrUnknownCollection) {
		t.Fatalf("expected ErrUnknownCollection got %v", err)
	}
}

func TestReplaceInvalidatesAllViews(t *testing.T) {
	s := NewStore("be")
	_ = s.Insert(model.NewsStories, model.NewItem(1, model.FieldHeadline, "old"))
	s.TakeDirty()

	doc := model.NewDocument("ge")
	doc.NewsStories = []model.Item{model.NewItem(1, model.FieldHeadline, "new")}
	s.Replace(doc)

	dirty := s.TakeDirty()
	if len(dirty) != len(model.AllCollections)+1 {
		t.Fatalf("expected every view dirty, got %v", dirty)
	}
	items, _ := s.Snapshot(model.NewsStories)
	if got := headlines(items); !reflect.DeepEqual(got, []string{"new"}) {
		t.Fatalf("expected only new items got %v", got)
	}
	if s.EmailType() != "ge" {
		t.Fatalf("expected email type ge got %q", s.EmailType())
	}
	doc.NewsStories[0].Fields[model.FieldHeadline] = "mutated"
	items, _ = s.Snapshot(model.NewsStories)
	if items[0].Get(model.FieldHeadline) != "new" {
		t.Fatalf("store aliased the replaced document")
	}
}

func TestDirtyTracksMutatedCollections(t *testing.T) {
	s := NewStore("be")
	s.TakeDirty()
	rev := s.Revision()
	_ = s.Insert(model.PodcastStories, model.NewItem(0))
	s.SetWeather(model.Weather{Tides: "High 06:10"})
	if got := s.TakeDirty(); !reflect.DeepEqual(got, []string{model.PodcastStories, ScalarsView}) {
		t.Fatalf("unexpected dirty set %v", got)
	}
	if s.Revision() <= rev {
		t.Fatalf("revision did not advance")
	}
	if got := s.Dirty(); len(got) != 0 {
		t.Fatalf("TakeDirty should clear the set, got %v", got)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	s := NewStore("be")
	_ = s.Insert(model.NewsStories, model.NewItem(1, model.FieldHeadline, "x"))
	items, _ := s.Snapshot(model.NewsStories)
	items[0].Fields[model.FieldHeadline] = "y"
	items[0].Order = 42
	again, _ := s.Snapshot(model.NewsStories)
	if again[0].Get(model.FieldHeadline) != "x" || again[0].Order != 1 {
		t.Fatalf("snapshot leaked internal state: %+v", again[0])
	}
}
