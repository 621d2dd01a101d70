package mockapi

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Its-donkey/newsdesk/internal/ui/model"
)

func TestIsPostgresURL(t *testing.T) {
	cases := map[string]bool{
		"postgres://u:p@localhost/newsdesk":   true,
		"POSTGRESQL://localhost/newsdesk":     true,
		"data/adverts.db":                     false,
		":memory:":                            false,
		"":                                    false,
		"  postgres://localhost/newsdesk  ":   true,
		"file:postgres://not-really-a-server": false,
	}
	for in, want := range cases {
		if got := isPostgresURL(in); got != want {
			t.Fatalf("isPostgresURL(%q) = %v, want %v", in, got, want)
		}
	}
}

func exerciseAdverts(t *testing.T, store Adverts) {
	t.Helper()
	ctx := context.Background()

	empty, err := store.Load(ctx, "be")
	if err != nil {
		t.Fatalf("Load empty: %v", err)
	}
	if len(empty.VerticalAdverts) != 0 || empty.HorizontalAdverts == nil {
		t.Fatalf("empty load = %+v", empty)
	}

	first := model.AdvertSet{
		EmailType: "be",
		VerticalAdverts: []model.Item{
			model.NewItem(2, model.FieldURL, "https://a.example", model.FieldImageURL, "https://a.example/a.png"),
			model.NewItem(1, model.FieldURL, "https://b.example", model.FieldImageURL, ""),
		},
		HorizontalAdverts: []model.Item{
			model.NewItem(1, model.FieldURL, "https://h.example", model.FieldImageURL, "https://h.example/h.png"),
		},
	}
	if err := store.Save(ctx, first); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Save(ctx, model.AdvertSet{EmailType: "jep", VerticalAdverts: []model.Item{
		model.NewItem(1, model.FieldURL, "https://jep.example"),
	}}); err != nil {
		t.Fatalf("Save jep: %v", err)
	}

	got, err := store.Load(ctx, "be")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got.VerticalAdverts) != 2 || len(got.HorizontalAdverts) != 1 {
		t.Fatalf("loaded = %+v", got)
	}
	if got.VerticalAdverts[0].Get(model.FieldURL) != "https://a.example" || got.VerticalAdverts[0].Order != 2 {
		t.Fatalf("saved position not kept: %+v", got.VerticalAdverts[0])
	}

	replacement := model.AdvertSet{EmailType: "be", VerticalAdverts: []model.Item{
		model.NewItem(1, model.FieldURL, "https://c.example"),
	}}
	if err := store.Save(ctx, replacement); err != nil {
		t.Fatalf("Save replacement: %v", err)
	}
	got, err = store.Load(ctx, "be")
	if err != nil {
		t.Fatalf("Load replacement: %v", err)
	}
	if len(got.VerticalAdverts) != 1 || len(got.HorizontalAdverts) != 0 {
		t.Fatalf("save did not replace: %+v", got)
	}

	jep, err := store.Load(ctx, "jep")
	if err != nil {
		t.Fatalf("Load jep: %v", err)
	}
	if len(jep.VerticalAdverts) != 1 {
		t.Fatalf("other email type touched: %+v", jep)
	}
}

func TestSQLiteAdverts(t *testing.T) {
	store, err := OpenAdverts(context.Background(), filepath.Join(t.TempDir(), "nested", "adverts.db"))
	if err != nil {
		t.Fatalf("OpenAdverts: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	if _, ok := store.(*AdvertStore); !ok {
		t.Fatalf("expected the SQLite store, got %T", store)
	}
	exerciseAdverts(t, store)
}

func TestPostgresAdverts(t *testing.T) {
	dsn := os.Getenv("NEWSDESK_TEST_POSTGRES_URL")
	if dsn == "" {
		t.Skip("NEWSDESK_TEST_POSTGRES_URL not set")
	}
	ctx := context.Background()
	store, err := OpenAdverts(ctx, dsn)
	if err != nil {
		t.Fatalf("OpenAdverts: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	pg, ok := store.(*PostgresAdverts)
	if !ok {
		t.Fatalf("expected the Postgres store, got %T", store)
	}
	if _, err := pg.pool.Exec(ctx, `DELETE FROM adverts WHERE email_type IN ('be', 'jep')`); err != nil {
		t.Fatalf("reset adverts: %v", err)
	}
	exerciseAdverts(t, store)
}
