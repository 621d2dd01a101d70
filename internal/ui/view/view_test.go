package view

import (
	"reflect"
	"strings"
	"testing"

	"github.com/Its-donkey/newsdesk/internal/ui/model"
	"github.com/Its-donkey/newsdesk/internal/ui/state"
)

var (
	beConfig = model.EmailTypeConfig{
		ID:         "be",
		AdvertType: model.AdvertsVerticalHorizontal,
		UIFeatures: map[string]bool{model.FeatureWeatherEdit: true, model.FeatureFamilyNotices: true},
	}
	jepConfig = model.EmailTypeConfig{
		ID:         "jep",
		AdvertType: model.AdvertsSingle,
		UIFeatures: map[string]bool{model.FeaturePublicationCover: true, model.FeatureCombineAllStories: true},
	}
)

func TestSections(t *testing.T) {
	cases := []struct {
		name string
		cfg  model.EmailTypeConfig
		want Visibility
	}{
		{
			name: "be",
			cfg:  beConfig,
			want: Visibility{Weather: true, FamilyNotices: true, DeathsRange: true, TopImage: true, VerticalAdverts: true, HorizontalAdverts: true, VerticalAdvertsTitle: "Vertical Adverts"},
		},
		{
			name: "jep",
			cfg:  jepConfig,
			want: Visibility{PublicationCover: true, VerticalAdverts: true, VerticalAdvertsTitle: "Adverts"},
		},
		{
			name: "fallback without features",
			cfg:  model.EmailTypeConfig{ID: "ge", AdvertType: model.AdvertsVerticalHorizontal},
			want: Visibility{TopImage: true, VerticalAdverts: true, HorizontalAdverts: true, VerticalAdvertsTitle: "Vertical Adverts"},
		},
	}
	for _, tc := range cases {
		if got := Sections(tc.cfg); got != tc.want {
			t.Fatalf("%s: expected %+v got %+v", tc.name, tc.want, got)
		}
	}
}

func TestRenderIsPureAndIdempotent(t *testing.T) {
	items := []model.Item{
		model.NewItem(2, model.FieldHeadline, "Harbour", model.FieldAuthor, "Desk"),
		model.NewItem(1, model.FieldHeadline, "Budget", model.FieldAuthor, "Politics"),
	}
	first := Render(model.NewsStories, items, beConfig)
	second := Render(model.NewsStories, items, beConfig)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("render is not deterministic")
	}
	if HTML(first) != HTML(second) {
		t.Fatalf("html is not deterministic")
	}
	if len(first.Rows) != 2 || first.Rows[1].Index != 1 || first.Rows[1].Cells[1].Text != "Budget" {
		t.Fatalf("unexpected rows %+v", first.Rows)
	}
}

func TestReplaceThenRenderHasNoResidue(t *testing.T) {
	s := state.NewStore("be")
	_ = s.Insert(model.NewsStories, model.NewItem(1, model.FieldHeadline, "Old lead"))
	before := HTML(Render(model.NewsStories, mustSnapshot(t, s, model.NewsStories), beConfig))
	if !strings.Contains(before, "Old lead") {
		t.Fatalf("expected old content before replace")
	}

	doc := model.NewDocument("be")
	doc.NewsStories = []model.Item{model.NewItem(1, model.FieldHeadline, "New lead")}
	s.Replace(doc)

	after := Render(model.NewsStories, mustSnapshot(t, s, model.NewsStories), beConfig)
	markup := HTML(after)
	if strings.Contains(markup, "Old lead") {
		t.Fatalf("residue from prior document: %s", markup)
	}
	if len(after.Rows) != 1 || after.Rows[0].Cells[1].Text != "New lead" {
		t.Fatalf("expected exactly the new items, got %+v", after.Rows)
	}
}

func mustSnapshot(t *testing.T, s *state.Store, name string) []model.Item {
	t.Helper()
	items, err := s.Snapshot(name)
	if err != nil {
		t.Fatalf("snapshot %s: %v", name, err)
	}
	return items
}

func TestAdvertRows(t *testing.T) {
	long := "https://adverts.example.com/campaigns/spring/launch/landing"
	items := []model.Item{
		model.NewItem(0, model.FieldURL, long, model.FieldImageURL, "https://img.example/1.png"),
		model.NewItem(5),
	}
	table := Render(model.VerticalAdverts, items, jepConfig)
	if table.Title != "Adverts" {
		t.Fatalf("single layout should title the card Adverts, got %q", table.Title)
	}
	if table.Rows[0].Order != 1 {
		t.Fatalf("unset advert order should display index+1, got %d", table.Rows[0].Order)
	}
	if got := table.Rows[0].Cells[1].Text; got != long[:40]+"..." {
		t.Fatalf("unexpected truncated url %q", got)
	}
	if table.Rows[1].Cells[1].Text != "No URL" || table.Rows[1].Cells[2].Text != "No Image" {
		t.Fatalf("missing links should show placeholders: %+v", table.Rows[1].Cells)
	}
}

func TestHTMLEscapesContent(t *testing.T) {
	items := []model.Item{model.NewItem(1, model.FieldHeadline, `<script>alert("x")</script>`)}
	markup := HTML(Render(model.NewsStories, items, beConfig))
	if strings.Contains(markup, "<script>") {
		t.Fatalf("headline was not escaped: %s", markup)
	}
	if !strings.Contains(markup, `data-remove-item="news_stories" data-index="0"`) {
		t.Fatalf("missing remove binding: %s", markup)
	}
}

func TestEmptyStates(t *testing.T) {
	if got := HTML(Render(model.FamilyNotices, nil, beConfig)); !strings.Contains(got, "No family notices found") {
		t.Fatalf("unexpected empty notices markup %q", got)
	}
	if got := WeatherHTML(RenderWeather(model.Weather{})); !strings.Contains(got, "No weather data available") {
		t.Fatalf("unexpected empty weather markup %q", got)
	}
	panel := RenderWeather(model.Weather{Tides: "High 06:10"})
	if len(panel.Lines) != 1 || panel.Lines[0].Label != "Tides" {
		t.Fatalf("unexpected weather lines %+v", panel.Lines)
	}
}

func TestRenderPageFollowsConfiguration(t *testing.T) {
	doc := model.NewDocument("jep")
	doc.FamilyNotices = []model.Item{model.NewItem(1, model.FieldName, "Hidden")}
	page := RenderPage(doc, jepConfig)
	if page.Notices != nil || page.Weather != nil {
		t.Fatalf("jep should hide notices and weather even with content")
	}
	if len(page.Adverts) != 1 || page.Adverts[0].Collection != model.VerticalAdverts {
		t.Fatalf("single layout should show one advert table, got %d", len(page.Adverts))
	}
	if len(page.Stories) != len(model.StoryCollections) {
		t.Fatalf("expected every story table")
	}

	be := RenderPage(model.NewDocument("be"), beConfig)
	if be.Notices == nil || be.Weather == nil || len(be.Adverts) != 2 {
		t.Fatalf("be page missing cards: %+v", be.Visibility)
	}
}
