// Package view maps document snapshots to render-ready view models.
//
// Every function here is pure: the same snapshot always yields the same model, nothing is
// cached between calls, and a re-render replaces the previous output wholesale.
package view

import (
	"strconv"

	"github.com/Its-donkey/newsdesk/internal/ui/model"
)

// Column describes one table heading.
type Column struct {
	Key   string
	Label string
}

// Cell is a single rendered value. Href turns the cell into a link.
type Cell struct {
	Text  string
	Title string
	Href  string
}

// Row is one item as displayed. Index is the position the store expects for edits.
type Row struct {
	Index int
	Order int
	Cells []Cell
}

// Table is the view model for one editable collection.
type Table struct {
	ID         string
	Collection string
	Title      string
	Columns    []Column
	Rows       []Row
	EmptyText  string
	Orderable  bool
}

// Empty reports whether the table has no rows.
func (t Table) Empty() bool {
	return len(t.Rows) == 0
}

// Visibility lists which cards the console shows for an email type.
type Visibility struct {
	Weather              bool
	FamilyNotices        bool
	DeathsRange          bool
	PublicationCover     bool
	TopImage             bool
	VerticalAdverts      bool
	HorizontalAdverts    bool
	VerticalAdvertsTitle string
}

// Sections derives card visibility from configuration alone; collection contents never
// hide or reveal a card.
func Sections(cfg model.EmailTypeConfig) Visibility {
	v := Visibility{
		Weather:              cfg.Supports(model.FeatureWeatherEdit),
		FamilyNotices:        cfg.Supports(model.FeatureFamilyNotices),
		DeathsRange:          cfg.Supports(model.FeatureFamilyNotices),
		PublicationCover:     cfg.Supports(model.FeaturePublicationCover),
		TopImage:             !cfg.Supports(model.FeaturePublicationCover),
		VerticalAdverts:      true,
		HorizontalAdverts:    cfg.AdvertType == model.AdvertsVerticalHorizontal,
		VerticalAdvertsTitle: "Vertical Adverts",
	}
	if cfg.AdvertType == model.AdvertsSingle {
		v.VerticalAdvertsTitle = "Adverts"
	}
	return v
}

// TableID returns the DOM id used for a collection's table.
func TableID(collection string) string {
	switch collection {
	case model.NewsStories:
		return "newsTable"
	case model.BusinessStories:
		return "businessTable"
	case model.SportsStories:
		return "sportsTable"
	case model.CommunityStories:
		return "communityTable"
	case model.PodcastStories:
		return "podcastTable"
	case model.FamilyNotices:
		return "familyNotices"
	case model.VerticalAdverts:
		return "verticalAdvertsTable"
	case model.HorizontalAdverts:
		return "horizontalAdvertsTable"
	}
	return collection
}

const advertURLPreview = 40

// Render builds the table for one collection.
func Render(collection string, items []model.Item, cfg model.EmailTypeConfig) Table {
	t := Table{
		ID:         TableID(collection),
		Collection: collection,
		Title:      model.CollectionLabels[collection],
		Orderable:  true,
	}
	switch {
	case model.IsStoryCollection(collection):
		t.Columns = []Column{{"order", "Order"}, {model.FieldHeadline, "Headline"}, {model.FieldAuthor, "Author"}}
		t.EmptyText = "No stories"
	case collection == model.FamilyNotices:
		t.Columns = []Column{{model.FieldName, "Name"}, {model.FieldFuneralDirector, "Funeral Director"}, {model.FieldAdditionalText, "Notes"}, {model.FieldURL, "Notice"}}
		t.EmptyText = "No family notices found"
		t.Orderable = false
	case model.IsAdvertCollection(collection):
		t.Columns = []Column{{"order", "Order"}, {model.FieldURL, "URL"}, {model.FieldImageURL, "Image"}}
		t.EmptyText = "No adverts loaded"
		if collection == model.VerticalAdverts {
			t.Title = Sections(cfg).VerticalAdvertsTitle
		}
	}
	t.Rows = make([]Row, 0, len(items))
	for i, it := range items {
		t.Rows = append(t.Rows, renderRow(collection, i, it))
	}
	return t
}

func renderRow(collection string, index int, it model.Item) Row {
	order := it.Order
	if order == 0 && model.IsAdvertCollection(collection) {
		order = index + 1
	}
	row := Row{Index: index, Order: order}
	switch {
	case model.IsStoryCollection(collection):
		headline := it.Get(model.FieldHeadline)
		row.Cells = []Cell{
			{Text: strconv.Itoa(order)},
			{Text: headline, Title: headline},
			{Text: it.Get(model.FieldAuthor)},
		}
	case collection == model.FamilyNotices:
		row.Cells = []Cell{
			{Text: it.Get(model.FieldName)},
			{Text: it.Get(model.FieldFuneralDirector)},
			{Text: it.Get(model.FieldAdditionalText)},
			linkCell(it.Get(model.FieldURL), "View Notice", "No URL"),
		}
	case model.IsAdvertCollection(collection):
		url := it.Get(model.FieldURL)
		urlCell := Cell{Text: "No URL"}
		if url != "" {
			urlCell = Cell{Text: truncate(url, advertURLPreview), Title: url, Href: url}
		}
		row.Cells = []Cell{
			{Text: strconv.Itoa(order)},
			urlCell,
			linkCell(it.Get(model.FieldImageURL), "View Image", "No Image"),
		}
	}
	return row
}

func linkCell(href, label, missing string) Cell {
	if href == "" {
		return Cell{Text: missing}
	}
	return Cell{Text: label, Title: href, Href: href}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

// WeatherLine is a labelled weather value.
type WeatherLine struct {
	Label string
	Value string
}

// WeatherPanel is the view model for the weather card.
type WeatherPanel struct {
	Lines     []WeatherLine
	EmptyText string
}

// RenderWeather lists the populated weather fields.
func RenderWeather(w model.Weather) WeatherPanel {
	p := WeatherPanel{EmptyText: "No weather data available"}
	if w.TodaysWeather != "" {
		p.Lines = append(p.Lines, WeatherLine{Label: "Today's weather", Value: w.TodaysWeather})
	}
	if w.Tides != "" {
		p.Lines = append(p.Lines, WeatherLine{Label: "Tides", Value: w.Tides})
	}
	if w.Date != "" {
		p.Lines = append(p.Lines, WeatherLine{Label: "Date", Value: w.Date})
	}
	return p
}

// Page is the complete console view for one document.
type Page struct {
	EmailType   string
	Visibility  Visibility
	Stories     []Table
	Notices     *Table
	Adverts     []Table
	Weather     *WeatherPanel
	JEPCover    string
	Publication string
	CoverImage  string
}

// RenderPage composes every visible card for doc under cfg.
func RenderPage(doc model.Document, cfg model.EmailTypeConfig) Page {
	vis := Sections(cfg)
	p := Page{
		EmailType:   doc.EmailType,
		Visibility:  vis,
		CoverImage:  doc.ConnectCoverImage,
		JEPCover:    doc.JEPCover,
		Publication: doc.Publication,
	}
	for _, name := range model.StoryCollections {
		items, _ := doc.Collection(name)
		p.Stories = append(p.Stories, Render(name, *items, cfg))
	}
	if vis.FamilyNotices {
		t := Render(model.FamilyNotices, doc.FamilyNotices, cfg)
		p.Notices = &t
	}
	if vis.Weather {
		w := RenderWeather(doc.Weather)
		p.Weather = &w
	}
	if vis.VerticalAdverts {
		p.Adverts = append(p.Adverts, Render(model.VerticalAdverts, doc.VerticalAdverts, cfg))
	}
	if vis.HorizontalAdverts {
		p.Adverts = append(p.Adverts, Render(model.HorizontalAdverts, doc.HorizontalAdverts, cfg))
	}
	return p
}
