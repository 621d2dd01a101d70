package mockapi

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Its-donkey/newsdesk/internal/ui/model"
)

//go:embed fixtures/default.yaml
var defaultFixtures []byte

// Fixtures holds the canned email types and documents served by the stub.
type Fixtures struct {
	EmailTypes []fixtureEmailType         `yaml:"email_types"`
	Documents  map[string]fixtureDocument `yaml:"documents"`
}

type fixtureEmailType struct {
	ID         string          `yaml:"id"`
	Name       string          `yaml:"name"`
	AdvertType string          `yaml:"advert_type"`
	UIFeatures map[string]bool `yaml:"ui_features"`
}

type fixtureStory struct {
	Headline string `yaml:"headline"`
	Text     string `yaml:"text"`
	Author   string `yaml:"author"`
	Date     string `yaml:"date"`
	URL      string `yaml:"url"`
	ImageURL string `yaml:"image_url"`
}

type fixtureNotice struct {
	Name            string `yaml:"name"`
	FuneralDirector string `yaml:"funeral_director"`
	AdditionalText  string `yaml:"additional_text"`
	URL             string `yaml:"url"`
	Date            string `yaml:"date"`
}

type fixtureWeather struct {
	TodaysWeather string `yaml:"todays_weather"`
	Tides         string `yaml:"tides"`
	Date          string `yaml:"date"`
}

type fixtureDocument struct {
	NewsStories       []fixtureStory  `yaml:"news_stories"`
	BusinessStories   []fixtureStory  `yaml:"business_stories"`
	SportsStories     []fixtureStory  `yaml:"sports_stories"`
	CommunityStories  []fixtureStory  `yaml:"community_stories"`
	PodcastStories    []fixtureStory  `yaml:"podcast_stories"`
	FamilyNotices     []fixtureNotice `yaml:"family_notices"`
	Weather           fixtureWeather  `yaml:"weather"`
	ConnectCoverImage string          `yaml:"connect_cover_image"`
	JEPCover          string          `yaml:"jep_cover"`
	Publication       string          `yaml:"publication"`
}

// LoadFixtures reads fixtures from path, or the built-in set when path is empty.
func LoadFixtures(path string) (*Fixtures, error) {
	data := defaultFixtures
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read fixtures: %w", err)
		}
		data = raw
	}
	return ParseFixtures(data)
}

// ParseFixtures decodes a YAML fixture document.
func ParseFixtures(data []byte) (*Fixtures, error) {
	var f Fixtures
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode fixtures: %w", err)
	}
	if len(f.EmailTypes) == 0 {
		return nil, fmt.Errorf("fixtures define no email types")
	}
	for _, et := range f.EmailTypes {
		switch model.AdvertLayout(et.AdvertType) {
		case model.AdvertsVerticalHorizontal, model.AdvertsSingle:
		default:
			return nil, fmt.Errorf("email type %q: unknown advert_type %q", et.ID, et.AdvertType)
		}
	}
	return &f, nil
}

// Configs returns the email type registry.
func (f *Fixtures) Configs() []model.EmailTypeConfig {
	out := make([]model.EmailTypeConfig, 0, len(f.EmailTypes))
	for _, et := range f.EmailTypes {
		features := map[string]bool{}
		for k, v := range et.UIFeatures {
			features[k] = v
		}
		out = append(out, model.EmailTypeConfig{
			ID:         et.ID,
			Name:       et.Name,
			AdvertType: model.AdvertLayout(et.AdvertType),
			UIFeatures: features,
		})
	}
	return out
}

// Config looks up one email type.
func (f *Fixtures) Config(id string) (model.EmailTypeConfig, bool) {
	for _, cfg := range f.Configs() {
		if cfg.ID == id {
			return cfg, true
		}
	}
	return model.EmailTypeConfig{}, false
}

// Document builds the response to a fetch request. Each story list is cut to the
// requested count and family notices are kept only inside the requested date range.
func (f *Fixtures) Document(req model.FetchRequest) model.Document {
	src := f.Documents[req.EmailType]
	doc := model.NewDocument(req.EmailType)
	doc.NewsStories = stories(src.NewsStories, req.NumNews)
	doc.BusinessStories = stories(src.BusinessStories, req.NumBusiness)
	doc.SportsStories = stories(src.SportsStories, req.NumSports)
	doc.CommunityStories = stories(src.CommunityStories, req.NumCommunity)
	doc.PodcastStories = stories(src.PodcastStories, req.NumPodcast)
	doc.FamilyNotices = notices(src.FamilyNotices, req.DeathsStart, req.DeathsEnd)
	doc.Weather = model.Weather{
		TodaysWeather: src.Weather.TodaysWeather,
		Tides:         src.Weather.Tides,
		Date:          src.Weather.Date,
	}
	doc.ConnectCoverImage = src.ConnectCoverImage
	doc.JEPCover = src.JEPCover
	doc.Publication = src.Publication
	doc.Normalize()
	return doc
}

func stories(src []fixtureStory, n int) []model.Item {
	if n > len(src) {
		n = len(src)
	}
	out := make([]model.Item, 0, n)
	for i := 0; i < n; i++ {
		s := src[i]
		out = append(out, model.NewItem(i+1,
			model.FieldHeadline, s.Headline,
			model.FieldText, s.Text,
			model.FieldAuthor, s.Author,
			model.FieldDate, s.Date,
			model.FieldURL, s.URL,
			model.FieldImageURL, s.ImageURL,
		))
	}
	return out
}

func notices(src []fixtureNotice, start, end string) []model.Item {
	from, errFrom := time.Parse(dateLayout, start)
	to, errTo := time.Parse(dateLayout, end)
	if errFrom != nil || errTo != nil {
		return []model.Item{}
	}
	out := []model.Item{}
	for _, n := range src {
		when, err := time.Parse(dateLayout, n.Date)
		if err != nil || when.Before(from) || when.After(to) {
			continue
		}
		out = append(out, model.NewItem(0,
			model.FieldName, n.Name,
			model.FieldFuneralDirector, n.FuneralDirector,
			model.FieldAdditionalText, n.AdditionalText,
			model.FieldURL, n.URL,
		))
	}
	return out
}
