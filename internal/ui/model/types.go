package model

// Collection names used by the store, the view binder and the API payloads.
const (
	NewsStories       = "news_stories"
	BusinessStories   = "business_stories"
	SportsStories     = "sports_stories"
	CommunityStories  = "community_stories"
	PodcastStories    = "podcast_stories"
	FamilyNotices     = "family_notices"
	VerticalAdverts   = "vertical_adverts"
	HorizontalAdverts = "horizontal_adverts"
)

// StoryCollections lists the story collections in display order.
var StoryCollections = []string{
	NewsStories,
	BusinessStories,
	SportsStories,
	CommunityStories,
	PodcastStories,
}

// AllCollections lists every editable collection held by a Document.
var AllCollections = []string{
	NewsStories,
	BusinessStories,
	SportsStories,
	CommunityStories,
	PodcastStories,
	FamilyNotices,
	VerticalAdverts,
	HorizontalAdverts,
}

// CollectionLabels maps collection names to the headings shown in the console.
var CollectionLabels = map[string]string{
	NewsStories:       "News",
	BusinessStories:   "Business",
	SportsStories:     "Sport",
	CommunityStories:  "Community",
	PodcastStories:    "Podcasts",
	FamilyNotices:     "Family Notices",
	VerticalAdverts:   "Vertical Adverts",
	HorizontalAdverts: "Horizontal Adverts",
}

// IsStoryCollection reports whether name is one of the story collections.
func IsStoryCollection(name string) bool {
	for _, c := range StoryCollections {
		if c == name {
			return true
		}
	}
	return false
}

// IsAdvertCollection reports whether name holds adverts.
func IsAdvertCollection(name string) bool {
	return name == VerticalAdverts || name == HorizontalAdverts
}

// Weather carries the forecast block shown near the top of the email.
type Weather struct {
	TodaysWeather string `json:"todays_weather"`
	Tides         string `json:"tides"`
	Date          string `json:"date"`
}

// Empty reports whether no weather field is set.
func (w Weather) Empty() bool {
	return w.TodaysWeather == "" && w.Tides == "" && w.Date == ""
}

// Document is the full editable state for one composition session.
type Document struct {
	EmailType         string  `json:"email_type"`
	NewsStories       []Item  `json:"news_stories"`
	BusinessStories   []Item  `json:"business_stories"`
	SportsStories     []Item  `json:"sports_stories"`
	CommunityStories  []Item  `json:"community_stories"`
	PodcastStories    []Item  `json:"podcast_stories"`
	FamilyNotices     []Item  `json:"family_notices"`
	VerticalAdverts   []Item  `json:"vertical_adverts"`
	HorizontalAdverts []Item  `json:"horizontal_adverts"`
	Weather           Weather `json:"weather"`
	ConnectCoverImage string  `json:"connect_cover_image"`
	JEPCover          string  `json:"jep_cover"`
	Publication       string  `json:"publication"`
	Date              string  `json:"date"`
}

// NewDocument returns an empty document for the given email type.
func NewDocument(emailType string) Document {
	return Document{EmailType: emailType}
}

// Collection returns a pointer to the named collection slice.
func (d *Document) Collection(name string) (*[]Item, bool) {
	switch name {
	case NewsStories:
		return &d.NewsStories, true
	case BusinessStories:
		return &d.BusinessStories, true
	case SportsStories:
		return &d.SportsStories, true
	case CommunityStories:
		return &d.CommunityStories, true
	case PodcastStories:
		return &d.PodcastStories, true
	case FamilyNotices:
		return &d.FamilyNotices, true
	case VerticalAdverts:
		return &d.VerticalAdverts, true
	case HorizontalAdverts:
		return &d.HorizontalAdverts, true
	}
	return nil, false
}

// Clone returns a deep copy of the document.
func (d Document) Clone() Document {
	out := d
	for _, name := range AllCollections {
		src, _ := d.Collection(name)
		dst, _ := out.Collection(name)
		*dst = CloneItems(*src)
	}
	return out
}

// TopImage describes the hero image block above the stories.
type TopImage struct {
	Title  string `json:"title"`
	URL    string `json:"url"`
	Author string `json:"author"`
	Link   string `json:"link"`
}

// EphemeralFields are console inputs that never live in the Document and are merged in
// only when a preview or final email is generated.
type EphemeralFields struct {
	TopImage    TopImage
	JEPCover    string
	Publication string
}

// AdvertLayout selects which advert collections an email type uses.
type AdvertLayout string

const (
	AdvertsVerticalHorizontal AdvertLayout = "vertical_horizontal"
	AdvertsSingle             AdvertLayout = "single"
)

// UI feature flags published by the backend per email type.
const (
	FeatureWeatherEdit       = "show_weather_edit"
	FeatureFamilyNotices     = "show_family_notices"
	FeaturePublicationCover  = "show_publication_cover"
	FeatureCombineAllStories = "combine_all_stories"
)

// EmailTypeConfig is the per-email-type descriptor fetched once at startup.
type EmailTypeConfig struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	AdvertType AdvertLayout    `json:"advert_type"`
	UIFeatures map[string]bool `json:"ui_features"`
}

// Supports reports whether the feature flag is explicitly enabled.
func (c EmailTypeConfig) Supports(feature string) bool {
	return c.UIFeatures[feature]
}

// EmailConfigsResponse is the envelope served by GET /api/email-configs.
type EmailConfigsResponse struct {
	EmailTypes []EmailTypeConfig `json:"email_types"`
}

// FetchRequest is posted to /api/fetch-data.
type FetchRequest struct {
	EmailType    string `json:"email_type"`
	NumNews      int    `json:"num_news"`
	NumBusiness  int    `json:"num_business"`
	NumSports    int    `json:"num_sports"`
	NumCommunity int    `json:"num_community"`
	NumPodcast   int    `json:"num_podcast"`
	DeathsStart  string `json:"deaths_start"`
	DeathsEnd    string `json:"deaths_end"`
}

// ScrapeRequest is posted to /api/scrape-urls.
type ScrapeRequest struct {
	URLs []string `json:"urls"`
}

// GenerateRequest is the document plus ephemeral fields posted to /api/generate-email.
type GenerateRequest struct {
	Document
	TopImage TopImage `json:"top_image"`
	Adverts  []Item   `json:"adverts"`
}

// GenerateResponse carries the rendered email markup.
type GenerateResponse struct {
	HTML string `json:"html"`
}

// AdvertSet is the payload exchanged with the advert persistence endpoints.
type AdvertSet struct {
	EmailType         string `json:"email_type,omitempty"`
	VerticalAdverts   []Item `json:"vertical_adverts"`
	HorizontalAdverts []Item `json:"horizontal_adverts"`
}

// Status reflects a toaster-style notice shown inside the console.
type Status struct {
	Message string
	Tone    string
}

// Status tones.
const (
	ToneInfo    = "info"
	ToneSuccess = "success"
	ToneWarning = "warning"
	ToneError   = "error"
)
