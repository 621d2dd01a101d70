package model

import "time"

// PublicationDateLayout formats the date stamped on publication-cover emails.
const PublicationDateLayout = "Monday, January 2, 2006"

// FallbackEmailConfigs is the minimal registry used when /api/email-configs is
// unreachable, so the console stays usable.
func FallbackEmailConfigs() []EmailTypeConfig {
	return []EmailTypeConfig{
		{ID: "be", Name: "Bailiwick Express (Jersey)", AdvertType: AdvertsVerticalHorizontal, UIFeatures: map[string]bool{}},
		{ID: "ge", Name: "Bailiwick Express (Guernsey)", AdvertType: AdvertsVerticalHorizontal, UIFeatures: map[string]bool{}},
		{ID: "jep", Name: "Jersey Evening Post", AdvertType: AdvertsSingle, UIFeatures: map[string]bool{FeaturePublicationCover: true}},
	}
}

// Normalize replaces nil collections with empty ones so payloads carry [] rather than null.
func (d *Document) Normalize() {
	for _, name := range AllCollections {
		c, _ := d.Collection(name)
		if *c == nil {
			*c = []Item{}
		}
	}
}

// BuildGenerateRequest merges the document with the ephemeral form fields into the
// payload posted to /api/generate-email. For the single advert layout the adverts
// array is derived from vertical_adverts; the store never holds a second copy.
func BuildGenerateRequest(doc Document, cfg EmailTypeConfig, eph EphemeralFields, now time.Time) GenerateRequest {
	doc = doc.Clone()
	doc.Normalize()
	if cfg.ID != "" {
		doc.EmailType = cfg.ID
	}
	req := GenerateRequest{
		Document: doc,
		TopImage: eph.TopImage,
		Adverts:  []Item{},
	}
	if cfg.AdvertType == AdvertsSingle {
		req.Adverts = CloneItems(doc.VerticalAdverts)
	}
	if cfg.Supports(FeaturePublicationCover) {
		req.JEPCover = eph.JEPCover
		req.Publication = eph.Publication
		req.Date = now.Format(PublicationDateLayout)
	}
	return req
}
