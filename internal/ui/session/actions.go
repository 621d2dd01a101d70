package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Its-donkey/newsdesk/internal/ui/model"
)

// Count limits for /api/fetch-data.
const (
	MinFetchCount = 1
	MaxFetchCount = 20
)

// DeathsDateLayout is the form layout of the family notice date range.
const DeathsDateLayout = "2006-01-02"

// Fetch validates the request, asks the backend for a fresh document and replaces the
// working document with it. On failure the document is left untouched.
func (s *Session) Fetch(ctx context.Context, req model.FetchRequest) error {
	cfg := s.Config()
	req.EmailType = cfg.ID
	if err := validateFetch(req, cfg); err != nil {
		return err
	}

	doc, err := s.backend.FetchData(ctx, req)
	if err != nil {
		return s.fail("fetch data", err)
	}
	doc.EmailType = cfg.ID
	s.store.Replace(doc)
	if cfg.Supports(model.FeaturePublicationCover) && doc.JEPCover != "" {
		s.mu.Lock()
		s.ephemeral.JEPCover = doc.JEPCover
		s.ephemeral.Publication = doc.Publication
		s.mu.Unlock()
	}
	s.mu.Lock()
	s.finalHTML = ""
	s.mu.Unlock()
	s.render()
	s.logger.Info("session", "fetched document", map[string]any{
		"email_type": cfg.ID,
		"news":       len(doc.NewsStories),
		"notices":    len(doc.FamilyNotices),
	})
	s.notifier.Notify("Data fetched successfully!", model.ToneSuccess)
	s.RefreshPreview(ctx)
	return nil
}

func validateFetch(req model.FetchRequest, cfg model.EmailTypeConfig) error {
	counts := []struct {
		label string
		n     int
	}{
		{"news", req.NumNews},
		{"business", req.NumBusiness},
		{"sports", req.NumSports},
		{"community", req.NumCommunity},
		{"podcast", req.NumPodcast},
	}
	for _, c := range counts {
		if c.n < MinFetchCount || c.n > MaxFetchCount {
			return invalid("Number of %s stories must be between %d and %d", c.label, MinFetchCount, MaxFetchCount)
		}
	}
	if !cfg.Supports(model.FeatureFamilyNotices) {
		return nil
	}
	if strings.TrimSpace(req.DeathsStart) == "" || strings.TrimSpace(req.DeathsEnd) == "" {
		return invalid("Please choose a start and end date for family notices")
	}
	start, err := time.Parse(DeathsDateLayout, req.DeathsStart)
	if err != nil {
		return invalid("Invalid family notices start date %q", req.DeathsStart)
	}
	end, err := time.Parse(DeathsDateLayout, req.DeathsEnd)
	if err != nil {
		return invalid("Invalid family notices end date %q", req.DeathsEnd)
	}
	if end.Before(start) {
		return invalid("Family notices end date must not be before the start date")
	}
	return nil
}

// AddFromURLs scrapes one URL per line of raw and appends the stories to collection.
// Scraped stories keep the order the backend assigned.
func (s *Session) AddFromURLs(ctx context.Context, raw, collection string) (int, error) {
	if !model.IsStoryCollection(collection) {
		return 0, invalid("Unknown story type %q", collection)
	}
	var urls []string
	for _, line := range strings.Split(raw, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			urls = append(urls, line)
		}
	}
	if len(urls) == 0 {
		return 0, invalid("Please enter at least one URL")
	}

	items, err := s.backend.ScrapeURLs(ctx, urls)
	if err != nil {
		return 0, s.fail("scrape urls", err)
	}
	if len(items) == 0 {
		s.notifier.Notify("No stories could be scraped from those URLs", model.ToneWarning)
		return 0, nil
	}
	for _, it := range items {
		if err := s.store.Insert(collection, it); err != nil {
			return 0, err
		}
	}
	s.render()
	s.notifier.Notify(fmt.Sprintf("Added %d stories successfully!", len(items)), model.ToneSuccess)
	s.RefreshPreview(ctx)
	return len(items), nil
}

// EditItem merges patch into the item at index. A changed order re-sorts the collection.
func (s *Session) EditItem(ctx context.Context, collection string, index int, patch model.ItemPatch) error {
	if err := s.store.Update(collection, index, patch); err != nil {
		return err
	}
	s.render()
	s.RefreshPreview(ctx)
	return nil
}

// SetOrder changes only the order of the item at index.
func (s *Session) SetOrder(ctx context.Context, collection string, index, order int) error {
	return s.EditItem(ctx, collection, index, model.OrderPatch(order))
}

// RemoveItem deletes the item at index once confirm approves. It reports whether the
// item was removed. A nil confirm removes without asking.
func (s *Session) RemoveItem(ctx context.Context, collection string, index int, confirm func(prompt string) bool) (bool, error) {
	if confirm != nil && !confirm(RemovePrompt(collection)) {
		return false, nil
	}
	if err := s.store.Remove(collection, index); err != nil {
		return false, err
	}
	s.render()
	s.RefreshPreview(ctx)
	return true, nil
}

// RemovePrompt is the confirmation question asked before removing from collection.
func RemovePrompt(collection string) string {
	switch {
	case collection == model.FamilyNotices:
		return "Are you sure you want to remove this family notice?"
	case model.IsAdvertCollection(collection):
		return "Are you sure you want to remove this advert?"
	}
	return "Are you sure you want to remove this story?"
}

// AddNotice appends a blank family notice and returns its index for editing.
func (s *Session) AddNotice() (int, error) {
	if !s.Config().Supports(model.FeatureFamilyNotices) {
		return 0, invalid("Family notices are not used by this email type")
	}
	item := model.NewItem(0,
		model.FieldName, "New Notice",
		model.FieldFuneralDirector, "",
		model.FieldAdditionalText, "",
		model.FieldURL, "",
	)
	if err := s.store.Insert(model.FamilyNotices, item); err != nil {
		return 0, err
	}
	s.render()
	return s.store.Len(model.FamilyNotices) - 1, nil
}

// AddAdvert appends a blank advert to collection and returns its index for editing.
// The single layout only has vertical adverts.
func (s *Session) AddAdvert(collection string) (int, error) {
	if !model.IsAdvertCollection(collection) {
		return 0, invalid("Unknown advert type %q", collection)
	}
	if collection == model.HorizontalAdverts && s.Config().AdvertType == model.AdvertsSingle {
		return 0, invalid("This email type has a single advert list")
	}
	item := model.NewItem(0, model.FieldURL, "", model.FieldImageURL, "")
	if err := s.store.Insert(collection, item); err != nil {
		return 0, err
	}
	s.render()
	return s.store.Len(collection) - 1, nil
}

// EditWeather replaces the weather block.
func (s *Session) EditWeather(ctx context.Context, w model.Weather) error {
	if !s.Config().Supports(model.FeatureWeatherEdit) {
		return invalid("Weather is not editable for this email type")
	}
	s.store.SetWeather(w)
	s.render()
	s.RefreshPreview(ctx)
	return nil
}

// SetEphemeral stores the form-only fields and schedules a debounced preview.
func (s *Session) SetEphemeral(eph model.EphemeralFields) {
	s.mu.Lock()
	s.ephemeral = eph
	s.mu.Unlock()
	s.debounce.Trigger()
}

// Ephemeral returns the form-only fields.
func (s *Session) Ephemeral() model.EphemeralFields {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ephemeral
}

// SaveAdverts persists the advert collections of the selected email type.
func (s *Session) SaveAdverts(ctx context.Context) error {
	cfg := s.Config()
	set := model.AdvertSet{EmailType: cfg.ID}
	set.VerticalAdverts, _ = s.store.Snapshot(model.VerticalAdverts)
	if cfg.AdvertType == model.AdvertsVerticalHorizontal {
		set.HorizontalAdverts, _ = s.store.Snapshot(model.HorizontalAdverts)
	}
	if err := s.backend.SaveAdverts(ctx, set); err != nil {
		return s.fail("save adverts", err)
	}
	s.notifier.Notify("Adverts saved successfully!", model.ToneSuccess)
	return nil
}

// LoadAdverts replaces the advert collections with the saved ones.
func (s *Session) LoadAdverts(ctx context.Context) error {
	cfg := s.Config()
	set, err := s.backend.LoadAdverts(ctx, cfg.ID)
	if err != nil {
		return s.fail("load adverts", err)
	}
	if err := s.store.SetCollection(model.VerticalAdverts, nonNil(set.VerticalAdverts)); err != nil {
		return err
	}
	horizontal := nonNil(set.HorizontalAdverts)
	if cfg.AdvertType == model.AdvertsSingle {
		horizontal = []model.Item{}
	}
	if err := s.store.SetCollection(model.HorizontalAdverts, horizontal); err != nil {
		return err
	}
	s.render()
	s.notifier.Notify("Adverts loaded successfully!", model.ToneSuccess)
	s.RefreshPreview(ctx)
	return nil
}

func nonNil(items []model.Item) []model.Item {
	if items == nil {
		return []model.Item{}
	}
	return items
}
