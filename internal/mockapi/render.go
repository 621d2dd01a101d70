package mockapi

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"sort"

	"github.com/Its-donkey/newsdesk/internal/ui/model"
)

//go:embed templates/email.html.tmpl
var emailFS embed.FS

var emailTemplate = template.Must(template.ParseFS(emailFS, "templates/email.html.tmpl"))

type emailSection struct {
	Label string
	Items []model.Item
}

type emailData struct {
	Title     string
	EmailType string
	Date      string
	Request   model.GenerateRequest
	Sections  []emailSection
	Notices   []model.Item
	Adverts   []model.Item
}

// renderEmail produces a simple newsletter body from a generate request.
func renderEmail(req model.GenerateRequest, cfg model.EmailTypeConfig) (string, error) {
	data := emailData{
		Title:     cfg.Name,
		EmailType: cfg.ID,
		Date:      req.Date,
		Request:   req,
	}
	if data.Title == "" {
		data.Title = cfg.ID
	}

	combine := cfg.Supports(model.FeatureCombineAllStories)
	var combined []model.Item
	for _, name := range model.StoryCollections {
		items, _ := req.Collection(name)
		if len(*items) == 0 {
			continue
		}
		sorted := sortedItems(*items)
		if combine {
			combined = append(combined, sorted...)
			continue
		}
		data.Sections = append(data.Sections, emailSection{Label: model.CollectionLabels[name], Items: sorted})
	}
	if combine && len(combined) > 0 {
		data.Sections = []emailSection{{Label: "Today's Stories", Items: combined}}
	}

	if cfg.Supports(model.FeatureFamilyNotices) {
		data.Notices = req.FamilyNotices
	}
	if cfg.AdvertType == model.AdvertsSingle {
		data.Adverts = sortedItems(req.Adverts)
	} else {
		data.Adverts = append(sortedItems(req.VerticalAdverts), sortedItems(req.HorizontalAdverts)...)
	}

	var buf bytes.Buffer
	if err := emailTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render email: %w", err)
	}
	return buf.String(), nil
}

func sortedItems(items []model.Item) []model.Item {
	out := model.CloneItems(items)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}
