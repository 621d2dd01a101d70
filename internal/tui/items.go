package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"

	"github.com/Its-donkey/newsdesk/internal/ui/model"
	"github.com/Its-donkey/newsdesk/internal/ui/view"
)

type collectionItem struct {
	name  string
	title string
	count int
}

func (i collectionItem) FilterValue() string { return i.title }
func (i collectionItem) Title() string       { return i.title }
func (i collectionItem) Description() string {
	if i.count == 1 {
		return "1 item"
	}
	return fmt.Sprintf("%d items", i.count)
}

type rowItem struct {
	row   view.Row
	table view.Table
}

func (i rowItem) FilterValue() string { return i.Title() }

func (i rowItem) Title() string {
	var parts []string
	for n, c := range i.row.Cells {
		if i.table.Orderable && n == 0 {
			continue
		}
		if text := strings.TrimSpace(c.Text); text != "" {
			parts = append(parts, text)
		}
	}
	title := strings.Join(parts, " | ")
	if i.table.Orderable {
		return fmt.Sprintf("%2d. %s", i.row.Order, title)
	}
	return title
}

func (i rowItem) Description() string {
	for _, c := range i.row.Cells {
		if c.Href != "" {
			return c.Href
		}
	}
	return ""
}

// collectionItems lists the collections shown for page, in console order.
func collectionItems(page view.Page) []list.Item {
	var out []list.Item
	for _, t := range page.Stories {
		out = append(out, collectionItem{name: t.Collection, title: t.Title, count: len(t.Rows)})
	}
	if page.Notices != nil {
		out = append(out, collectionItem{name: model.FamilyNotices, title: page.Notices.Title, count: len(page.Notices.Rows)})
	}
	for _, t := range page.Adverts {
		out = append(out, collectionItem{name: t.Collection, title: t.Title, count: len(t.Rows)})
	}
	return out
}

func rowItems(t view.Table) []list.Item {
	out := make([]list.Item, 0, len(t.Rows))
	for _, r := range t.Rows {
		out = append(out, rowItem{row: r, table: t})
	}
	return out
}

// tableFor returns the table of collection on page.
func tableFor(page view.Page, collection string) (view.Table, bool) {
	if page.Notices != nil && collection == model.FamilyNotices {
		return *page.Notices, true
	}
	for _, group := range [][]view.Table{page.Stories, page.Adverts} {
		for _, t := range group {
			if t.Collection == collection {
				return t, true
			}
		}
	}
	return view.Table{}, false
}

// editField is the field the edit prompt rewrites for collection.
func editField(collection string) string {
	switch {
	case collection == model.FamilyNotices:
		return model.FieldName
	case model.IsAdvertCollection(collection):
		return model.FieldURL
	}
	return model.FieldHeadline
}
