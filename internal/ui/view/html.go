package view

import (
	"html"
	"strconv"
	"strings"
)

// HTML renders a table model as the markup injected into the console. Buttons and
// order inputs carry data attributes that the DOM binder hooks up after each render.
func HTML(t Table) string {
	var builder strings.Builder
	if t.Empty() {
		builder.WriteString(`<p class="text-muted">` + html.EscapeString(t.EmptyText) + `</p>`)
		return builder.String()
	}
	collection := html.EscapeString(t.Collection)
	builder.WriteString(`<table class="table table-sm" id="` + html.EscapeString(t.ID) + `"><thead><tr>`)
	for _, col := range t.Columns {
		builder.WriteString(`<th>` + html.EscapeString(col.Label) + `</th>`)
	}
	builder.WriteString(`<th>Actions</th></tr></thead><tbody>`)
	for _, row := range t.Rows {
		index := strconv.Itoa(row.Index)
		builder.WriteString(`<tr data-row-index="` + index + `">`)
		for i, cell := range row.Cells {
			if t.Orderable && i < len(t.Columns) && t.Columns[i].Key == "order" {
				builder.WriteString(`<td><input type="number" class="form-control form-control-sm order-input" value="` + strconv.Itoa(row.Order) + `" data-order-input="` + collection + `" data-index="` + index + `" /></td>`)
				continue
			}
			builder.WriteString(`<td>` + cellHTML(cell) + `</td>`)
		}
		builder.WriteString(`<td><button type="button" class="btn btn-sm btn-outline-primary" data-edit-item="` + collection + `" data-index="` + index + `">Edit</button> `)
		builder.WriteString(`<button type="button" class="btn btn-sm btn-outline-danger" data-remove-item="` + collection + `" data-index="` + index + `">Remove</button></td>`)
		builder.WriteString(`</tr>`)
	}
	builder.WriteString(`</tbody></table>`)
	return builder.String()
}

func cellHTML(c Cell) string {
	text := html.EscapeString(c.Text)
	title := ""
	if c.Title != "" {
		title = ` title="` + html.EscapeString(c.Title) + `"`
	}
	if c.Href != "" {
		return `<a href="` + html.EscapeString(c.Href) + `" target="_blank" rel="noopener"` + title + `>` + text + `</a>`
	}
	if title != "" {
		return `<div class="story-headline"` + title + `>` + text + `</div>`
	}
	return text
}

// WeatherHTML renders the weather card body.
func WeatherHTML(p WeatherPanel) string {
	if len(p.Lines) == 0 {
		return `<p class="text-muted">` + html.EscapeString(p.EmptyText) + `</p>`
	}
	var builder strings.Builder
	builder.WriteString(`<div class="weather-info">`)
	for _, line := range p.Lines {
		builder.WriteString(`<p><strong>` + html.EscapeString(line.Label) + `:</strong> ` + html.EscapeString(line.Value) + `</p>`)
	}
	builder.WriteString(`</div>`)
	return builder.String()
}
