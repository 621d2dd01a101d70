package model

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Item is one row within an editable collection: a numeric order plus the
// type-specific string fields (headline, author, url, ...).
type Item struct {
	Order  int
	Fields map[string]string
}

// Field names shared by stories, notices and adverts.
const (
	FieldHeadline        = "headline"
	FieldText            = "text"
	FieldAuthor          = "author"
	FieldDate            = "date"
	FieldURL             = "url"
	FieldImageURL        = "image_url"
	FieldName            = "name"
	FieldFuneralDirector = "funeral_director"
	FieldAdditionalText  = "additional_text"
)

// NewItem builds an item from alternating key/value pairs.
func NewItem(order int, kv ...string) Item {
	it := Item{Order: order, Fields: make(map[string]string, len(kv)/2)}
	for i := 0; i+1 < len(kv); i += 2 {
		it.Fields[kv[i]] = kv[i+1]
	}
	return it
}

// Get returns the named field, or "" when unset.
func (it Item) Get(field string) string {
	if it.Fields == nil {
		return ""
	}
	return it.Fields[field]
}

// Clone returns a copy that shares no map with the receiver.
func (it Item) Clone() Item {
	out := Item{Order: it.Order}
	if it.Fields != nil {
		out.Fields = make(map[string]string, len(it.Fields))
		for k, v := range it.Fields {
			out.Fields[k] = v
		}
	}
	return out
}

// CloneItems deep-copies a slice of items.
func CloneItems(items []Item) []Item {
	if items == nil {
		return nil
	}
	out := make([]Item, len(items))
	for i, it := range items {
		out[i] = it.Clone()
	}
	return out
}

// ItemPatch is a partial item: nil Order leaves the order untouched and only the
// listed fields are overwritten.
type ItemPatch struct {
	Order  *int
	Fields map[string]string
}

// OrderPatch is shorthand for a patch that only changes the order.
func OrderPatch(order int) ItemPatch {
	return ItemPatch{Order: &order}
}

// Apply merges the patch into a copy of it and reports whether the order changed.
func (p ItemPatch) Apply(it Item) (Item, bool) {
	out := it.Clone()
	if out.Fields == nil && len(p.Fields) > 0 {
		out.Fields = make(map[string]string, len(p.Fields))
	}
	for k, v := range p.Fields {
		out.Fields[k] = v
	}
	changed := false
	if p.Order != nil && *p.Order != it.Order {
		out.Order = *p.Order
		changed = true
	}
	return out, changed
}

// MarshalJSON flattens the item into a single object with a numeric "order".
func (it Item) MarshalJSON() ([]byte, error) {
	obj := make(map[string]any, len(it.Fields)+1)
	for k, v := range it.Fields {
		obj[k] = v
	}
	obj["order"] = it.Order
	return json.Marshal(obj)
}

// UnmarshalJSON accepts a flat object; non-string scalars are kept in their
// canonical text form and nested values are dropped.
func (it *Item) UnmarshalJSON(data []byte) error {
	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*it = Item{Fields: make(map[string]string, len(obj))}
	for k, v := range obj {
		if k == "order" {
			order, err := parseOrder(v)
			if err != nil {
				return err
			}
			it.Order = order
			continue
		}
		switch val := v.(type) {
		case nil:
			it.Fields[k] = ""
		case string:
			it.Fields[k] = val
		case bool:
			it.Fields[k] = strconv.FormatBool(val)
		case float64:
			it.Fields[k] = strconv.FormatFloat(val, 'f', -1, 64)
		}
	}
	return nil
}

func parseOrder(v any) (int, error) {
	switch val := v.(type) {
	case nil:
		return 0, nil
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return 0, fmt.Errorf("invalid order %v", val)
		}
		return int(val), nil
	case string:
		val = strings.TrimSpace(val)
		if val == "" {
			return 0, nil
		}
		n, err := strconv.Atoi(val)
		if err != nil {
			return 0, fmt.Errorf("invalid order %q: %w", val, err)
		}
		return n, nil
	}
	return 0, fmt.Errorf("invalid order type %T", v)
}

// FieldNames returns the item's field names in sorted order.
func (it Item) FieldNames() []string {
	names := make([]string, 0, len(it.Fields))
	for k := range it.Fields {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
