package model

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestItemJSONFlattensFields(t *testing.T) {
	it := NewItem(2, FieldHeadline, "Harbour reopens", FieldAuthor, "Staff")
	data, err := json.Marshal(it)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if obj["order"] != float64(2) {
		t.Fatalf("expected numeric order 2 got %v", obj["order"])
	}
	if obj["headline"] != "Harbour reopens" {
		t.Fatalf("expected headline got %v", obj["headline"])
	}
}

func TestItemUnmarshalScalars(t *testing.T) {
	var it Item
	raw := `{"order":"4","headline":"Budget","views":12,"featured":true,"image_url":null,"tags":["x"]}`
	if err := json.Unmarshal([]byte(raw), &it); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if it.Order != 4 {
		t.Fatalf("expected order 4 got %d", it.Order)
	}
	cases := map[string]string{"headline": "Budget", "views": "12", "featured": "true", "image_url": ""}
	for k, want := range cases {
		if got := it.Get(k); got != want {
			t.Fatalf("%s: expected %q got %q", k, want, got)
		}
	}
	if _, ok := it.Fields["tags"]; ok {
		t.Fatalf("nested values should be dropped")
	}
}

func TestItemUnmarshalRejectsBadOrder(t *testing.T) {
	var it Item
	if err := json.Unmarshal([]byte(`{"order":"first"}`), &it); err == nil {
		t.Fatalf("expected error for non-numeric order")
	}
}

func TestItemPatchApply(t *testing.T) {
	base := NewItem(1, FieldHeadline, "Old", FieldAuthor, "A")
	out, changed := ItemPatch{Fields: map[string]string{FieldHeadline: "New"}}.Apply(base)
	if changed {
		t.Fatalf("field-only patch should not report an order change")
	}
	if out.Get(FieldHeadline) != "New" || out.Get(FieldAuthor) != "A" {
		t.Fatalf("unexpected merge result %+v", out.Fields)
	}
	if base.Get(FieldHeadline) != "Old" {
		t.Fatalf("patch mutated the original item")
	}
	out, changed = OrderPatch(1).Apply(base)
	if changed || out.Order != 1 {
		t.Fatalf("same order should not count as a change")
	}
	if _, changed = OrderPatch(5).Apply(base); !changed {
		t.Fatalf("expected order change")
	}
}

func TestBuildGenerateRequestDerivesSingleAdverts(t *testing.T) {
	doc := NewDocument("jep")
	doc.NewsStories = []Item{NewItem(1, FieldHeadline, "Lead")}
	doc.VerticalAdverts = []Item{NewItem(1, FieldURL, "https://ads.example/1")}
	cfg := EmailTypeConfig{ID: "jep", AdvertType: AdvertsSingle, UIFeatures: map[string]bool{FeaturePublicationCover: true}}
	eph := EphemeralFields{JEPCover: "cover.jpg", Publication: "JEP"}
	now := time.Date(2024, time.March, 4, 9, 0, 0, 0, time.UTC)

	req := BuildGenerateRequest(doc, cfg, eph, now)
	if len(req.Adverts) != 1 || req.Adverts[0].Get(FieldURL) != "https://ads.example/1" {
		t.Fatalf("expected adverts derived from vertical adverts, got %+v", req.Adverts)
	}
	req.Adverts[0].Fields[FieldURL] = "changed"
	if doc.VerticalAdverts[0].Get(FieldURL) != "https://ads.example/1" {
		t.Fatalf("derived adverts must not alias the document")
	}
	if req.Date != "Monday, March 4, 2024" {
		t.Fatalf("unexpected date %q", req.Date)
	}
	if req.JEPCover != "cover.jpg" || req.Publication != "JEP" {
		t.Fatalf("ephemeral publication fields missing: %+v", req)
	}

	data, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	body := string(data)
	for _, want := range []string{`"business_stories":[]`, `"horizontal_adverts":[]`, `"top_image":{`, `"email_type":"jep"`} {
		if !strings.Contains(body, want) {
			t.Fatalf("payload missing %s: %s", want, body)
		}
	}
}

func TestBuildGenerateRequestVerticalHorizontal(t *testing.T) {
	doc := NewDocument("be")
	doc.VerticalAdverts = []Item{NewItem(1)}
	doc.Date = "kept"
	cfg := EmailTypeConfig{ID: "be", AdvertType: AdvertsVerticalHorizontal}
	req := BuildGenerateRequest(doc, cfg, EphemeralFields{TopImage: TopImage{Title: "Sunrise"}}, time.Now())
	if len(req.Adverts) != 0 {
		t.Fatalf("vertical/horizontal layout should send no single adverts")
	}
	if req.TopImage.Title != "Sunrise" {
		t.Fatalf("top image not merged")
	}
	if req.Date != "kept" {
		t.Fatalf("date should only be stamped for publication covers, got %q", req.Date)
	}
}

func TestFallbackRegistryStampsPublicationCover(t *testing.T) {
	var jep EmailTypeConfig
	for _, cfg := range FallbackEmailConfigs() {
		if cfg.ID == "jep" {
			jep = cfg
		}
	}
	if jep.ID == "" {
		t.Fatalf("fallback registry has no jep entry")
	}
	doc := NewDocument("jep")
	doc.JEPCover = "fetched.jpg"
	doc.Publication = "fetched"
	now := time.Date(2024, time.March, 4, 9, 0, 0, 0, time.UTC)

	req := BuildGenerateRequest(doc, jep, EphemeralFields{JEPCover: "form.jpg", Publication: "Form"}, now)
	if req.JEPCover != "form.jpg" || req.Publication != "Form" {
		t.Fatalf("expected form publication fields, got cover %q publication %q", req.JEPCover, req.Publication)
	}
	if req.Date != "Monday, March 4, 2024" {
		t.Fatalf("expected stamped date, got %q", req.Date)
	}
}
