package template_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ByLCY/certkit/template"
)

const sampleJSON = `{
  "coord_unit": "PX",
  "y_origin": "top",
  "background_image": "assets/cert/player.png",
  "use_background_size": true,
  "global_y_offset": "4",
  "stamp_width": 90,
  "stamp_y_anchor": "center",
  "texts": [
    {"field": "participants_names", "x": 100, "y": "250", "width": 600, "anchor": "CENTER", "wrap": true, "max_lines": 2},
    {"text": "优秀辅导员", "x": 10, "y": 20, "width": "abc", "align": "diagonal", "glyph_dx": {"优": 20, "秀": "10"}}
  ],
  "stamp_images": [
    {"image": "a.png", "fallback_images": ["b.png"], "x": 5},
    {"path": "c.png", "center_x": true, "unit": "mm", "y_origin": "bottom"}
  ],
  "debug_grid_overlay": true
}`

func TestParseJSONNormalizes(t *testing.T) {
	tpl, err := template.ParseJSON([]byte(sampleJSON))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if tpl.Unit != template.UnitPX || tpl.Origin != template.OriginTop {
		t.Fatalf("unexpected unit/origin: %s/%s", tpl.Unit, tpl.Origin)
	}
	if got := tpl.GlobalYOffset.Or(0); got != 4 {
		t.Fatalf("expected numeric string offset 4, got %v", got)
	}
	if len(tpl.Texts) != 2 {
		t.Fatalf("expected 2 texts, got %d", len(tpl.Texts))
	}

	first := tpl.Texts[0]
	if first.XAnchor != template.AlignCenter {
		t.Fatalf("anchor alias should fill x_anchor, got %q", first.XAnchor)
	}
	if first.Align != template.AlignCenter || first.Direction != template.DirectionUp {
		t.Fatalf("defaults not applied: align=%q direction=%q", first.Align, first.Direction)
	}
	if first.Unit != template.UnitPX || first.Origin != template.OriginTop {
		t.Fatalf("item should inherit template unit/origin, got %s/%s", first.Unit, first.Origin)
	}
	if first.Y.Or(0) != 250 || first.MaxLines.Or(0) != 2 {
		t.Fatalf("unexpected numbers: y=%v max_lines=%v", first.Y.Value, first.MaxLines.Value)
	}

	second := tpl.Texts[1]
	if !second.Width.Malformed() {
		t.Fatalf("non-numeric width should be kept as malformed, got %+v", second.Width)
	}
	if second.Width.Or(42) != 42 {
		t.Fatalf("malformed width should degrade to the default")
	}
	if second.Align != template.AlignCenter {
		t.Fatalf("unknown align should normalize to center, got %q", second.Align)
	}
	if second.GlyphDX["秀"].Or(0) != 10 {
		t.Fatalf("glyph_dx string value should parse, got %+v", second.GlyphDX["秀"])
	}

	a, c := tpl.StampImages[0], tpl.StampImages[1]
	if a.Width.Or(0) != 90 || a.YAnchor != template.AnchorCenter {
		t.Fatalf("stamp should inherit template defaults: %+v", a)
	}
	if got := a.Fallbacks(); len(got) != 1 || got[0] != "b.png" {
		t.Fatalf("unexpected fallbacks: %v", got)
	}
	if c.Source() != "c.png" || c.Unit != template.UnitMM || c.Origin != template.OriginBottom {
		t.Fatalf("stamp overrides lost: %+v", c)
	}
	if c.CenterX == nil || !*c.CenterX {
		t.Fatalf("center_x should be kept")
	}
	if tpl.DebugGridOverlay == nil || !tpl.DebugGridOverlay.Enabled {
		t.Fatalf("boolean overlay should be enabled")
	}
}

func TestParseRejectsInvalidShape(t *testing.T) {
	cases := []struct {
		name string
		body string
		want error
	}{
		{"unknown unit", `{"coord_unit": "cm", "texts": [{"text": "x"}]}`, template.ErrUnknownUnit},
		{"unknown origin", `{"y_origin": "middle", "texts": [{"text": "x"}]}`, template.ErrUnknownOrigin},
		{"empty", `{"coord_unit": "mm"}`, template.ErrEmptyTemplate},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := template.ParseJSON([]byte(tc.body))
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestOverlayObjectAndRepeatClamp(t *testing.T) {
	body := `{
  "texts": [{"text": "x"}],
  "stamp_repeat": {"kind": "Coach", "count": 99, "gap": 20},
  "debug_grid_overlay": {"main_step_px": 25}
}`
	tpl, err := template.ParseJSON([]byte(body))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if tpl.StampRepeat.Count != template.MaxRepeatCount {
		t.Fatalf("count should clamp to %d, got %d", template.MaxRepeatCount, tpl.StampRepeat.Count)
	}
	if tpl.StampRepeat.Kind != template.KindCoach {
		t.Fatalf("kind should normalize to coach, got %q", tpl.StampRepeat.Kind)
	}
	ov := tpl.DebugGridOverlay
	if !ov.Enabled || ov.MainStepPx.Or(0) != 25 || ov.FineStepPx.Present() {
		t.Fatalf("unexpected overlay: %+v", ov)
	}
}

func TestLoadFileYAML(t *testing.T) {
	body := `coord_unit: px
y_origin: bottom
texts:
  - field: school_name
    x: 120
    y: "300"
    width: 400
    align: left
    char_space: -1.2
debug_grid_overlay:
  fine_step_px: 5
`
	path := filepath.Join(t.TempDir(), "player.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	tpl, err := template.LoadFile(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if tpl.Name != "player" {
		t.Fatalf("name should default to file stem, got %q", tpl.Name)
	}
	it := tpl.Texts[0]
	if it.Field != "school_name" || it.Align != template.AlignLeft || it.Y.Or(0) != 300 {
		t.Fatalf("unexpected item: %+v", it)
	}
	if it.CharSpace.Or(0) != -1.2 {
		t.Fatalf("char_space should be -1.2, got %v", it.CharSpace.Value)
	}
	if tpl.DebugGridOverlay == nil || tpl.DebugGridOverlay.FineStepPx.Or(0) != 5 {
		t.Fatalf("yaml overlay object not decoded: %+v", tpl.DebugGridOverlay)
	}
}

const sampleCert = `
template Coach v1 {
  meta {
    title: "优秀辅导员证书"
    keywords: ["证书", "辅导员"]
  }

  resources {
    color Gold = #C8A040
  }

  page px top {
    background: "assets/cert/coach.png"
    native-size: true
    text-color: Gold

    text {
      "优秀辅导员"
      x: 400; y: 520; width: 600
      x-anchor: center
      font: "华文楷体"
      font-size: 48px
      char-space: -1.2
      glyph-dx: { "优": 20, "秀": 10, "导": -10 }
    }

    text {
      field: contact_name
      x: 120
      y: 300
      auto-size: true
    }

    stamps coach {
      y-anchor: center
    }

    debug overlay {}
  }
}
`

func TestParseDSL(t *testing.T) {
	tpl, err := template.Parse([]byte(sampleCert), template.FormatDSL)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if tpl.Name != "Coach" || tpl.Meta.Title != "优秀辅导员证书" || len(tpl.Meta.Keywords) != 2 {
		t.Fatalf("unexpected header/meta: %q %+v", tpl.Name, tpl.Meta)
	}
	if tpl.Unit != template.UnitPX || tpl.Origin != template.OriginTop || !tpl.UseBackgroundSize {
		t.Fatalf("page header not applied: %+v", tpl)
	}
	if tpl.TextColor != "#C8A040" {
		t.Fatalf("named color should resolve, got %q", tpl.TextColor)
	}
	if len(tpl.Texts) != 2 {
		t.Fatalf("expected 2 text items, got %d", len(tpl.Texts))
	}
	award := tpl.Texts[0]
	if award.Text != "优秀辅导员" || award.XAnchor != template.AlignCenter || award.FontSize.Or(0) != 48 {
		t.Fatalf("unexpected award item: %+v", award)
	}
	if award.CharSpace.Or(0) != -1.2 || award.GlyphDX["导"].Or(0) != -10 {
		t.Fatalf("tracking/glyph offsets lost: %+v", award)
	}
	if name := tpl.Texts[1]; name.Field != "contact_name" || !name.AutoSize {
		t.Fatalf("unexpected field item: %+v", name)
	}
	if tpl.StampRepeat == nil || tpl.StampRepeat.Kind != template.KindCoach {
		t.Fatalf("stamps block should become a coach repeat group: %+v", tpl.StampRepeat)
	}
	if tpl.DebugGridOverlay == nil || !tpl.DebugGridOverlay.Enabled {
		t.Fatalf("empty overlay block should enable overlay")
	}
}

func TestParseDSLRejectsUnitMismatch(t *testing.T) {
	src := `template Bad v1 {
  page mm bottom {
    text { x: 10px }
  }
}`
	if _, err := template.Parse([]byte(src), template.FormatDSL); err == nil {
		t.Fatalf("px suffix on a mm page should fail")
	}
}

func TestParseDSLItemUnitOverride(t *testing.T) {
	src := `template Mixed v1 {
  page mm bottom {
    text { unit: px; x: 100px; y: 20px; "甲" }
    stamp { image: "seal.png"; x: 10mm }
  }
}`
	tpl, err := template.Parse([]byte(src), template.FormatDSL)
	if err != nil {
		t.Fatalf("item unit override should be accepted: %v", err)
	}
	if it := tpl.Texts[0]; it.Unit != template.UnitPX || it.X.Or(0) != 100 || it.Y.Or(0) != 20 {
		t.Fatalf("unexpected text item: unit=%s x=%v y=%v", it.Unit, it.X.Or(0), it.Y.Or(0))
	}
	if s := tpl.StampImages[0]; s.X.Or(0) != 10 {
		t.Fatalf("unexpected stamp x %v", s.X.Or(0))
	}

	src = `template Mixed v1 {
  page px top {
    stamp { unit: mm; image: "seal.png"; x: 10mm }
    slot title { x: 50mm; y: 200mm; width: 100mm }
  }
}`
	tpl, err = template.Parse([]byte(src), template.FormatDSL)
	if err != nil {
		t.Fatalf("mm stamp and slot on a px page should be accepted: %v", err)
	}
	if s := tpl.StampImages[0]; s.Unit != template.UnitMM || s.X.Or(0) != 10 {
		t.Fatalf("unexpected stamp: unit=%s x=%v", s.Unit, s.X.Or(0))
	}

	src = `template Bad v1 {
  page mm bottom {
    text { unit: px; x: 10mm }
  }
}`
	if _, err := template.Parse([]byte(src), template.FormatDSL); err == nil {
		t.Fatalf("mm suffix on a px item should fail")
	}
}

func TestCloneAndWithRepeat(t *testing.T) {
	tpl, err := template.ParseJSON([]byte(sampleJSON))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	c := tpl.Clone()
	c.Texts[1].GlyphDX["优"] = template.Num(99)
	*c.StampImages[1].CenterX = false
	if tpl.Texts[1].GlyphDX["优"].Or(0) != 20 || !*tpl.StampImages[1].CenterX {
		t.Fatalf("clone must not share maps or pointers with the original")
	}

	r := tpl.WithRepeat(template.KindPlayer)
	if r.StampImages != nil || r.StampRepeat == nil {
		t.Fatalf("repeat group should replace stamp_images")
	}
	if r.StampRepeat.Count != 6 || r.StampRepeat.Gap.Or(0) != 30 || r.StampRepeat.DX.Or(0) != 68 {
		t.Fatalf("unexpected player repeat: %+v", r.StampRepeat)
	}
	if tpl.StampRepeat != nil || len(tpl.StampImages) != 2 {
		t.Fatalf("WithRepeat must not touch the original")
	}
}

func TestDefaultTemplate(t *testing.T) {
	tpl := template.DefaultTemplate()
	if !tpl.HasSlots() || len(tpl.Texts) != 0 {
		t.Fatalf("default template should use legacy slots")
	}
	if tpl.Title.Text != "获奖证书" || tpl.Award.Font != "华文楷体" || tpl.Winner.Y.Or(0) != 160 {
		t.Fatalf("unexpected default slots: %+v %+v", tpl.Title, tpl.Award)
	}
}

func TestDefaultTemplateIsValid(t *testing.T) {
	tpl := template.DefaultTemplate()
	if err := tpl.Validate(); err != nil {
		t.Fatalf("default template should validate: %v", err)
	}
	if tpl.Title == nil || tpl.Title.Text != "获奖证书" {
		t.Fatalf("unexpected default title: %+v", tpl.Title)
	}
}

func TestWithCoachAward(t *testing.T) {
	tpl, err := template.ParseJSON([]byte(`{
		"coord_unit": "px",
		"texts": [
			{"field": "participants_names", "x": 10, "y": 100, "font_size": 40},
			{"field": "award_level", "x": 10, "y": 300, "font_size": "60.7"},
			{"text": "优秀辅导员", "x": 10, "y": 500, "font_size": 30}
		]
	}`))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	c := tpl.WithCoachAward()
	award := c.Texts[1]
	if award.FontSize.Or(0) != 84 || award.Y.Or(0) != 335 || award.CharSpace.Or(0) != -1.2 {
		t.Fatalf("unexpected award item: size=%v y=%v char_space=%v", award.FontSize.Or(0), award.Y.Or(0), award.CharSpace.Or(0))
	}
	if award.GlyphDX["优"].Or(0) != 20 || award.GlyphDX["员"].Or(0) != -20 {
		t.Fatalf("unexpected glyph offsets: %+v", award.GlyphDX)
	}
	if c.Texts[2].FontSize.Or(0) != 30 || c.Texts[0].FontSize.Or(0) != 40 {
		t.Fatalf("only the first award item should change")
	}
	if tpl.Texts[1].FontSize.Or(0) != 60.7 || tpl.Texts[1].GlyphDX != nil {
		t.Fatalf("WithCoachAward must not touch the receiver")
	}

	bad, err := template.ParseJSON([]byte(`{"texts": [{"text": "优秀辅导员", "font_size": "big"}]}`))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if got := bad.WithCoachAward().Texts[0]; got.FontSize.Or(0) != 140 || got.Y.Or(0) != 35 {
		t.Fatalf("malformed size should become 140, got size=%v y=%v", got.FontSize.Or(0), got.Y.Or(0))
	}
}
