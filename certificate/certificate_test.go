package certificate

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/ByLCY/certkit/binding"
	"github.com/ByLCY/certkit/template"
)

func testGenerator(t *testing.T, root string) *Generator {
	t.Helper()
	cfg := DefaultConfig()
	cfg.AssetsRoot = root
	cfg.PreviewDPI = 72
	return New(cfg, Options{})
}

func zhaoRecord() *binding.Application {
	return &binding.Application{
		MatchNo:        "B-001",
		Members:        []binding.Participant{{SeqNo: 1, Name: "赵"}},
		Category:       "编程赛",
		AwardLevel:     "一等奖",
		EducationLevel: "小学组",
	}
}

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(1, 1, color.RGBA{R: 180, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestGenerateSinglePageCertificate(t *testing.T) {
	tpl, err := template.ParseJSON([]byte(`{
		"name": "e2e",
		"texts": [
			{"text": "荣誉证书", "x": 100, "y": 100, "width": 400, "font_size": 24},
			{"field": "participants_names", "x": 100, "y": 200, "width": 400, "auto_size": true, "max_font_size": 32}
		]
	}`))
	if err != nil {
		t.Fatalf("解析模板失败: %v", err)
	}
	g := testGenerator(t, t.TempDir())

	res, err := g.Layout(zhaoRecord(), tpl)
	if err != nil {
		t.Fatalf("布局失败: %v", err)
	}
	if len(res.Page.Texts) != 2 || res.Page.Texts[0].Content != "荣誉证书" || res.Page.Texts[1].Content != "赵" {
		t.Fatalf("unexpected texts: %+v", res.Page.Texts)
	}

	data, err := g.Generate(zhaoRecord(), tpl)
	if err != nil {
		t.Fatalf("生成失败: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("output is not a PDF")
	}
	if err := Verify(data); err != nil {
		t.Fatalf("verify: %v", err)
	}

	// 页面上只应有两段文字：与只含一段文字的页面相比，文本绘制算子恰好翻倍；
	// 值为空的 teacher_name 不产生任何文字。
	single, err := template.ParseJSON([]byte(`{"texts": [{"text": "荣誉证书", "x": 100, "y": 100, "width": 400, "font_size": 24}]}`))
	if err != nil {
		t.Fatal(err)
	}
	one, err := g.Generate(zhaoRecord(), single)
	if err != nil {
		t.Fatalf("生成失败: %v", err)
	}
	withBlank := tpl.Clone()
	withBlank.Texts = append(withBlank.Texts, template.TextItem{Field: "teacher_name", X: template.Num(100), Y: template.Num(300), Width: template.Num(400)})
	if err := withBlank.Normalize(); err != nil {
		t.Fatal(err)
	}
	two, err := g.Generate(zhaoRecord(), withBlank)
	if err != nil {
		t.Fatalf("生成失败: %v", err)
	}
	n1, n2 := textShows(t, one), textShows(t, two)
	if n1 == 0 || n2 != 2*n1 {
		t.Fatalf("expected exactly two text runs on the page: one-run page has %d text operators, certificate has %d", n1, n2)
	}
}

var textShowOp = regexp.MustCompile(`(?m)(^|[^A-Za-z])T[jJ]\b`)

// textShows 用 pdfcpu 解出第一页的内容流，统计文本绘制算子 Tj/TJ 的个数。
func textShows(t *testing.T, data []byte) int {
	t.Helper()
	dir := t.TempDir()
	if err := api.ExtractContent(bytes.NewReader(data), dir, "page", []string{"1"}, pdfConfig()); err != nil {
		t.Fatalf("extract content: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) == 0 {
		t.Fatalf("no content extracted: %v", err)
	}
	n := 0
	for _, e := range entries {
		b, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			t.Fatal(err)
		}
		n += len(textShowOp.FindAll(b, -1))
	}
	return n
}

func TestGenerateDefaultTemplateWithRepeat(t *testing.T) {
	root := t.TempDir()
	writePNG(t, filepath.Join(root, "bg.png"), 800, 600)
	for i := 1; i <= 6; i++ {
		if i == 4 {
			continue
		}
		writePNG(t, filepath.Join(root, "assets", "cert", "stamps", "coach", strconv.Itoa(i)+".png"), 40, 40)
	}
	tpl := template.DefaultTemplate().WithRepeat(template.KindCoach)
	tpl.BackgroundImage = "bg.png"
	tpl.UseBackgroundSize = true

	g := testGenerator(t, root)
	res, err := g.Layout(PrepareCoach(zhaoRecord()), tpl)
	if err != nil {
		t.Fatalf("布局失败: %v", err)
	}
	if len(res.Page.Stamps) != 5 {
		t.Fatalf("expected 5 stamps with #4 missing, got %d", len(res.Page.Stamps))
	}
	if _, err := g.Generate(PrepareCoach(zhaoRecord()), tpl); err != nil {
		t.Fatalf("生成失败: %v", err)
	}
	img, err := g.Preview(zhaoRecord(), tpl)
	if err != nil {
		t.Fatalf("预览失败: %v", err)
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(img))
	if err != nil {
		t.Fatalf("decode preview: %v", err)
	}
	if cfg.Width < 595 || cfg.Width > 605 {
		t.Fatalf("preview width at 72dpi should be about 600, got %d", cfg.Width)
	}
}

func TestGenerateRejectsNilTemplate(t *testing.T) {
	g := testGenerator(t, t.TempDir())
	if _, err := g.Generate(zhaoRecord(), nil); err == nil {
		t.Fatalf("expected error for nil template")
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	for _, data := range [][]byte{nil, []byte("not a pdf")} {
		if err := Verify(data); !errors.Is(err, ErrInvalidOutput) {
			t.Fatalf("Verify(%q) = %v, want ErrInvalidOutput", data, err)
		}
	}
}

func TestStoreWritesAtomicallyAndDeduplicates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out", "a.pdf")
	var s Store
	var calls atomic.Int32
	fn := func() ([]byte, error) {
		calls.Add(1)
		return []byte("payload"), nil
	}

	const n = 8
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- s.Render("k", path, fn)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("render: %v", err)
		}
	}
	if c := calls.Load(); c < 1 || c > n {
		t.Fatalf("unexpected call count %d", c)
	}
	got, err := os.ReadFile(path)
	if err != nil || string(got) != "payload" {
		t.Fatalf("read back %q, %v", got, err)
	}
	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Fatalf("temporary files left behind: %v", entries)
	}
}

func TestStoreKeepsPreviousFileOnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.pdf")
	if err := os.WriteFile(path, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}
	var s Store
	boom := errors.New("boom")
	if err := s.Render(path, path, func() ([]byte, error) { return nil, boom }); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	got, _ := os.ReadFile(path)
	if string(got) != "old" {
		t.Fatalf("previous file was modified: %q", got)
	}
}

func TestPrepareCoach(t *testing.T) {
	app := zhaoRecord()
	c := PrepareCoach(app)
	if c.AwardLevel != CoachAward || c.Category != "编程" {
		t.Fatalf("unexpected coach record: %+v", c)
	}
	if app.AwardLevel != "一等奖" || app.Category != "编程赛" {
		t.Fatalf("original record modified: %+v", app)
	}
	if PrepareCoach(nil) != nil {
		t.Fatalf("nil record should stay nil")
	}
}

func TestSafeFilenamePart(t *testing.T) {
	cases := map[string]string{
		"":           "NA",
		"  ":         "NA",
		` a/b\c `:    "a_b_c",
		`x:y*z?"<>|`: "x_y_z_____",
		"m\nn\tq":    "m_n_q",
	}
	for in, want := range cases {
		if got := SafeFilenamePart(in); got != want {
			t.Fatalf("SafeFilenamePart(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestArtifactName(t *testing.T) {
	app := &binding.Application{
		MatchNo: "A/7",
		Members: []binding.Participant{{SeqNo: 2, Name: "乙"}, {SeqNo: 1, Name: "甲"}},
		Category: "绘画赛", EducationLevel: "初中组", AwardLevel: "二等奖",
		TeacherName: "王老师",
	}
	if got, want := ArtifactName(app, template.KindPlayer), "A_7_甲、乙_绘画赛_初中组_二等奖.pdf"; got != want {
		t.Fatalf("player name = %q, want %q", got, want)
	}
	if got, want := ArtifactName(PrepareCoach(app), template.KindCoach), "A_7_王老师_绘画_优秀辅导员.pdf"; got != want {
		t.Fatalf("coach name = %q, want %q", got, want)
	}
}

func TestGenerateToUsesStore(t *testing.T) {
	tpl, err := template.ParseJSON([]byte(`{"texts": [{"field": "award_level", "x": 10, "y": 10, "width": 200}]}`))
	if err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()
	g := testGenerator(t, dir)
	var s Store
	app := zhaoRecord()
	p, err := g.GenerateTo(&s, dir, ArtifactName(app, template.KindPlayer), app, tpl)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	data, err := os.ReadFile(p)
	if err != nil {
		t.Fatal(err)
	}
	if err := Verify(data); err != nil {
		t.Fatalf("verify written file: %v", err)
	}
}
