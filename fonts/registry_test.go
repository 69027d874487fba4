package fonts_test

import (
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/font/gofont/goregular"

	"github.com/ByLCY/certkit/fonts"
)

func writeFont(t *testing.T, dir, name string, data []byte) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestResolveWithoutFontFiles(t *testing.T) {
	reg := fonts.NewRegistry(fonts.Options{Dir: t.TempDir()})

	if got := reg.Primary(); got != fonts.Universal {
		t.Fatalf("primary should fall back to %s, got %s", fonts.Universal, got)
	}
	for _, name := range []string{"", "黑体", "宋体", "Unknown Font", "CJK"} {
		if got := reg.Resolve(name); got != fonts.Universal {
			t.Fatalf("Resolve(%q) = %s, want %s", name, got, fonts.Universal)
		}
	}
	if _, ok := reg.Lookup(fonts.Universal); !ok {
		t.Fatalf("universal font must always be registered")
	}
}

func TestResolveAliasesAndFallback(t *testing.T) {
	dir := t.TempDir()
	writeFont(t, dir, "simhei.ttf", []byte("not a font"))
	writeFont(t, dir, "SimHei.TTF", goregular.TTF)
	writeFont(t, dir, "STKAITI.TTF", goregular.TTF)

	reg := fonts.NewRegistry(fonts.Options{Dir: dir})

	if got := reg.Resolve("黑体"); got != "SimHei" {
		t.Fatalf("黑体 should resolve to SimHei, got %s", got)
	}
	if got := reg.Resolve("华文楷体"); got != "STKaiti" {
		t.Fatalf("华文楷体 should resolve to STKaiti, got %s", got)
	}
	// STSong 不可用，共享回退退到首选字体
	if got := reg.Fallback(); got != "SimHei" {
		t.Fatalf("fallback should be SimHei, got %s", got)
	}
	if got := reg.Resolve("幼圆"); got != "SimHei" {
		t.Fatalf("unavailable alias should use the shared fallback, got %s", got)
	}
	if got := reg.Resolve(""); got != "SimHei" {
		t.Fatalf("empty name should use primary, got %s", got)
	}

	f, ok := reg.Lookup("SimHei")
	if !ok || filepath.Base(f.Path) != "SimHei.TTF" {
		t.Fatalf("corrupt candidate should be skipped, got %+v", f)
	}

	want := []string{"SimHei", "STKaiti", "GoBold", fonts.Universal}
	got := reg.Available()
	if len(got) != len(want) {
		t.Fatalf("Available() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Available() = %v, want %v", got, want)
		}
	}
}

func TestCoverage(t *testing.T) {
	reg := fonts.NewRegistry(fonts.Options{})
	f, _ := reg.Lookup(fonts.Universal)
	if !f.Covers('A') {
		t.Fatalf("GoRegular should cover ASCII")
	}
	if f.Covers('证') {
		t.Fatalf("GoRegular should not cover CJK")
	}
	// 没有字体能覆盖时保持 Resolve 的结果
	if got := reg.ResolveFor("黑体", "证书"); got != reg.Resolve("黑体") {
		t.Fatalf("ResolveFor should keep the resolved font when nothing covers, got %s", got)
	}
	if got := reg.ResolveFor("GoBold", "Award"); got != "GoBold" {
		t.Fatalf("covered text should keep the requested font, got %s", got)
	}
}
