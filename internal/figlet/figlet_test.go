// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package figlet

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"go.astrophena.name/base/testutil"
	"go.astrophena.name/base/txtar"

	"github.com/common-nighthawk/go-figure"
)

func TestRenderGolden(t *testing.T) {
	ar, err := txtar.ParseFile(filepath.Join("testdata", "render.txtar"))
	if err != nil {
		t.Fatal(err)
	}

	files := make(map[string]string)
	for _, f := range ar.Files {
		files[f.Name] = string(f.Data)
	}

	for name, in := range files {
		font, ok := strings.CutSuffix(name, ".in")
		if !ok {
			continue
		}
		t.Run(font, func(t *testing.T) {
			want, ok := files[font+".out"]
			if !ok {
				t.Fatalf("%s.out is missing", font)
			}
			got, err := Render(strings.TrimSuffix(in, "\n"), &Options{Font: font})
			if err != nil {
				t.Fatal(err)
			}
			testutil.AssertEqual(t, got, want)
		})
	}
}

func TestRenderDeterministic(t *testing.T) {
	for _, msg := range []string{"a", "Hello, world!", "  spaced  ", "~{}|"} {
		first, err := Render(msg, nil)
		if err != nil {
			t.Fatalf("Render(%q): %v", msg, err)
		}
		if strings.TrimSpace(first) == "" {
			t.Fatalf("Render(%q) returned blank output", msg)
		}
		second, err := Render(msg, nil)
		if err != nil {
			t.Fatal(err)
		}
		testutil.AssertEqual(t, second, first)
	}
}

func TestRenderErrors(t *testing.T) {
	cases := map[string]struct {
		msg  string
		opts *Options
		want error
	}{
		"empty message":     {msg: "", want: ErrEmptyMessage},
		"unknown font":      {msg: "hi", opts: &Options{Font: "comic-sans"}, want: ErrUnknownFont},
		"unknown color":     {msg: "hi", opts: &Options{Color: "mauve"}, want: ErrUnknownColor},
		"strict non-ASCII":  {msg: "héllo", opts: &Options{Strict: true}, want: ErrUnsupportedChar},
		"strict tab":        {msg: "a\tb", opts: &Options{Strict: true}, want: ErrUnsupportedChar},
		"missing font file": {msg: "hi", opts: &Options{FontFile: filepath.Join(t.TempDir(), "nope.flf")}, want: os.ErrNotExist},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Render(tc.msg, tc.opts)
			if !errors.Is(err, tc.want) {
				t.Fatalf("Render(%q): want error %v, got %v", tc.msg, tc.want, err)
			}
		})
	}
}

func TestRenderNonStrictReplacesUnsupported(t *testing.T) {
	got, err := Render("Go€", nil)
	if err != nil {
		t.Fatal(err)
	}
	want, err := Render("Go?", nil)
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertEqual(t, got, want)
}

func TestRenderFontFile(t *testing.T) {
	b, err := figure.Asset("fonts/standard.flf")
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "standard.flf")
	if err := os.WriteFile(path, b, 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := Render("figlet", &Options{FontFile: path, Font: "alphabet"})
	if err != nil {
		t.Fatal(err)
	}
	want, err := Render("figlet", nil)
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertEqual(t, got, want)
}

func TestRenderBadFontFile(t *testing.T) {
	dir := t.TempDir()

	notFont := filepath.Join(dir, "readme.flf")
	if err := os.WriteFile(notFont, []byte("just some text\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Render("hi", &Options{FontFile: notFont}); !errors.Is(err, ErrBadFont) {
		t.Fatalf("want ErrBadFont, got %v", err)
	}

	// Valid signature, but no characters defined.
	truncated := filepath.Join(dir, "truncated.flf")
	if err := os.WriteFile(truncated, []byte("flf2a$ 6 5 16 15 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Render("hi", &Options{FontFile: truncated}); !errors.Is(err, ErrBadFont) {
		t.Fatalf("want ErrBadFont, got %v", err)
	}
}

func TestRenderColor(t *testing.T) {
	plain, err := Render("ok", nil)
	if err != nil {
		t.Fatal(err)
	}
	colored, err := Render("ok", &Options{Color: "Cyan"})
	if err != nil {
		t.Fatal(err)
	}
	// Escape codes depend on the terminal, but the text must survive.
	for _, line := range strings.Split(strings.TrimSuffix(plain, "\n"), "\n") {
		if !strings.Contains(colored, line) {
			t.Fatalf("colored output lost line %q:\n%s", line, colored)
		}
	}
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, "Hello world", &Options{Font: "alphabet"}); err != nil {
		t.Fatal(err)
	}
	want := "H  H     l l                     l    d\n" +
		"H  H     l l                     l    d\n" +
		"HHHH eee l l ooo   w   w ooo rrr l  ddd\n" +
		"H  H e e l l o o   w w w o o r   l d  d\n" +
		"H  H ee  l l ooo    w w  ooo r   l  ddd\n"
	testutil.AssertEqual(t, buf.String(), want)

	if err := Write(&buf, "", nil); !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("want ErrEmptyMessage, got %v", err)
	}
}

func TestFonts(t *testing.T) {
	fonts := Fonts()
	if !slices.IsSorted(fonts) {
		t.Fatalf("Fonts() is not sorted: %v", fonts)
	}
	for _, want := range []string{DefaultFont, "alphabet", "slant", "banner"} {
		if !slices.Contains(fonts, want) {
			t.Errorf("Fonts() doesn't contain %q", want)
		}
	}
	for _, font := range []string{DefaultFont, "slant", "banner"} {
		if _, err := Render("x", &Options{Font: font}); err != nil {
			t.Errorf("font %q: %v", font, err)
		}
	}
}

func TestColors(t *testing.T) {
	colors := Colors()
	if !slices.IsSorted(colors) {
		t.Fatalf("Colors() is not sorted: %v", colors)
	}
	if !slices.Contains(colors, "red") {
		t.Fatalf("Colors() doesn't contain red: %v", colors)
	}
}
