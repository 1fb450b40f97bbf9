// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

/*
Package figlet renders text as FIGlet ASCII art.

It is a thin layer over [github.com/common-nighthawk/go-figure] that turns the
engine's panics and fatal exits into errors. Fonts are either one of the
embedded FIGlet fonts (see [Fonts]) or a .flf file on disk.

The default font is "standard", the one figlet(1) uses. Characters are placed
side by side without smushing.
*/
package figlet

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"slices"
	"strings"

	"github.com/common-nighthawk/go-figure"
	"github.com/pterm/pterm"
)

// DefaultFont is the font used when [Options.Font] is empty.
const DefaultFont = "standard"

// Possible errors.
var (
	ErrEmptyMessage    = errors.New("empty message")
	ErrUnknownFont     = errors.New("unknown font")
	ErrBadFont         = errors.New("not a FIGlet font")
	ErrUnsupportedChar = errors.New("unsupported character")
	ErrUnknownColor    = errors.New("unknown color")
)

// flfSignature starts every FIGlet font file.
const flfSignature = "flf2"

// Printable ASCII range that FIGlet fonts are required to define.
const (
	firstChar = ' '
	lastChar  = '~'
)

var colors = map[string]pterm.Color{
	"red":     pterm.FgRed,
	"green":   pterm.FgGreen,
	"yellow":  pterm.FgYellow,
	"blue":    pterm.FgBlue,
	"magenta": pterm.FgMagenta,
	"purple":  pterm.FgMagenta,
	"cyan":    pterm.FgCyan,
	"gray":    pterm.FgGray,
	"white":   pterm.FgWhite,
}

// Options control rendering. A nil *Options renders with the default font.
type Options struct {
	// Font is the name of an embedded font. If empty, DefaultFont is used.
	Font string
	// FontFile is a path to a .flf font file. It takes precedence over Font.
	FontFile string
	// Strict makes characters outside of printable ASCII an error instead of
	// rendering them as '?'.
	Strict bool
	// Color is the name of a terminal color to paint the output with. See
	// Colors for accepted names.
	Color string
}

// Render renders msg and returns the resulting lines, each terminated by a
// newline.
func Render(msg string, opts *Options) (string, error) {
	if opts == nil {
		opts = &Options{}
	}
	if msg == "" {
		return "", ErrEmptyMessage
	}
	if opts.Strict {
		if err := checkChars(msg); err != nil {
			return "", err
		}
	}

	var paint func(string) string
	if opts.Color != "" {
		c, ok := colors[strings.ToLower(opts.Color)]
		if !ok {
			return "", fmt.Errorf("%w %q, must be one of %s", ErrUnknownColor, opts.Color, strings.Join(Colors(), ", "))
		}
		paint = func(s string) string { return c.Sprint(s) }
	}

	rows, err := slicify(msg, opts)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, row := range rows {
		if paint != nil {
			row = paint(row)
		}
		sb.WriteString(row)
		sb.WriteByte('\n')
	}
	return sb.String(), nil
}

// Write renders msg and writes it to w.
func Write(w io.Writer, msg string, opts *Options) error {
	s, err := Render(msg, opts)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, s)
	return err
}

func slicify(msg string, opts *Options) (rows []string, err error) {
	if opts.FontFile != "" {
		// A malformed font makes go-figure index out of range.
		defer func() {
			if r := recover(); r != nil {
				rows, err = nil, fmt.Errorf("%s: %w: %v", opts.FontFile, ErrBadFont, r)
			}
		}()

		b, err := os.ReadFile(opts.FontFile)
		if err != nil {
			return nil, err
		}
		if !bytes.HasPrefix(b, []byte(flfSignature)) {
			return nil, fmt.Errorf("%s: %w", opts.FontFile, ErrBadFont)
		}
		return figure.NewFigureWithFont(msg, bytes.NewReader(b), false).Slicify(), nil
	}

	font := opts.Font
	if font == "" {
		font = DefaultFont
	}
	// go-figure panics on fonts it doesn't have.
	if _, err := figure.Asset(fontAsset(font)); err != nil {
		return nil, fmt.Errorf("%w %q", ErrUnknownFont, font)
	}
	return figure.NewFigure(msg, font, false).Slicify(), nil
}

func checkChars(msg string) error {
	for i, r := range msg {
		if r < firstChar || r > lastChar {
			return fmt.Errorf("%w %q at offset %d", ErrUnsupportedChar, r, i)
		}
	}
	return nil
}

func fontAsset(name string) string { return path.Join("fonts", name+".flf") }

// Fonts returns sorted names of the embedded fonts.
func Fonts() []string {
	var fonts []string
	for _, name := range figure.AssetNames() {
		if path.Dir(name) != "fonts" || path.Ext(name) != ".flf" {
			continue
		}
		fonts = append(fonts, strings.TrimSuffix(path.Base(name), ".flf"))
	}
	slices.Sort(fonts)
	return fonts
}

// Colors returns sorted names of the accepted colors.
func Colors() []string {
	names := make([]string, 0, len(colors))
	for name := range colors {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
