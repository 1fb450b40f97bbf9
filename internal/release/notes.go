// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package release

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gorilla/feeds"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/html"
	"rsc.io/markdown"
)

// ErrNoNotes is returned by Notes when the changelog has no section for a
// version.
var ErrNoNotes = errors.New("no release notes")

// ReleaseNotes is a changelog section of a single release.
//
// A changelog is a Markdown document where each release starts with a
// second-level heading holding the version and, optionally, a date:
//
//	## v1.1.0 - 2026-10-18
//
//	Adds -color flag.
type ReleaseNotes struct {
	Version string
	// Date is the release date. It's zero if the heading doesn't have one.
	Date time.Time
	// Markdown is the section body without the heading.
	Markdown string
	// HTML is the minified rendering of Markdown.
	HTML string
	// Summary is the text of the first paragraph.
	Summary string
}

// Notes returns release notes for version from changelog. Versions with and
// without the "v" prefix are considered equal.
func Notes(changelog []byte, version string) (*ReleaseNotes, error) {
	all, err := AllNotes(changelog)
	if err != nil {
		return nil, err
	}
	for _, n := range all {
		if sameVersion(n.Version, version) {
			return n, nil
		}
	}
	return nil, fmt.Errorf("%w for %s", ErrNoNotes, version)
}

// AllNotes returns release notes for every release in changelog, in document
// order.
func AllNotes(changelog []byte) ([]*ReleaseNotes, error) {
	r := newRenderer()

	var (
		all     []*ReleaseNotes
		cur     *ReleaseNotes
		body    strings.Builder
		inFence bool
	)
	flush := func() error {
		if cur == nil {
			return nil
		}
		if err := r.render(cur, strings.TrimSpace(body.String())); err != nil {
			return fmt.Errorf("rendering notes for %s: %w", cur.Version, err)
		}
		all = append(all, cur)
		cur = nil
		body.Reset()
		return nil
	}

	sc := bufio.NewScanner(bytes.NewReader(changelog))
	for sc.Scan() {
		line := sc.Text()
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			inFence = !inFence
		}
		if !inFence && (strings.HasPrefix(line, "# ") || strings.HasPrefix(line, "## ")) {
			if err := flush(); err != nil {
				return nil, err
			}
			if heading, ok := strings.CutPrefix(line, "## "); ok {
				cur = parseHeading(heading)
			}
			continue
		}
		if cur != nil {
			body.WriteString(line)
			body.WriteByte('\n')
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return all, nil
}

func parseHeading(heading string) *ReleaseNotes {
	fields := strings.Fields(heading)
	n := &ReleaseNotes{}
	if len(fields) == 0 {
		return n
	}
	n.Version = strings.Trim(fields[0], "[]")
	for _, f := range fields[1:] {
		if d, err := time.Parse(time.DateOnly, strings.Trim(f, "()")); err == nil {
			n.Date = d
			break
		}
	}
	return n
}

func sameVersion(a, b string) bool {
	return strings.TrimPrefix(a, "v") == strings.TrimPrefix(b, "v")
}

type renderer struct {
	md  *markdown.Parser
	min *minify.M
}

func newRenderer() *renderer {
	m := minify.New()
	m.Add("text/html", &html.Minifier{
		KeepEndTags: true,
	})
	return &renderer{
		md: &markdown.Parser{
			HeadingID:     true,
			Strikethrough: true,
			TaskList:      true,
			AutoLinkText:  true,
			Table:         true,
			SmartDash:     true,
		},
		min: m,
	}
}

func (r *renderer) render(n *ReleaseNotes, body string) error {
	n.Markdown = body

	doc := r.md.Parse(body)
	minified, err := r.min.Bytes("text/html", []byte(markdown.ToHTML(doc)))
	if err != nil {
		return err
	}
	n.HTML = string(minified)

	qdoc, err := goquery.NewDocumentFromReader(bytes.NewReader(minified))
	if err != nil {
		return err
	}
	n.Summary = strings.Join(strings.Fields(qdoc.Find("p").First().Text()), " ")
	return nil
}

// FeedConfig represents an Atom feed of releases.
type FeedConfig struct {
	// Title is the feed title.
	Title string
	// Author is the name of the feed author.
	Author string
	// RepoURL is the repository URL, like "https://github.com/owner/repo".
	RepoURL string
}

// Feed returns an Atom feed with an entry for each release. Sections without
// a date, like "Unreleased", have no release page and are left out. The feed
// is considered created at the date of the latest release.
func Feed(notes []*ReleaseNotes, c *FeedConfig) ([]byte, error) {
	repoURL := strings.TrimSuffix(c.RepoURL, "/")
	feed := &feeds.Feed{
		Title:  c.Title,
		Link:   &feeds.Link{Href: repoURL + "/releases"},
		Author: &feeds.Author{Name: c.Author},
	}

	for _, n := range notes {
		if n.Date.IsZero() {
			continue
		}
		if n.Date.After(feed.Created) {
			feed.Created = n.Date
		}
		link := repoURL + "/releases/tag/" + n.Version
		feed.Items = append(feed.Items, &feeds.Item{
			Title:       n.Version,
			Link:        &feeds.Link{Href: link},
			Id:          link,
			Author:      feed.Author,
			Description: n.Summary,
			Content:     n.HTML,
			Created:     n.Date,
		})
	}

	atom, err := feed.ToAtom()
	if err != nil {
		return nil, err
	}
	return []byte(atom), nil
}
