// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package release

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.astrophena.name/base/logger"
	"go.astrophena.name/base/request"
)

// DefaultAPIURL is the GitHub REST API endpoint.
const DefaultAPIURL = "https://api.github.com"

// PublishConfig represents a publication of a GitHub release.
type PublishConfig struct {
	// Repo is the repository in "owner/repo" form.
	Repo string
	// Tag is the Git tag of the release.
	Tag string
	// Token is a GitHub token that can write releases.
	Token string
	// Dir is the dist directory with artifacts and the checksum file.
	Dir string
	// Notes are the release notes. If nil, the release is created without a
	// body.
	Notes *ReleaseNotes
	// Prerelease marks a newly created release as a prerelease.
	Prerelease bool
	// DryRun logs what would be done instead of creating the release and
	// uploading assets.
	DryRun bool
	// APIURL is the GitHub API endpoint. If empty, DefaultAPIURL is used.
	APIURL string
	// HTTPClient is a HTTP client for making requests.
	HTTPClient *http.Client
}

// Release is a GitHub release.
type Release struct {
	ID         int64    `json:"id"`
	TagName    string   `json:"tag_name"`
	Name       string   `json:"name"`
	Body       string   `json:"body,omitempty"`
	Prerelease bool     `json:"prerelease"`
	HTMLURL    string   `json:"html_url,omitempty"`
	UploadURL  string   `json:"upload_url,omitempty"`
	Assets     []*Asset `json:"assets,omitempty"`
}

// Asset is a file attached to a GitHub release.
type Asset struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Size int64  `json:"size"`
}

func (r *Release) hasAsset(name string) bool {
	for _, a := range r.Assets {
		if a.Name == name {
			return true
		}
	}
	return false
}

// Publish verifies artifacts in the dist directory, finds or creates a
// release for the tag and uploads every artifact with the checksum file.
// Assets already attached to the release are skipped, so Publish can be
// retried after a partial failure.
func Publish(ctx context.Context, c *PublishConfig) (*Release, error) {
	if c.Repo == "" || !strings.Contains(c.Repo, "/") {
		return nil, fmt.Errorf("invalid repository %q, want owner/repo", c.Repo)
	}
	if c.Tag == "" {
		return nil, errors.New("tag is required")
	}
	if c.Token == "" && !c.DryRun {
		return nil, errors.New("GitHub token is required")
	}

	names, err := VerifyChecksums(c.Dir)
	if err != nil {
		return nil, err
	}
	names = append(names, ChecksumsFile)

	p := newPublisher(c)

	rel, err := p.find(ctx)
	if err != nil {
		return nil, err
	}
	if rel == nil {
		if c.DryRun {
			logger.Info(ctx, "would create release", slog.String("repo", c.Repo), slog.String("tag", c.Tag))
			rel = &Release{TagName: c.Tag}
		} else {
			rel, err = p.create(ctx)
			if err != nil {
				return nil, err
			}
			logger.Info(ctx, "created release", slog.String("tag", rel.TagName), slog.String("url", rel.HTMLURL))
		}
	}

	for _, name := range names {
		if rel.hasAsset(name) {
			logger.Info(ctx, "asset already uploaded, skipping", slog.String("name", name))
			continue
		}
		if c.DryRun {
			logger.Info(ctx, "would upload asset", slog.String("name", name))
			continue
		}
		asset, err := p.upload(ctx, rel, name)
		if err != nil {
			return nil, err
		}
		rel.Assets = append(rel.Assets, asset)
		logger.Info(ctx, "uploaded asset", slog.String("name", asset.Name), slog.Int64("size", asset.Size))
	}

	return rel, nil
}

// uploadTimeout bounds a single asset upload. Binaries are several megabytes
// and CI runners can be slow.
const uploadTimeout = 10 * time.Minute

type publisher struct {
	c        *PublishConfig
	api      string
	httpc    *http.Client
	uploadc  *http.Client
	scrubber *strings.Replacer
}

func newPublisher(c *PublishConfig) *publisher {
	p := &publisher{
		c:       c,
		api:     strings.TrimSuffix(c.APIURL, "/"),
		httpc:   c.HTTPClient,
		uploadc: c.HTTPClient,
	}
	if p.api == "" {
		p.api = DefaultAPIURL
	}
	if p.httpc == nil {
		p.httpc = request.DefaultClient
		p.uploadc = &http.Client{
			Transport: request.DefaultClient.Transport,
			Timeout:   uploadTimeout,
		}
	}
	if c.Token != "" {
		p.scrubber = strings.NewReplacer(c.Token, "[EXPUNGED]")
	}
	return p
}

func (p *publisher) headers() map[string]string {
	h := map[string]string{
		"Accept":               "application/vnd.github+json",
		"X-GitHub-Api-Version": "2022-11-28",
	}
	if p.c.Token != "" {
		h["Authorization"] = "Bearer " + p.c.Token
	}
	return h
}

// find returns the release for the tag, or nil if there is none yet. Draft
// releases are not visible through the tags endpoint, so the release list is
// searched instead.
func (p *publisher) find(ctx context.Context) (*Release, error) {
	rels, err := request.Make[[]*Release](ctx, request.Params{
		Method:     http.MethodGet,
		URL:        p.api + "/repos/" + p.c.Repo + "/releases?per_page=100",
		Headers:    p.headers(),
		HTTPClient: p.httpc,
		Scrubber:   p.scrubber,
	})
	if err != nil {
		return nil, fmt.Errorf("listing releases: %w", err)
	}
	for _, rel := range rels {
		if rel.TagName == p.c.Tag {
			return rel, nil
		}
	}
	return nil, nil
}

func (p *publisher) create(ctx context.Context) (*Release, error) {
	want := &Release{
		TagName:    p.c.Tag,
		Name:       p.c.Tag,
		Prerelease: p.c.Prerelease,
	}
	if p.c.Notes != nil {
		want.Body = p.c.Notes.Markdown
	}

	rel, err := request.Make[*Release](ctx, request.Params{
		Method:         http.MethodPost,
		URL:            p.api + "/repos/" + p.c.Repo + "/releases",
		Headers:        p.headers(),
		Body:           want,
		HTTPClient:     p.httpc,
		Scrubber:       p.scrubber,
		WantStatusCode: http.StatusCreated,
	})
	if err != nil {
		return nil, fmt.Errorf("creating release: %w", err)
	}
	return rel, nil
}

func (p *publisher) upload(ctx context.Context, rel *Release, name string) (*Asset, error) {
	if rel.UploadURL == "" {
		return nil, fmt.Errorf("release %s has no upload URL", rel.TagName)
	}
	// The upload URL is a URI template like ".../assets{?name,label}".
	base, _, _ := strings.Cut(rel.UploadURL, "{")

	b, err := os.ReadFile(filepath.Join(p.c.Dir, name))
	if err != nil {
		return nil, err
	}

	headers := p.headers()
	headers["Content-Type"] = "application/octet-stream"
	asset, err := request.Make[*Asset](ctx, request.Params{
		Method:         http.MethodPost,
		URL:            base + "?name=" + url.QueryEscape(name),
		Headers:        headers,
		Body:           b,
		HTTPClient:     p.uploadc,
		Scrubber:       p.scrubber,
		WantStatusCode: http.StatusCreated,
	})
	if err != nil {
		return nil, fmt.Errorf("uploading %s: %w", name, err)
	}
	return asset, nil
}
