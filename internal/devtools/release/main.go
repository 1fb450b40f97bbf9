// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"go.astrophena.name/base/cli"
	"go.astrophena.name/base/logger"
	"go.astrophena.name/figletctl/internal/devtools"
	"go.astrophena.name/figletctl/internal/release"
)

func main() { cli.Main(new(app)) }

const changelogFile = "CHANGELOG.md"

type app struct {
	dryRun     bool
	prerelease bool
}

func (a *app) Flags(fs *flag.FlagSet) {
	fs.BoolVar(&a.dryRun, "n", false, "Only log what would be done.")
	fs.BoolVar(&a.prerelease, "prerelease", false, "Mark the release as a prerelease.")
}

func (a *app) Run(ctx context.Context) error {
	devtools.EnsureRoot()
	env := cli.GetEnv(ctx)

	if len(env.Args) != 1 {
		return fmt.Errorf("%w: want a tag", cli.ErrInvalidArgs)
	}
	tag := env.Args[0]

	repo := env.Getenv("GITHUB_REPOSITORY")
	token := env.Getenv("GITHUB_TOKEN")
	if repo == "" {
		return errors.New("GITHUB_REPOSITORY should be set")
	}
	if token == "" && !a.dryRun {
		return errors.New("GITHUB_TOKEN should be set")
	}

	c, err := release.LoadConfig(devtools.ConfigFile)
	if err != nil {
		return err
	}

	notes, err := a.notes(ctx, c, repo, tag)
	if err != nil {
		return err
	}

	rel, err := release.Publish(ctx, &release.PublishConfig{
		Repo:       repo,
		Tag:        tag,
		Token:      token,
		Dir:        c.Dist,
		Notes:      notes,
		Prerelease: a.prerelease || strings.Contains(tag, "-"),
		DryRun:     a.dryRun,
	})
	if err != nil {
		return err
	}
	logger.Info(ctx, "published release", slog.String("tag", rel.TagName), slog.Int("assets", len(rel.Assets)))
	return nil
}

// notes returns release notes for tag and writes the releases feed into the
// dist directory. A missing changelog or changelog section is not fatal: the
// release is published without notes.
func (a *app) notes(ctx context.Context, c *release.Config, repo, tag string) (*release.ReleaseNotes, error) {
	changelog, err := os.ReadFile(changelogFile)
	if errors.Is(err, os.ErrNotExist) {
		logger.Info(ctx, "no changelog, publishing without notes")
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	all, err := release.AllNotes(changelog)
	if err != nil {
		return nil, err
	}
	feed, err := release.Feed(all, &release.FeedConfig{
		Title:   c.Name + " releases",
		Author:  strings.Split(repo, "/")[0],
		RepoURL: "https://github.com/" + repo,
	})
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(filepath.Join(c.Dist, "releases.xml"), feed, 0o644); err != nil {
		return nil, err
	}

	notes, err := release.Notes(changelog, tag)
	if errors.Is(err, release.ErrNoNotes) {
		logger.Info(ctx, "no release notes in changelog", slog.String("tag", tag))
		return nil, nil
	}
	return notes, err
}
