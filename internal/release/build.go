// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package release

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"go.astrophena.name/base/logger"

	"golang.org/x/sync/errgroup"
)

// BuildConfig represents a build of a set of targets.
type BuildConfig struct {
	// Config is the release configuration.
	Config *Config
	// Dir is the module root where go build runs. If empty, uses the current
	// directory.
	Dir string
	// Version is included in artifact names. May be empty.
	Version string
	// Targets to build. If empty, all targets from Config are built.
	Targets []Target
	// Jobs limits the number of concurrent builds. If zero, runtime.NumCPU()
	// is used.
	Jobs int
	// GoCmd is the go command to use. If empty, "go" from PATH is used.
	GoCmd string

	run func(*exec.Cmd) error // used in tests
}

// Artifact is a built executable.
type Artifact struct {
	Target Target
	// Path is the path to the executable.
	Path string
	// SHA256 is a hex-encoded SHA-256 checksum of the executable.
	SHA256 string
	// Size is the executable size in bytes.
	Size int64
}

// Name returns the artifact file name.
func (a *Artifact) Name() string { return filepath.Base(a.Path) }

// DistDir returns the absolute path of the directory where artifacts are
// placed.
func (c *BuildConfig) DistDir() (string, error) {
	return filepath.Abs(filepath.Join(c.Dir, c.Config.Dist))
}

// Build builds every target into a freshly created dist directory and writes
// a checksum file there. Artifacts are returned in target order. The first
// failed build cancels the rest.
func Build(ctx context.Context, c *BuildConfig) ([]*Artifact, error) {
	if c.Config == nil {
		return nil, fmt.Errorf("%w: no config", ErrInvalidConfig)
	}
	targets := c.Targets
	if len(targets) == 0 {
		targets = c.Config.Targets
	}
	jobs := c.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}

	dist, err := c.DistDir()
	if err != nil {
		return nil, err
	}
	// Clean up after previous build.
	if err := os.RemoveAll(dist); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dist, 0o755); err != nil {
		return nil, err
	}

	arts := make([]*Artifact, len(targets))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, t := range targets {
		g.Go(func() error {
			art, err := c.buildOne(gctx, dist, t)
			if err != nil {
				return err
			}
			arts[i] = art
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := WriteChecksums(dist, arts); err != nil {
		return nil, err
	}
	return arts, nil
}

func (c *BuildConfig) buildOne(ctx context.Context, dist string, t Target) (*Artifact, error) {
	out := filepath.Join(dist, ArtifactName(c.Config.Name, c.Version, t))

	gocmd := c.GoCmd
	if gocmd == "" {
		gocmd = "go"
	}
	args := []string{"build", "-trimpath"}
	if len(c.Config.LDFlags) > 0 {
		args = append(args, "-ldflags", strings.Join(c.Config.LDFlags, " "))
	}
	args = append(args, "-o", out, c.Config.Package)

	cmd := exec.CommandContext(ctx, gocmd, args...)
	cmd.Dir = c.Dir
	cmd.Env = append(os.Environ(), "GOOS="+t.OS, "GOARCH="+t.Arch, "CGO_ENABLED=0")
	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	run := c.run
	if run == nil {
		run = (*exec.Cmd).Run
	}
	logger.Info(ctx, "building", slog.String("target", t.String()))
	if err := run(cmd); err != nil {
		return nil, fmt.Errorf("building %s: %w\n%s", t, err, buf.String())
	}

	fi, err := os.Stat(out)
	if err != nil {
		return nil, fmt.Errorf("building %s: %w", t, err)
	}
	sum, err := Checksum(out)
	if err != nil {
		return nil, err
	}
	logger.Info(ctx, "built",
		slog.String("target", t.String()),
		slog.String("artifact", filepath.Base(out)),
		slog.Int64("size", fi.Size()),
	)

	return &Artifact{
		Target: t,
		Path:   out,
		SHA256: sum,
		Size:   fi.Size(),
	}, nil
}
