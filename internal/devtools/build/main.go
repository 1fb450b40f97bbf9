// © 2022 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"sync"

	"go.astrophena.name/base/cli"
	"go.astrophena.name/base/logger"
	"go.astrophena.name/figletctl/internal/devtools"
	"go.astrophena.name/figletctl/internal/release"

	"github.com/pterm/pterm"
)

func main() { cli.Main(new(app)) }

type app struct {
	targets string
	tag     string
	jobs    int
	watch   bool
}

func (a *app) Flags(fs *flag.FlagSet) {
	fs.StringVar(&a.targets, "targets", "", "Build only `targets` (like \"linux,darwin/arm64\" or \"tier<=2\").")
	fs.StringVar(&a.tag, "tag", "", "Include `version` in artifact names.")
	fs.IntVar(&a.jobs, "jobs", 0, "Run at most `n` builds at once (default is the number of CPUs).")
	fs.BoolVar(&a.watch, "watch", false, "Rebuild the host target on changes.")
}

func (a *app) Run(ctx context.Context) error {
	devtools.EnsureRoot()
	env := cli.GetEnv(ctx)

	if len(env.Args) > 0 {
		return fmt.Errorf("%w: build doesn't take arguments", cli.ErrInvalidArgs)
	}

	c, err := release.LoadConfig(devtools.ConfigFile)
	if err != nil {
		return err
	}

	if a.watch {
		return a.watchHost(ctx, c)
	}

	targets, err := c.Select(a.targets)
	if err != nil {
		return err
	}
	arts, err := release.Build(ctx, &release.BuildConfig{
		Config:  c,
		Version: a.tag,
		Targets: targets,
		Jobs:    a.jobs,
	})
	if err != nil {
		return err
	}
	return printSummary(env.Stdout, arts)
}

func (a *app) watchHost(ctx context.Context, c *release.Config) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	bc := &release.BuildConfig{
		Config:  c,
		Version: a.tag,
		Targets: []release.Target{hostTarget(c)},
		Jobs:    1,
	}

	var mu sync.Mutex
	rebuild := func() {
		mu.Lock()
		defer mu.Unlock()
		if _, err := release.Build(ctx, bc); err != nil {
			logger.Error(ctx, "build failed", slog.Any("err", err))
		}
	}
	rebuild()

	return release.Watch(ctx, ".", c.Dist, rebuild)
}

// hostTarget returns the target matching the running platform, keeping its
// tier if release.toml lists it.
func hostTarget(c *release.Config) release.Target {
	host := release.Target{OS: runtime.GOOS, Arch: runtime.GOARCH, Tier: release.Tier3}
	for _, t := range c.Targets {
		if t.OS == host.OS && t.Arch == host.Arch {
			return t
		}
	}
	return host
}

func printSummary(w io.Writer, arts []*release.Artifact) error {
	data := pterm.TableData{{"Target", "Tier", "Artifact", "Size", "SHA-256"}}
	var total int64
	for _, art := range arts {
		total += art.Size
		data = append(data, []string{
			art.Target.String(),
			tierColor(art.Target.Tier).Sprint(strconv.Itoa(int(art.Target.Tier))),
			art.Name(),
			formatSize(art.Size),
			art.SHA256[:12],
		})
	}
	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n\n%s %d artifacts, %s, checksums in %s\n",
		table,
		pterm.FgGreen.Sprint("Built"),
		len(arts),
		formatSize(total),
		release.ChecksumsFile,
	)
	return err
}

func tierColor(t release.Tier) pterm.Color {
	switch t {
	case release.Tier1:
		return pterm.FgGreen
	case release.Tier2:
		return pterm.FgYellow
	default:
		return pterm.FgGray
	}
}

func formatSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
