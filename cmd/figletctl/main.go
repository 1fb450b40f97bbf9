// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"go.astrophena.name/base/cli"
	"go.astrophena.name/figletctl/internal/figlet"
)

func main() { cli.Main(new(app)) }

type app struct {
	opts      figlet.Options
	listFonts bool
}

func (a *app) Flags(fs *flag.FlagSet) {
	fs.StringVar(&a.opts.Font, "font", figlet.DefaultFont, "Render with the embedded font `name`.")
	fs.StringVar(&a.opts.FontFile, "font-file", "", "Render with the FIGlet font at `path`. Overrides -font.")
	fs.BoolVar(&a.opts.Strict, "strict", false, "Fail on characters outside of printable ASCII.")
	fs.StringVar(&a.opts.Color, "color", "", "Paint the output with the terminal color `name`.")
	fs.BoolVar(&a.listFonts, "list-fonts", false, "Print embedded font names and exit.")
}

func (a *app) Run(ctx context.Context) error {
	env := cli.GetEnv(ctx)
	return a.run(env.Args, env.Stdin, env.Stdout)
}

func (a *app) run(args []string, stdin io.Reader, stdout io.Writer) error {
	if a.listFonts {
		for _, font := range figlet.Fonts() {
			fmt.Fprintln(stdout, font)
		}
		return nil
	}

	if len(args) != 1 {
		return fmt.Errorf("%w: want exactly one message, got %d arguments", cli.ErrInvalidArgs, len(args))
	}
	msg := args[0]
	if msg == "-" {
		var err error
		msg, err = readMessage(stdin)
		if err != nil {
			return err
		}
	}

	return figlet.Write(stdout, msg, &a.opts)
}

// readMessage reads the whole of r as a message, dropping the final newline
// and replacing the rest with spaces.
func readMessage(r io.Reader) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("reading message: %w", err)
	}
	msg := strings.ReplaceAll(string(b), "\r\n", "\n")
	msg = strings.TrimSuffix(msg, "\n")
	return strings.ReplaceAll(msg, "\n", " "), nil
}
