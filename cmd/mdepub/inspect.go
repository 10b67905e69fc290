package main

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"os"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"mdepub/archive"
	"mdepub/state"
)

func inspectContainer(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)
	log := env.Log.Named("inspect")

	fname := cmd.Args().Get(0)
	if len(fname) == 0 {
		return errors.New("no EPUB file has been specified")
	}

	s, err := archive.Inspect(fname)
	if err != nil {
		return fmt.Errorf("unable to inspect %s: %w", fname, err)
	}

	for _, e := range s.Entries {
		method := "deflate"
		if e.Method == zip.Store {
			method = "store"
		}
		dd := ""
		if e.DataDescriptor {
			dd = " dd"
		}
		fmt.Fprintf(os.Stdout, "%10d %10d %-7s%s %s\n", e.Size, e.Compressed, method, dd, e.Name)
	}
	log.Info("Container inspected", zap.String("file", fname), zap.Int("entries", len(s.Entries)), zap.String("package", s.RootFile))

	if len(s.Problems) == 0 {
		return nil
	}
	for _, p := range s.Problems {
		log.Warn("Container problem", zap.String("problem", p))
	}
	return fmt.Errorf("%s has %d container problem(s)", fname, len(s.Problems))
}
