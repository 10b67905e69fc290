// Package convert drives book loading and EPUB generation for the build
// command.
package convert

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"mdepub/book"
	"mdepub/config"
	"mdepub/convert/epub"
	"mdepub/markup"
	"mdepub/state"
)

//go:embed default.css
var defaultStylesheet []byte

// replaced in tests
var stdin io.Reader = os.Stdin

// standalone books are written here when destination is not given
var standaloneDestination = filepath.Join("book", "epub")

// Run is build command action. In standalone mode book is read from ROOT,
// otherwise mdBook render context is expected on stdin.
func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("convert")

	env.Standalone, env.Overwrite = cmd.Bool("standalone"), cmd.Bool("overwrite")

	env.DefaultStyle = defaultStylesheet
	if env.Cfg.Document.StylesheetPath != "" {
		data, err := os.ReadFile(env.Cfg.Document.StylesheetPath)
		if err != nil {
			return fmt.Errorf("unable to read style css from %q: %w", env.Cfg.Document.StylesheetPath, err)
		}
		env.DefaultStyle = data
	}

	root := cmd.Args().Get(0)
	if env.Standalone && len(root) == 0 {
		if root, err = os.Getwd(); err != nil {
			return fmt.Errorf("unable to get working directory: %w", err)
		}
	}
	dst := cmd.Args().Get(1)
	if !env.Standalone && len(root) > 0 {
		log.Warn("Book root is taken from render context, ignoring arguments", zap.Strings("ignoring", cmd.Args().Slice()))
		root, dst = "", ""
	}
	if cmd.Args().Len() > 2 {
		log.Warn("Malformed command line, too many arguments", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}

	log.Info("Processing starting", zap.Bool("standalone", env.Standalone), zap.String("root", root), zap.String("destination", dst))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	return process(ctx, root, dst, log)
}

// process handles the core build logic independently of CLI framework. Empty
// root means book comes from render context.
func process(ctx context.Context, root, dst string, log *zap.Logger) error {
	env := state.EnvFromContext(ctx)

	var (
		cfg *book.Config
		rc  *book.RenderContext
		err error
	)
	if len(root) > 0 {
		if cfg, err = book.LoadConfig(root); err != nil {
			return err
		}
	} else {
		if rc, err = book.ReadRenderContext(stdin); err != nil {
			return err
		}
		cfg = rc.Configuration()
	}

	// book settings win over program configuration, copy keeps the latter
	// intact for the debug report
	doc := env.Cfg.Document
	if err := cfg.Apply(&doc); err != nil {
		return fmt.Errorf("unable to apply %s: %w", book.ConfigFileName, err)
	}

	conv := markup.New(markup.Options{CurlyQuotes: doc.CurlyQuotes})
	var b *book.Book
	if rc != nil {
		b, err = rc.Load(cfg, conv, log.Named("book"))
	} else {
		b, err = book.Load(cfg, conv, log.Named("book"))
	}
	if err != nil {
		return fmt.Errorf("unable to load book: %w", err)
	}

	switch {
	case len(dst) > 0:
	case len(b.Destination) > 0:
		dst = b.Destination
	default:
		dst = filepath.Join(cfg.Root, standaloneDestination)
	}
	if dst, err = filepath.Abs(dst); err != nil {
		return err
	}

	return processBook(ctx, b, &doc, dst, log)
}

// processBook writes single EPUB for loaded book into "dst" directory.
func processBook(ctx context.Context, b *book.Book, doc *config.DocumentConfig, dst string, log *zap.Logger) (rerr error) {
	env := state.EnvFromContext(ctx)

	outputName := buildOutputPath(b.Config, dst, doc, log)

	log.Info("Conversion starting", zap.String("from", b.Config.SrcDir()))
	defer func(start time.Time) {
		if rerr == nil {
			log.Info("Conversion completed", zap.Duration("elapsed", time.Since(start)), zap.String("to", outputName))
		}
	}(time.Now())

	// Check if output file already exists, it is replaced atomically so
	// nothing is removed here
	if _, err := os.Stat(outputName); err == nil {
		if !env.Overwrite {
			return fmt.Errorf("output file already exists: %s", outputName)
		}
		log.Warn("Overwriting existing file", zap.String("file", outputName))
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}

	if err := epub.Generate(ctx, b, outputName, doc, log); err != nil {
		return fmt.Errorf("unable to generate output: %w", err)
	}

	// Store conversion result for debugging
	if env.Rpt != nil {
		env.Rpt.Store("result"+outputExt, outputName)
	}
	return nil
}
