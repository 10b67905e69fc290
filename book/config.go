package book

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"mdepub/config"
)

const (
	ConfigFileName = "book.toml"
	defaultSrcDir  = "src"
)

// EpubConfig is [output.epub] table of book.toml. Unset fields leave program
// configuration as is.
type EpubConfig struct {
	Identifier          string   `toml:"identifier" json:"identifier"`
	CoverImage          string   `toml:"cover-image" json:"cover-image"`
	AdditionalCSS       []string `toml:"additional-css" json:"additional-css"`
	AdditionalResources []string `toml:"additional-resources" json:"additional-resources"`
	UseDefaultCSS       *bool    `toml:"use-default-css" json:"use-default-css"`
	EpubVersion         int      `toml:"epub-version" json:"epub-version"`
	TOCPage             string   `toml:"toc-page" json:"toc-page"`
	SectionNumbers      *bool    `toml:"section-numbers" json:"section-numbers"`
	CurlyQuotes         *bool    `toml:"curly-quotes" json:"curly-quotes"`
}

// Config describes the book as a whole.
type Config struct {
	Title       string   `toml:"title" json:"title"`
	Authors     []string `toml:"authors" json:"authors"`
	Description string   `toml:"description" json:"description"`
	Language    string   `toml:"language" json:"language"`
	Src         string   `toml:"src" json:"src"`

	Epub EpubConfig `toml:"-" json:"-"`

	// Root is absolute book root directory, it is not part of book.toml
	Root string `toml:"-" json:"-"`
}

type configFile struct {
	Book   Config `toml:"book" json:"book"`
	Output struct {
		Epub EpubConfig `toml:"epub" json:"epub"`
	} `toml:"output" json:"output"`
}

func (f *configFile) config(root string) *Config {
	cfg := f.Book
	cfg.Epub = f.Output.Epub
	cfg.Root = root
	if len(cfg.Src) == 0 {
		cfg.Src = defaultSrcDir
	}
	return &cfg
}

// LoadConfig reads book.toml from book root. Missing file is not an error,
// mdBook treats such directory as a book with defaults.
func LoadConfig(root string) (*Config, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	var f configFile
	data, err := os.ReadFile(filepath.Join(root, ConfigFileName))
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("unable to read book configuration: %w", err)
	default:
		if _, err := toml.Decode(string(data), &f); err != nil {
			return nil, fmt.Errorf("unable to parse %s: %w", ConfigFileName, err)
		}
	}
	return f.config(root), nil
}

// SrcDir returns absolute location of the book sources.
func (c *Config) SrcDir() string {
	if filepath.IsAbs(c.Src) {
		return c.Src
	}
	return filepath.Join(c.Root, c.Src)
}

// Apply superimposes book level settings on top of program configuration.
func (c *Config) Apply(doc *config.DocumentConfig) error {
	switch c.Epub.EpubVersion {
	case 0:
	case 2:
		doc.EpubVersion = config.EpubVersionEpub2
	case 3:
		doc.EpubVersion = config.EpubVersionEpub3
	default:
		return fmt.Errorf("unsupported epub-version %d", c.Epub.EpubVersion)
	}
	if len(c.Epub.TOCPage) > 0 {
		p, err := config.ParseTOCPagePlacement(c.Epub.TOCPage)
		if err != nil {
			return fmt.Errorf("unable to use toc-page: %w", err)
		}
		doc.TOCPage.Placement = p
	}
	if c.Epub.SectionNumbers != nil {
		doc.SectionNumbers = *c.Epub.SectionNumbers
	}
	if c.Epub.CurlyQuotes != nil {
		doc.CurlyQuotes = *c.Epub.CurlyQuotes
	}
	if len(c.Language) == 0 {
		c.Language = doc.Language
	}
	return nil
}

// UseDefaultCSS reports if built-in stylesheet goes into the package.
func (c *Config) UseDefaultCSS() bool {
	return c.Epub.UseDefaultCSS == nil || *c.Epub.UseDefaultCSS
}
