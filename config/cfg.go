package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	TemplateFieldName string

	CoverConfig struct {
		Resize bool `yaml:"resize"`
		Width  int  `yaml:"width" validate:"min=600"`
		Height int  `yaml:"height" validate:"min=800"`
	}

	LinksConfig struct {
		Dangling LinkPolicy `yaml:"dangling" validate:"oneof=0 1"`
	}

	TOCPageConfig struct {
		Placement TOCPagePlacement `yaml:"placement" validate:"oneof=0 1 2"`
		Title     string           `yaml:"title" validate:"required_unless=Placement 0"`
	}

	DocumentConfig struct {
		EpubVersion           EpubVersion   `yaml:"epub_version" validate:"oneof=0 1"`
		FixZip                bool          `yaml:"fix_zip"`
		StylesheetPath        string        `yaml:"stylesheet_path" sanitize:"assure_file_access"`
		OutputNameTemplate    string        `yaml:"output_name_template"`
		FileNameTransliterate bool          `yaml:"file_name_transliterate"`
		Language              string        `yaml:"language" validate:"required,bcp47_language_tag"`
		Workers               int           `yaml:"workers" validate:"gte=0,lte=256"`
		SectionNumbers        bool          `yaml:"section_numbers"`
		CurlyQuotes           bool          `yaml:"curly_quotes"`
		Links                 LinksConfig   `yaml:"links"`
		TOCPage               TOCPageConfig `yaml:"toc_page"`
		Cover                 CoverConfig   `yaml:"cover"`
	}

	Config struct {
		Version   int            `yaml:"version" validate:"eq=1"`
		Document  DocumentConfig `yaml:"document"`
		Logging   LoggingConfig  `yaml:"logging"`
		Reporting ReporterConfig `yaml:"reporting"`
	}
)

const (
	// NOTE: must match yaml field name above
	OutputNameTemplateFieldName TemplateFieldName = "output_name_template"
)

var requiredOptions = append([]func(*gencfg.ProcessingOptions){},
	gencfg.WithDoNotExpandField(string(OutputNameTemplateFieldName)),
)

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	// We want to use only fields we defined so we cannot use yaml.Unmarshal
	// directly here
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if process {
		// sanitize and validate what has been loaded
		if err := gencfg.Sanitize(cfg); err != nil {
			return nil, fmt.Errorf("unable to sanitize configuration: %w", err)
		}
		if err := gencfg.Validate(cfg); err != nil {
			return nil, fmt.Errorf("unable to validate configuration: %w", err)
		}
	}
	return cfg, nil
}

// LoadConfiguration reads the configuration from the file at the given path,
// superimposes its values on top of expanded configuration template to provide
// sane defaults and performs validation.
func LoadConfiguration(path string, options ...func(*gencfg.ProcessingOptions)) (*Config, error) {
	haveFile := len(path) > 0

	data, err := gencfg.Process(ConfigTmpl, append(requiredOptions, options...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	cfg, err := unmarshalConfig(data, &Config{}, !haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	if !haveFile {
		return cfg, nil
	}

	// overwrite cfg values with values from the file
	data, err = os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err = unmarshalConfig(data, cfg, haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration file: %w", err)
	}
	return cfg, nil
}

// Prepare generates configuration file from template and returns it as a byte
// slice.
func Prepare() ([]byte, error) {
	return gencfg.Process(ConfigTmpl, requiredOptions...)
}

func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %v", err)
	}
	return data, nil
}

// EffectiveWorkers returns effective size of the chapter processing pool.
func (conf *DocumentConfig) EffectiveWorkers(cpus int) int {
	if conf.Workers > 0 {
		return conf.Workers
	}
	return max(cpus, 1)
}
