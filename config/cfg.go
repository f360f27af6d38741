package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"

	"rtx/style"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	TemplateFieldName string

	FadeConfig struct {
		Enable     bool    `yaml:"enable"`
		Length     int     `yaml:"length" validate:"gte=0"`
		Multiplier float64 `yaml:"multiplier" validate:"gte=0,lte=1"`
	}

	RenderConfig struct {
		Format         OutputFmt   `yaml:"format" validate:"gte=0"`
		Width          int         `yaml:"width" validate:"gte=0"`
		SoftWrap       bool        `yaml:"soft_wrap"`
		Overflow       Overflow    `yaml:"overflow" validate:"gte=0"`
		MaxLines       int         `yaml:"max_lines" validate:"gte=0"`
		Density        float64     `yaml:"density" validate:"gt=0"`
		ContentColor   style.Color `yaml:"content_color"`
		Background     style.Color `yaml:"background"`
		StylesheetPath string      `yaml:"stylesheet_path" sanitize:"assure_file_access"`
		Fade           FadeConfig  `yaml:"fade"`
	}

	BadgeConfig struct {
		Size          int         `yaml:"size" validate:"min=1"`
		FontSize      int         `yaml:"font_size" validate:"min=1"`
		Background    style.Color `yaml:"background"`
		Foreground    style.Color `yaml:"foreground"`
		LabelTemplate string      `yaml:"label_template"`
	}

	ResourcesConfig struct {
		Scheme string      `yaml:"scheme" validate:"required,alpha"`
		Badges bool        `yaml:"badges"`
		Badge  BadgeConfig `yaml:"badge"`
	}

	Config struct {
		Version   int             `yaml:"version" validate:"eq=1"`
		Render    RenderConfig    `yaml:"render"`
		Resources ResourcesConfig `yaml:"resources"`
		Logging   LoggingConfig   `yaml:"logging"`
		Reporting ReporterConfig  `yaml:"reporting"`
	}
)

const (
	// NOTE: must match yaml field name above
	LabelTemplateFieldName TemplateFieldName = "label_template"
)

var requiredOptions = append([]func(*gencfg.ProcessingOptions){},
	gencfg.WithDoNotExpandField(string(LabelTemplateFieldName)),
)

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	// only fields we defined are allowed
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if process {
		if err := gencfg.Sanitize(cfg); err != nil {
			return nil, err
		}
		if err := gencfg.Validate(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// LoadConfiguration reads the configuration from the file at the given path,
// superimposes its values on top of expanded configuration template to
// provide sane defaults and performs validation.
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
		return nil, fmt.Errorf("failed to marshal config to yaml: %w", err)
	}
	return data, nil
}
