package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every key when read from the environment,
// e.g. NFRSCOPE_QUANTILE.
const EnvPrefix = "NFRSCOPE"

// Global configuration structure.
type Global struct {
	// Dataset columns
	TextColumn    string `mapstructure:"text_column" yaml:"text_column" validate:"required"`
	ClassColumn   string `mapstructure:"class_column" yaml:"class_column" validate:"required"`
	ProjectColumn string `mapstructure:"project_column" yaml:"project_column"`
	Delimiter     string `mapstructure:"delimiter" yaml:"delimiter" validate:"delimiter"`
	SheetName     string `mapstructure:"sheet_name" yaml:"sheet_name"`
	SheetIndex    int    `mapstructure:"sheet_index" yaml:"sheet_index" validate:"gte=1"`
	StrictLabels  bool   `mapstructure:"strict_labels" yaml:"strict_labels"`

	// Analysis
	Quantile       float64 `mapstructure:"quantile" yaml:"quantile" validate:"gt=0,lt=1"`
	WaffleColumns  int     `mapstructure:"waffle_columns" yaml:"waffle_columns" validate:"gte=1,lte=500"`
	HistogramBins  int     `mapstructure:"histogram_bins" yaml:"histogram_bins" validate:"gte=0,lte=500"`
	BarWidth       int     `mapstructure:"bar_width" yaml:"bar_width" validate:"gte=10,lte=200"`
	Sort           string  `mapstructure:"sort" yaml:"sort" validate:"oneof=count label"`
	DetectLanguage bool    `mapstructure:"detect_language" yaml:"detect_language"`

	// Output
	Format string `mapstructure:"format" yaml:"format" validate:"oneof=markdown md json yaml yml"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// "," cannot appear inside a oneof tag, so delimiters get their own rule.
	_ = v.RegisterValidation("delimiter", func(fl validator.FieldLevel) bool {
		switch fl.Field().String() {
		case "", ",", ";", "|", "tab", "\t", `\t`:
			return true
		}
		return false
	})
	return v
}

// Validate checks field constraints declared in struct tags.
func (c *Global) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("text_column", "RequirementText")
	v.SetDefault("class_column", "class")
	v.SetDefault("project_column", "ProjectID")
	v.SetDefault("delimiter", "")
	v.SetDefault("sheet_name", "")
	v.SetDefault("sheet_index", 1)
	v.SetDefault("strict_labels", false)
	v.SetDefault("quantile", 0.95)
	v.SetDefault("waffle_columns", 60)
	v.SetDefault("histogram_bins", 0)
	v.SetDefault("bar_width", 50)
	v.SetDefault("sort", "count")
	v.SetDefault("detect_language", false)
	v.SetDefault("format", "markdown")
}

// Dir returns ~/.nfrscope.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".nfrscope"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.nfrscope/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	path := cfgFile
	if path == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env (including a local .env) > config file > defaults.
// Command flags are applied on top by the caller.
func Load(cfgFile string) (*Global, error) {
	// .env is optional; values already set in the environment win.
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// optional read
		_ = v.ReadInConfig()
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Keys lists the settable configuration keys in sorted order.
func Keys() []string {
	out := make([]string, 0, len(setters))
	for k := range setters {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

var setters = map[string]func(c *Global, val string) error{
	"text_column":    func(c *Global, v string) error { c.TextColumn = v; return nil },
	"class_column":   func(c *Global, v string) error { c.ClassColumn = v; return nil },
	"project_column": func(c *Global, v string) error { c.ProjectColumn = v; return nil },
	"delimiter":      func(c *Global, v string) error { c.Delimiter = v; return nil },
	"sheet_name":     func(c *Global, v string) error { c.SheetName = v; return nil },
	"sheet_index":    intSetter(func(c *Global) *int { return &c.SheetIndex }),
	"strict_labels":  boolSetter(func(c *Global) *bool { return &c.StrictLabels }),
	"quantile": func(c *Global, v string) error {
		q, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("quantile must be a number: %w", err)
		}
		c.Quantile = q
		return nil
	},
	"waffle_columns":  intSetter(func(c *Global) *int { return &c.WaffleColumns }),
	"histogram_bins":  intSetter(func(c *Global) *int { return &c.HistogramBins }),
	"bar_width":       intSetter(func(c *Global) *int { return &c.BarWidth }),
	"sort":            func(c *Global, v string) error { c.Sort = strings.ToLower(v); return nil },
	"detect_language": boolSetter(func(c *Global) *bool { return &c.DetectLanguage }),
	"format":          func(c *Global, v string) error { c.Format = strings.ToLower(v); return nil },
}

func intSetter(field func(*Global) *int) func(*Global, string) error {
	return func(c *Global, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("expected integer: %w", err)
		}
		*field(c) = n
		return nil
	}
}

func boolSetter(field func(*Global) *bool) func(*Global, string) error {
	return func(c *Global, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("expected true|false: %w", err)
		}
		*field(c) = b
		return nil
	}
}

// Set assigns a single key from its string form and re-validates.
func (c *Global) Set(key, val string) error {
	set, ok := setters[strings.ToLower(strings.TrimSpace(key))]
	if !ok {
		return fmt.Errorf("unknown config key %q (known: %s)", key, strings.Join(Keys(), ", "))
	}
	if err := set(c, strings.TrimSpace(val)); err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	return c.Validate()
}
