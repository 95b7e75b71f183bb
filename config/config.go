// Package config loads the TOML configuration shared by the postag commands.
package config

import (
	"io"
	"strings"

	"fortio.org/safecast"
	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"

	"github.com/teatak/postag/corpus"
	"github.com/teatak/postag/sequence"
	"github.com/teatak/postag/tagger"
	"github.com/teatak/postag/tagset"
)

// Config is the full configuration file.
type Config struct {
	Model  ModelConfig  `toml:"model"`
	Tagger TaggerConfig `toml:"tagger"`
	Corpus CorpusConfig `toml:"corpus"`
	Eval   EvalConfig   `toml:"eval"`
	Server ServerConfig `toml:"server"`
}

// ModelConfig locates the model: either one bundle or three text files.
type ModelConfig struct {
	Bundle  string `toml:"bundle"`
	Tags    string `toml:"tags"`
	Dict    string `toml:"dict"`
	Weights string `toml:"weights"`
}

type TaggerConfig struct {
	Language           string `toml:"language"`
	LearnClosedTags    bool   `toml:"learn_closed_tags"`
	ClosedTagThreshold int    `toml:"closed_tag_threshold"`
	ExpansionRules     string `toml:"expansion_rules"`
	RareThreshold      int    `toml:"rare_threshold"`
	MaxWindowProduct   int64  `toml:"max_window_product"`
	ReuseTags          bool   `toml:"reuse_tags"`
	Lowercase          bool   `toml:"lowercase"`
}

type CorpusConfig struct {
	TagSeparator string `toml:"tag_separator"`
	Format       string `toml:"format"`
	WordColumn   int    `toml:"word_column"`
	TagColumn    int    `toml:"tag_column"`
}

type EvalConfig struct {
	Threads     int    `toml:"threads"`
	Verbose     bool   `toml:"verbose"`
	DebugPrefix string `toml:"debug_prefix"`
	Confusion   bool   `toml:"confusion"`
}

type ServerConfig struct {
	Addr      string `toml:"addr"`
	AccessLog string `toml:"access_log"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Model: ModelConfig{Bundle: "postag.model"},
		Tagger: TaggerConfig{
			Language:           "english",
			ClosedTagThreshold: 40,
			RareThreshold:      tagger.DefaultRareThreshold,
			MaxWindowProduct:   sequence.DefaultMaxWindowProduct,
		},
		Corpus: CorpusConfig{
			TagSeparator: corpus.DefaultTagSeparator,
			Format:       "TEXT",
			WordColumn:   0,
			TagColumn:    1,
		},
		Eval:   EvalConfig{Threads: 1},
		Server: ServerConfig{Addr: ":8080", AccessLog: "access.log"},
	}
}

// Load reads path over the defaults and validates the result. Unknown keys
// are an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, errors.Wrapf(err, "%s: failed to parse TOML", path)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	// A bundle set explicitly wins over the default, text files over both.
	if meta.IsDefined("model", "tags") && !meta.IsDefined("model", "bundle") {
		cfg.Model.Bundle = ""
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "%s", path)
	}
	return cfg, nil
}

// Validate checks value ranges and cross-field constraints.
func (c *Config) Validate() error {
	if c.Model.Bundle == "" && (c.Model.Tags == "" || c.Model.Dict == "" || c.Model.Weights == "") {
		return errors.New("[model] needs either bundle or all of tags, dict and weights")
	}
	if _, err := tagset.New(c.Tagger.Language); err != nil {
		return errors.Wrap(err, "[tagger].language")
	}
	if c.Tagger.RareThreshold < 0 {
		return errors.Errorf("[tagger].rare_threshold must not be negative, got %d", c.Tagger.RareThreshold)
	}
	if c.Tagger.ClosedTagThreshold < 0 {
		return errors.Errorf("[tagger].closed_tag_threshold must not be negative, got %d", c.Tagger.ClosedTagThreshold)
	}
	if _, err := c.MaxWindowProduct(); err != nil {
		return err
	}
	if _, err := c.Record(""); err != nil {
		return err
	}
	if c.Eval.Threads < 0 {
		return errors.Errorf("[eval].threads must not be negative, got %d", c.Eval.Threads)
	}
	return nil
}

// MaxWindowProduct returns the window product ceiling as an int.
func (c *Config) MaxWindowProduct() (int, error) {
	n, err := safecast.Conv[int](c.Tagger.MaxWindowProduct)
	if err != nil {
		return 0, errors.Wrap(err, "[tagger].max_window_product")
	}
	return n, nil
}

// Record returns the corpus record settings for path.
func (c *Config) Record(path string) (corpus.Record, error) {
	format, err := corpus.ParseFormat(c.Corpus.Format)
	if err != nil {
		return corpus.Record{}, errors.Wrap(err, "[corpus].format")
	}
	if c.Corpus.TagSeparator == "" {
		return corpus.Record{}, errors.New("[corpus].tag_separator must not be empty")
	}
	if c.Corpus.WordColumn < 0 || c.Corpus.TagColumn < 0 {
		return corpus.Record{}, errors.New("[corpus] columns must not be negative")
	}
	return corpus.Record{
		Path:         path,
		Format:       format,
		TagSeparator: c.Corpus.TagSeparator,
		WordColumn:   c.Corpus.WordColumn,
		TagColumn:    c.Corpus.TagColumn,
	}, nil
}

// OpenTagger loads the configured model and applies the [tagger] settings.
func (c *Config) OpenTagger() (*tagger.Tagger, error) {
	ceiling, err := c.MaxWindowProduct()
	if err != nil {
		return nil, err
	}
	opts := []tagger.Option{
		tagger.WithFinder(sequence.NewExactFinder(sequence.WithMaxWindowProduct(ceiling))),
	}
	if c.Tagger.ExpansionRules != "" {
		rules, err := tagset.LoadExpansionRules(c.Tagger.ExpansionRules)
		if err != nil {
			return nil, err
		}
		opts = append(opts, tagger.WithExpansionRules(rules))
	}
	if c.Tagger.Lowercase {
		opts = append(opts, tagger.WithWordFunction(strings.ToLower))
	}

	if c.Model.Bundle != "" {
		// The bundle carries its own rare threshold.
		return tagger.LoadBundle(c.Model.Bundle, opts...)
	}
	opts = append(opts, tagger.WithRareThreshold(c.Tagger.RareThreshold))
	return tagger.LoadText(c.Model.Tags, c.Model.Dict, c.Model.Weights, c.Tagger.Language, opts...)
}

// Write encodes c as TOML.
func (c *Config) Write(w io.Writer) error {
	return errors.Wrap(toml.NewEncoder(w).Encode(c), "failed to encode config")
}
