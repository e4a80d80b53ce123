// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package config loads and validates wiki-nlp settings from a YAML file,
// WIKI_NLP_* environment variables and defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/spf13/viper"

	"github.com/pdiddy/wiki-nlp/internal/model"
	"github.com/pdiddy/wiki-nlp/pkg/types"
)

const (
	// Name is the config file base name and the application directory name.
	Name      = "wiki-nlp"
	envPrefix = "WIKI_NLP"

	DefaultUserAgent = "wiki-nlp/0.1 (https://github.com/pdiddy/wiki-nlp)"
)

// Configure points v at file, or at wiki-nlp.yaml in the working directory
// and ~/.config/wiki-nlp/ when file is empty, enables WIKI_NLP_* overrides
// and registers defaults.
func Configure(v *viper.Viper, file string) {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(Name)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", Name))
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)
}

// SetDefaults registers the default value of every setting.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("http.timeout", 30*time.Second)
	v.SetDefault("http.user_agent", DefaultUserAgent)
	v.SetDefault("http.max_retries", 3)
	v.SetDefault("source.language", "en")
	v.SetDefault("source.search_limit", 10)
	v.SetDefault("source.base_url", "")
	v.SetDefault("model.name", "")
	v.SetDefault("model.cache_dir", defaultCacheDir())
	v.SetDefault("model.base_url", "")
	v.SetDefault("display.max_rows", 60)
	v.SetDefault("display.min_rows", 10)
	v.SetDefault("output.dir", ".")
	v.SetDefault("output.format", string(types.FormatCSV))
	v.SetDefault("store.path", "")
	v.SetDefault("log.level", "warn")
}

// Read loads the config file if one exists and returns its path. A missing
// file is not an error.
func Read(v *viper.Viper) (string, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return "", nil
		}
		return "", fmt.Errorf("reading config file: %w", err)
	}
	return v.ConfigFileUsed(), nil
}

// Load decodes v into a PipelineConfig and validates it. An empty model
// name resolves to the built-in model for the source language.
func Load(v *viper.Viper) (types.PipelineConfig, error) {
	var cfg types.PipelineConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("invalid configuration format: %w", err)
	}
	if cfg.Model.Name == "" {
		cfg.Model.Name = model.DefaultName(cfg.Source.Language)
	}
	if err := Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks cfg and returns one error naming every invalid field.
func Validate(cfg types.PipelineConfig) error {
	validate, trans, err := newValidator()
	if err != nil {
		return err
	}

	err = validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validating configuration: %w", err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, e.Translate(trans))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, ", "))
}

func newValidator() (*validator.Validate, ut.Translator, error) {
	validate := validator.New()

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, _ := uni.GetTranslator("en")
	if err := enTranslations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, nil, fmt.Errorf("registering default translations: %w", err)
	}

	// Report fields by their config key rather than the Go field name.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return validate, trans, nil
}

func defaultCacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, Name, "models")
	}
	return filepath.Join("."+Name, "models")
}
