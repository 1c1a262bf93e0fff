package config

import (
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/a8m/envsubst"
	"github.com/goccy/go-yaml"
)

// Options is the run configuration. The yaml tag names the config file key;
// the same name in kebab-case is the command-line flag.
type Options struct {
	Iterations   int      `yaml:"iterations" short:"n" usage:"number of times to load the page" validate:"min=1"`
	Timeout      int      `yaml:"timeout" short:"t" usage:"page load timeout in seconds" validate:"min=1"`
	Browser      string   `yaml:"browser" short:"b" usage:"browser to time: firefox, chrome, edge or safari" validate:"oneof=firefox chrome edge safari"`
	WebDriverURL string   `yaml:"webdriver_url" usage:"WebDriver endpoint" validate:"required,url"`
	Output       string   `yaml:"output" short:"o" usage:"write the report to this file instead of stdout"`
	Format       string   `yaml:"format" short:"f" usage:"report format: json, yaml or template" validate:"oneof=json yaml template"`
	Template     string   `yaml:"template" usage:"Go template for --format template" validate:"required_if=Format template"`
	Pretty       bool     `yaml:"pretty" short:"p" usage:"indent the report"`
	Raw          bool     `yaml:"raw" short:"r" usage:"include every iteration in the report"`
	UserAgent    string   `yaml:"user_agent" short:"u" usage:"override the browser user agent"`
	WindowSize   string   `yaml:"window_size" short:"w" usage:"browser window size as WIDTHxHEIGHT" validate:"omitempty,windowsize"`
	Headless     bool     `yaml:"headless" usage:"run the browser without a window"`
	Notify       []string `yaml:"notify" usage:"send a summary to this shoutrrr URL (repeatable)" validate:"dive,required"`
}

// Defaults returns the options used when neither the config file nor the
// command line sets a value.
func Defaults() Options {
	return Options{
		Iterations:   3,
		Timeout:      60,
		Browser:      "firefox",
		WebDriverURL: "http://localhost:4444",
		Format:       "json",
	}
}

// Load reads a YAML config file, expanding ${VAR} references, and overlays
// the keys it sets onto base.
func Load(path string, base Options) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("reading config: %w", err)
	}

	data, err = envsubst.Bytes(data)
	if err != nil {
		return base, fmt.Errorf("expanding env vars: %w", err)
	}

	var present map[string]any
	if err := yaml.Unmarshal(data, &present); err != nil {
		return base, fmt.Errorf("parsing config: %w", err)
	}
	for key := range present {
		if !IsKey(key) {
			return base, fmt.Errorf("parsing config: unknown key %q", key)
		}
	}

	var file Options
	if err := yaml.Unmarshal(data, &file); err != nil {
		return base, fmt.Errorf("parsing config: %w", err)
	}

	Overlay(&base, file, func(key string) bool {
		_, ok := present[key]
		return ok
	})
	return base, nil
}

// Key returns the config file key of an Options field.
func Key(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
	return name
}

// IsKey reports whether key names an Options field.
func IsKey(key string) bool {
	t := reflect.TypeOf(Options{})
	for i := range t.NumField() {
		if Key(t.Field(i)) == key {
			return true
		}
	}
	return false
}

// Overlay copies every field of src whose key satisfies set onto dst.
func Overlay(dst *Options, src Options, set func(key string) bool) {
	t := reflect.TypeOf(src)
	from := reflect.ValueOf(src)
	to := reflect.ValueOf(dst).Elem()
	for i := range t.NumField() {
		if set(Key(t.Field(i))) {
			to.Field(i).Set(from.Field(i))
		}
	}
}
