package cli

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/spf13/pflag"
	"github.com/sznuper/browsertime/internal/config"
)

// flagName derives the command-line flag of a config key
// (snake_case → kebab-case).
func flagName(key string) string {
	return strings.ReplaceAll(key, "_", "-")
}

// registerOptionFlags adds a flag for every field in config.Options, bound
// to the matching field of opts. Names come from the yaml tag, shorthands
// from the short tag and help text from the usage tag. Defaults are shown
// from config.Defaults.
func registerOptionFlags(fs *pflag.FlagSet, opts *config.Options) {
	defaults := reflect.ValueOf(config.Defaults())
	t := reflect.TypeOf(*opts)
	v := reflect.ValueOf(opts).Elem()

	for i := range t.NumField() {
		field := t.Field(i)
		name := flagName(config.Key(field))
		short := field.Tag.Get("short")
		usage := field.Tag.Get("usage")
		ptr := v.Field(i).Addr().Interface()

		switch p := ptr.(type) {
		case *int:
			fs.IntVarP(p, name, short, int(defaults.Field(i).Int()), usage)
		case *string:
			fs.StringVarP(p, name, short, defaults.Field(i).String(), usage)
		case *bool:
			fs.BoolVarP(p, name, short, defaults.Field(i).Bool(), usage)
		case *[]string:
			fs.StringArrayVarP(p, name, short, nil, usage)
		default:
			panic(fmt.Sprintf("cli: option %s has unsupported type %s", field.Name, field.Type))
		}
	}
}

// changedOptions returns the config keys of every option flag the user
// explicitly set.
func changedOptions(fs *pflag.FlagSet) map[string]bool {
	changed := make(map[string]bool)
	fs.Visit(func(f *pflag.Flag) {
		key := strings.ReplaceAll(f.Name, "-", "_")
		if config.IsKey(key) {
			changed[key] = true
		}
	})
	return changed
}
