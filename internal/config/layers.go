package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// recognizedKeys maps INI keys (section [invoice_extract]) and the matching
// INVOICE_EXTRACT_* environment suffixes onto override setters. The
// same recognized key set drives both layers.
type keySpec struct {
	kind string // "string", "bool", "posint", "size"
	set  func(o *overrides, v string)
}

var recognizedKeys = map[string]keySpec{
	"gemini_api_key":          {"string", func(o *overrides, v string) { o.apiKey = &v }},
	"model":                   {"string", func(o *overrides, v string) { o.model = &v }},
	"locale":                  {"string", func(o *overrides, v string) { o.locale = &v }},
	"max_pages":               {"posint", nil},
	"ocr_mode":                {"string", func(o *overrides, v string) { o.ocrMode = &v }},
	"date_order":              {"string", func(o *overrides, v string) { o.dateOrder = &v }},
	"timeout_seconds":         {"posint", nil},
	"filename_separator":      {"string", func(o *overrides, v string) { o.filenameSeparator = &v }},
	"filename_date_separator": {"string", func(o *overrides, v string) { o.filenameDateSeparator = &v }},
	"filename_suffix":         {"string", func(o *overrides, v string) { o.filenameSuffix = &v }},
	"max_text_size":           {"size", func(o *overrides, v string) { o.maxTextSize = &v }},
	"format":                  {"string", func(o *overrides, v string) { o.format = &v }},
	"pretty":                  {"bool", nil},
	"debug":                   {"bool", nil},
	"dry_run":                 {"bool", nil},
	"rename":                  {"bool", nil},
}

// setTyped applies one recognized key to the layer, enforcing the
// strict bool/int/size token rules.
func setTyped(o *overrides, key, value, origin string) error {
	spec := recognizedKeys[key]
	switch spec.kind {
	case "bool":
		b, err := parseBool(value, origin)
		if err != nil {
			return err
		}
		switch key {
		case "pretty":
			o.pretty = &b
		case "debug":
			o.debug = &b
		case "dry_run":
			o.dryRun = &b
		case "rename":
			o.rename = &b
		}
	case "posint":
		n, err := parsePositiveInt(value, origin)
		if err != nil {
			return err
		}
		switch key {
		case "max_pages":
			o.maxPages = &n
		case "timeout_seconds":
			o.timeoutSeconds = &n
		}
	case "size":
		s, err := parseSize(value, origin)
		if err != nil {
			return err
		}
		spec.set(o, s)
	default:
		spec.set(o, value)
	}
	return nil
}

// readINI parses one config file with viper. A missing auto-discovered
// file is skipped; when the file was explicitly requested, every
// problem is a config error.
func readINI(path string, explicit bool) (*overrides, error) {
	info, err := os.Stat(path)
	if err != nil {
		if explicit {
			return nil, errorf("config file not found: %s", path)
		}
		return nil, nil
	}
	if info.IsDir() {
		return nil, errorf("config path is not a file: %s", path)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("ini")
	if err := v.ReadInConfig(); err != nil {
		return nil, &Error{Message: fmt.Sprintf("failed to parse config file %q", path), Err: err}
	}

	layer := &overrides{}
	for key := range recognizedKeys {
		full := iniSection + "." + key
		if !v.IsSet(full) {
			continue
		}
		if err := setTyped(layer, key, v.GetString(full), key); err != nil {
			return nil, err
		}
	}
	return layer, nil
}

// envOverrides reads every recognized INVOICE_EXTRACT_* variable.
func envOverrides() (*overrides, error) {
	layer := &overrides{}
	for key := range recognizedKeys {
		name := EnvPrefix + strings.ToUpper(key)
		value, ok := os.LookupEnv(name)
		if !ok {
			continue
		}
		if err := setTyped(layer, key, value, name); err != nil {
			return nil, err
		}
	}
	return layer, nil
}

// flagNames maps recognized keys onto the CLI flag spelling.
var flagNames = map[string]string{
	"gemini_api_key":          "api-key",
	"model":                   "model",
	"locale":                  "locale",
	"max_pages":               "max-pages",
	"ocr_mode":                "ocr-mode",
	"date_order":              "date-order",
	"timeout_seconds":         "timeout-seconds",
	"filename_separator":      "filename-separator",
	"filename_date_separator": "filename-date-separator",
	"filename_suffix":         "filename-suffix",
	"max_text_size":           "max-text-size",
	"format":                  "format",
	"pretty":                  "pretty",
	"debug":                   "debug",
	"dry_run":                 "dry-run",
	"rename":                  "rename",
}

// flagOverrides captures only the flags the user actually set; a flag
// left at its cobra default does not override lower layers.
func flagOverrides(flags *pflag.FlagSet) (*overrides, error) {
	layer := &overrides{}
	for key, flagName := range flagNames {
		flag := flags.Lookup(flagName)
		if flag == nil || !flags.Changed(flagName) {
			continue
		}
		if err := setTyped(layer, key, flag.Value.String(), "--"+flagName); err != nil {
			return nil, err
		}
	}
	return layer, nil
}
