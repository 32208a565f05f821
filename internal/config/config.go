// Package config resolves the effective configuration from five
// layered sources: built-in defaults, the base INI file, the local INI
// file, INVOICE_EXTRACT_* environment variables, and CLI flags, in
// ascending precedence. Each layer only overrides keys it actually
// sets.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
)

const (
	iniSection      = "invoice_extract"
	baseConfigFile  = "invoice-extract.ini"
	localConfigFile = "invoice-extract.local.ini"

	// EnvPrefix is the prefix of every recognized environment variable.
	EnvPrefix = "INVOICE_EXTRACT_"
)

// Error reports malformed or missing configuration. Fatal: nothing is
// extracted when configuration is invalid.
type Error struct {
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("config: %s: %v", e.Message, e.Err)
	}
	return "config: " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func errorf(format string, args ...any) *Error {
	return &Error{Message: fmt.Sprintf(format, args...)}
}

// Config is the effective configuration. Immutable once resolved;
// constructed exactly once per invocation.
type Config struct {
	ConfigPath string // last config file actually loaded, if any

	APIKey                string
	Model                 string `validate:"required"`
	Locale                string `validate:"required"`
	MaxPages              int    `validate:"gte=1"`
	OCRMode               string `validate:"oneof=auto text gemini"`
	DateOrder             string `validate:"oneof=locale dmy mdy"`
	Timeout               time.Duration
	FilenameSeparator     string `validate:"oneof=_ -"`
	FilenameDateSeparator string `validate:"oneof=- . _"`
	FilenameSuffix        string
	MaxTextBytes          int    `validate:"gte=0"`
	Format                string `validate:"oneof=json yaml"`
	Pretty                bool
	Debug                 bool
	DryRun                bool
	Rename                bool
}

// overrides is one partial layer. Nil fields do not override; absence
// is not overriding.
type overrides struct {
	apiKey                *string
	model                 *string
	locale                *string
	maxPages              *int
	ocrMode               *string
	dateOrder             *string
	timeoutSeconds        *int
	filenameSeparator     *string
	filenameDateSeparator *string
	filenameSuffix        *string
	maxTextSize           *string
	format                *string
	pretty                *bool
	debug                 *bool
	dryRun                *bool
	rename                *bool
}

func defaults() *Config {
	return &Config{
		Model:                 "gemini-2.0-flash",
		Locale:                "pl",
		MaxPages:              3,
		OCRMode:               "auto",
		DateOrder:             "locale",
		Timeout:               30 * time.Second,
		FilenameSeparator:     "_",
		FilenameDateSeparator: "-",
		MaxTextBytes:          60 * 1000,
		Format:                "json",
	}
}

// Resolve merges every layer into one validated Config. explicitPath
// is the --config flag value; when empty, INVOICE_EXTRACT_CONFIG and
// then the working-directory files are consulted.
func Resolve(flags *pflag.FlagSet, explicitPath string) (*Config, error) {
	cfg := defaults()

	paths, explicit, err := configPaths(explicitPath)
	if err != nil {
		return nil, err
	}
	for _, path := range paths {
		layer, err := readINI(path, explicit)
		if err != nil {
			return nil, err
		}
		if layer != nil {
			applyOverrides(cfg, layer)
			cfg.ConfigPath = path
		}
	}

	envLayer, err := envOverrides()
	if err != nil {
		return nil, err
	}
	applyOverrides(cfg, envLayer)

	if flags != nil {
		flagLayer, err := flagOverrides(flags)
		if err != nil {
			return nil, err
		}
		applyOverrides(cfg, flagLayer)
	}

	if err := finalize(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// configPaths returns the ordered config files to load and whether
// they were explicitly requested. An explicit path disables
// auto-discovery entirely.
func configPaths(explicitPath string) ([]string, bool, error) {
	if explicitPath != "" {
		return []string{explicitPath}, true, nil
	}
	if envPath := os.Getenv(EnvPrefix + "CONFIG"); envPath != "" {
		return []string{envPath}, true, nil
	}
	var paths []string
	for _, name := range []string{baseConfigFile, localConfigFile} {
		if info, err := os.Stat(name); err == nil && !info.IsDir() {
			paths = append(paths, name)
		}
	}
	return paths, false, nil
}

func applyOverrides(cfg *Config, o *overrides) {
	if o.apiKey != nil {
		cfg.APIKey = strings.TrimSpace(*o.apiKey)
	}
	if o.model != nil {
		cfg.Model = strings.TrimSpace(*o.model)
	}
	if o.locale != nil {
		cfg.Locale = strings.ToLower(strings.TrimSpace(*o.locale))
	}
	if o.maxPages != nil {
		cfg.MaxPages = *o.maxPages
	}
	if o.ocrMode != nil {
		cfg.OCRMode = strings.ToLower(strings.TrimSpace(*o.ocrMode))
	}
	if o.dateOrder != nil {
		cfg.DateOrder = strings.ToLower(strings.TrimSpace(*o.dateOrder))
	}
	if o.timeoutSeconds != nil {
		cfg.Timeout = time.Duration(*o.timeoutSeconds) * time.Second
	}
	if o.filenameSeparator != nil {
		cfg.FilenameSeparator = *o.filenameSeparator
	}
	if o.filenameDateSeparator != nil {
		cfg.FilenameDateSeparator = *o.filenameDateSeparator
	}
	if o.filenameSuffix != nil {
		cfg.FilenameSuffix = *o.filenameSuffix
	}
	if o.maxTextSize != nil {
		// parsed and validated by the layer readers
		bytes, _ := humanize.ParseBytes(*o.maxTextSize)
		cfg.MaxTextBytes = int(bytes)
	}
	if o.format != nil {
		cfg.Format = strings.ToLower(strings.TrimSpace(*o.format))
	}
	if o.pretty != nil {
		cfg.Pretty = *o.pretty
	}
	if o.debug != nil {
		cfg.Debug = *o.debug
	}
	if o.dryRun != nil {
		cfg.DryRun = *o.dryRun
	}
	if o.rename != nil {
		cfg.Rename = *o.rename
	}
}

func finalize(cfg *Config) error {
	sep, err := normalizeSeparator(cfg.FilenameSeparator)
	if err != nil {
		return err
	}
	cfg.FilenameSeparator = sep

	dateSep, err := normalizeDateSeparator(cfg.FilenameDateSeparator)
	if err != nil {
		return err
	}
	cfg.FilenameDateSeparator = dateSep
	cfg.FilenameSuffix = sanitizeSuffix(cfg.FilenameSuffix)

	if cfg.Timeout < time.Second {
		return errorf("timeout_seconds must be >= 1")
	}

	if err := validator.New().Struct(cfg); err != nil {
		var fields []string
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", strings.ToLower(fe.Field()), fe.Tag()))
			}
			return errorf("invalid configuration: %s", strings.Join(fields, ", "))
		}
		return &Error{Message: "invalid configuration", Err: err}
	}
	return nil
}

// parseBool accepts the fixed truthy/falsy token sets only.
func parseBool(value, field string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off":
		return false, nil
	}
	return false, errorf("invalid boolean for %s: %q", field, value)
}

func parsePositiveInt(value, field string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n < 1 {
		return 0, errorf("invalid positive integer for %s: %q", field, value)
	}
	return n, nil
}

func parseSize(value, field string) (string, error) {
	if _, err := humanize.ParseBytes(strings.TrimSpace(value)); err != nil {
		return "", errorf("invalid size for %s: %q", field, value)
	}
	return strings.TrimSpace(value), nil
}

func normalizeSeparator(value string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "underscore", "_":
		return "_", nil
	case "dash", "hyphen", "-":
		return "-", nil
	}
	return "", errorf("filename_separator must be one of: underscore, dash, _, -")
}

func normalizeDateSeparator(value string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "dash", "hyphen", "-":
		return "-", nil
	case "dot", ".":
		return ".", nil
	case "underscore", "_":
		return "_", nil
	}
	return "", errorf("filename_date_separator must be one of: dash, dot, underscore, -, ., _")
}

func sanitizeSuffix(value string) string {
	cleaned := strings.TrimSpace(value)
	cleaned = strings.ReplaceAll(cleaned, "/", "-")
	cleaned = strings.ReplaceAll(cleaned, "\\", "-")
	var b strings.Builder
	for _, r := range cleaned {
		if r >= ' ' && r != 0x7f {
			b.WriteRune(r)
		}
	}
	return b.String()
}
