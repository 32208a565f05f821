// Package commands implements the CLI command for invoice-extract.
package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/jwozniak/invoice-extract/internal/config"
	"github.com/jwozniak/invoice-extract/internal/extract"
	"github.com/jwozniak/invoice-extract/internal/gemini"
	"github.com/jwozniak/invoice-extract/internal/ingest"
	"github.com/jwozniak/invoice-extract/internal/logger"
	"github.com/jwozniak/invoice-extract/internal/output"
	"github.com/jwozniak/invoice-extract/internal/version"
)

// Exit codes form part of the CLI contract.
const (
	exitOK       = 0
	exitBadInput = 2
	exitPDF      = 3
	exitAPI      = 4
	exitInternal = 10
)

var rootCmd = &cobra.Command{
	Use:   "invoice-extract [pdf]",
	Short: "Extract a structured record from a single invoice PDF",
	Long: `invoice-extract reads one invoice PDF and produces a small structured
record: the invoice date, a short item description and a rename-safe
filename stub. Direct text extraction is preferred; pages are sent to
Gemini vision when the embedded text is unusable.

Examples:
  # Extract and print the result as JSON
  invoice-extract faktura.pdf

  # Force vision extraction in English with a tighter page limit
  invoice-extract faktura.pdf --ocr-mode gemini --locale en --max-pages 2

  # Rename the file in place using the derived stub
  invoice-extract faktura.pdf --rename

  # Inspect the model catalog
  invoice-extract --list-models --model-filter flash`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	flags := rootCmd.Flags()

	flags.String("config", "", "path to INI config file (default: ./invoice-extract.ini, or INVOICE_EXTRACT_CONFIG)")
	flags.String("api-key", "", "Gemini API key (or INVOICE_EXTRACT_GEMINI_API_KEY)")
	flags.StringP("model", "m", "gemini-2.0-flash", "Gemini model name")
	flags.StringP("locale", "l", "pl", "preferred language for the short description")
	flags.Int("max-pages", 3, "maximum number of pages to inspect")
	flags.String("ocr-mode", "auto", "extraction policy: auto, text, gemini")
	flags.String("date-order", "locale", "ambiguous numeric date resolution: locale, dmy, mdy")
	flags.Int("timeout-seconds", 30, "Gemini request timeout in seconds")
	flags.String("filename-separator", "_", "stub separator: underscore, dash")
	flags.String("filename-date-separator", "-", "stub date separator: dash, dot, underscore")
	flags.String("filename-suffix", "", "optional stub suffix")
	flags.String("max-text-size", "60kB", "embedded text clip limit (e.g. 60kB, 1MB)")
	flags.String("format", "json", "output format: json, yaml")
	flags.Bool("pretty", false, "pretty-print JSON output")
	flags.Bool("debug", false, "emit diagnostics to stderr")
	flags.Bool("dry-run", false, "log the rename plan without touching the file")
	flags.Bool("rename", false, "rename the source file to the derived stub")

	flags.Bool("list-models", false, "list available Gemini models and token limits, then exit")
	flags.Bool("all-models", false, "include non-Gemini models with --list-models")
	flags.String("model-filter", "", "substring filter for --list-models")

	rootCmd.Version = version.String()
}

// Execute runs the root command and maps failures onto the exit-code
// contract.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		code := exitCodeFor(err)
		emitError(err, code)
		return code
	}
	return exitOK
}

func exitCodeFor(err error) int {
	var cfgErr *config.Error
	var extErr *extract.Error
	var ingestErr *ingest.Error
	var catErr *gemini.CatalogError
	switch {
	case errors.As(err, &cfgErr):
		return exitBadInput
	case errors.As(err, &extErr):
		if extErr.Kind == extract.KindTextUnusable {
			return exitPDF
		}
		return exitAPI
	case errors.As(err, &ingestErr):
		return exitPDF
	case errors.As(err, &catErr):
		return exitAPI
	case errors.Is(err, errBadInput):
		return exitBadInput
	}
	return exitInternal
}

var errBadInput = errors.New("bad input")

func badInput(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{errBadInput}, args...)...)
}

// emitError writes a JSON error object to stderr, keeping stdout
// reserved for results.
func emitError(err error, code int) {
	payload := map[string]any{"error": err.Error(), "exit_code": code}
	out, _ := json.Marshal(payload)
	fmt.Fprintln(os.Stderr, string(out))
}

func run(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()

	explicitConfig, _ := flags.GetString("config")
	cfg, err := config.Resolve(flags, explicitConfig)
	if err != nil {
		return err
	}

	logger.Init(logger.Options{Debug: cfg.Debug})
	if cfg.ConfigPath != "" {
		logger.Debug("loaded config file", "path", cfg.ConfigPath)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	writer, err := output.NewWriter(cmd.OutOrStdout(), output.Format(cfg.Format), cfg.Pretty)
	if err != nil {
		return badInput("%v", err)
	}

	if listModels, _ := flags.GetBool("list-models"); listModels {
		return runListModels(ctx, flags, cfg, writer)
	}

	if len(args) == 0 {
		return badInput("missing PDF path; provide <pdf> or use --list-models")
	}
	return runExtraction(ctx, cfg, args[0], writer)
}

func runListModels(ctx context.Context, flags *pflag.FlagSet, cfg *config.Config, writer output.Writer) error {
	if cfg.APIKey == "" {
		return &config.Error{Message: "gemini_api_key is required for --list-models"}
	}

	client, err := gemini.NewClient(cfg.APIKey, cfg.Model, cfg.Locale, cfg.Timeout)
	if err != nil {
		return &config.Error{Message: err.Error()}
	}

	allModels, _ := flags.GetBool("all-models")
	filter, _ := flags.GetString("model-filter")
	logger.Debug("listing models", "filter", filter, "include_non_gemini", allModels)

	catalog, err := client.ListModels(ctx, filter, allModels)
	if err != nil {
		return err
	}
	return writer.Write(catalog)
}

func runExtraction(ctx context.Context, cfg *config.Config, path string, writer output.Writer) error {
	if err := ingest.ValidatePath(path); err != nil {
		return badInput("%v", err)
	}

	mode := extract.OCRMode(cfg.OCRMode)
	logger.Debug("starting extraction",
		"path", path,
		"model", cfg.Model,
		"locale", cfg.Locale,
		"max_pages", cfg.MaxPages,
		"ocr_mode", cfg.OCRMode)

	pipeline := &extract.Pipeline{
		Probe:    &ingest.TextProbe{MaxTextBytes: cfg.MaxTextBytes},
		Renderer: ingest.PageRenderer{},
	}
	if mode != extract.ModeText {
		if cfg.APIKey == "" {
			return &config.Error{Message: "gemini_api_key is required unless ocr_mode is 'text'"}
		}
		client, err := gemini.NewClient(cfg.APIKey, cfg.Model, cfg.Locale, cfg.Timeout)
		if err != nil {
			return &config.Error{Message: err.Error()}
		}
		pipeline.Vision = client
	}

	result, err := pipeline.Run(ctx, path, filepath.Base(path), extract.Options{
		Mode:      mode,
		MaxPages:  cfg.MaxPages,
		DateOrder: extract.OrderFor(cfg.Locale, cfg.DateOrder),
	})
	if err != nil {
		return err
	}

	result.FilenameStub = extract.BuildStub(*result,
		cfg.FilenameSeparator, cfg.FilenameDateSeparator, cfg.FilenameSuffix)

	if cfg.Rename {
		if err := renameSource(path, result.FilenameStub, cfg.DryRun); err != nil {
			return err
		}
	}

	return writer.Write(result)
}

// renameSource applies the derived stub to the source file. Dry runs
// only log the plan. An existing target is never clobbered.
func renameSource(path, stub string, dryRun bool) error {
	target := filepath.Join(filepath.Dir(path), stub+filepath.Ext(path))
	if target == path {
		logger.Debug("rename skipped, name already matches", "path", path)
		return nil
	}
	if dryRun {
		logger.Info("dry run: would rename", "from", path, "to", target)
		return nil
	}
	if _, err := os.Stat(target); err == nil {
		logger.Warn("rename skipped, target exists", "target", target)
		return nil
	}
	if err := os.Rename(path, target); err != nil {
		return fmt.Errorf("rename %q -> %q: %w", path, target, err)
	}
	logger.Info("renamed", "from", path, "to", target)
	return nil
}
