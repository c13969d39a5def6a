package client

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/cloo-solutions/kbdocs/internal/cli"
	"github.com/cloo-solutions/kbdocs/internal/config"
	"github.com/cloo-solutions/kbdocs/internal/domain"
	"github.com/cloo-solutions/kbdocs/internal/logging"
	"github.com/cloo-solutions/kbdocs/internal/pagination"
	"github.com/cloo-solutions/kbdocs/internal/ragflow"
	"github.com/cloo-solutions/kbdocs/internal/render"
	"github.com/cloo-solutions/kbdocs/internal/service"
	"github.com/cloo-solutions/kbdocs/internal/telemetry"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// ErrInterrupted is returned when the run was cancelled by the user.
var ErrInterrupted = errors.New("interrupted by user")

const examples = `  kbdocs --list-kbs
  kbdocs --kb-id <dataset-id>
  kbdocs --kb-name "<dataset name>"
  kbdocs --kb-id <dataset-id> --format csv
  kbdocs --kb-id <dataset-id> --output documents.txt
  kbdocs --kb-id <dataset-id> --brief`

type listOptions struct {
	kbID       string
	kbName     string
	listKBs    bool
	format     string
	brief      bool
	output     string
	configFile string
	apiURL     string
	apiKey     string
	pageSize   int
	verbose    bool
}

// RootCmd creates the kbdocs command.
func RootCmd(version string) *cobra.Command {
	opts := listOptions{}

	cmd := &cobra.Command{
		Use:   "kbdocs",
		Short: "List the documents of a RAGFlow knowledge base",
		Long: `kbdocs lists knowledge bases and the documents they contain.

Configuration (first non-empty value wins, per field):
  1. --api-url / --api-key flags
  2. the config file (default ragflow_config.json): {"api_url": "...", "api_key": "..."}
  3. RAGFLOW_API_URL / RAGFLOW_API_KEY environment variables
  4. API URL default: ` + config.DefaultAPIURL,
		Example:       examples,
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.kbID, "kb-id", "", "Knowledge base ID")
	flags.StringVar(&opts.kbName, "kb-name", "", "Knowledge base name (case-insensitive substring match)")
	flags.BoolVar(&opts.listKBs, "list-kbs", false, "List all knowledge bases")
	flags.StringVar(&opts.format, "format", string(render.FormatTable), "Output format (table, json, csv)")
	flags.BoolVar(&opts.brief, "brief", false, "Print document names only, one per line")
	flags.StringVar(&opts.output, "output", "", "Also write the document list to this file")
	flags.StringVar(&opts.configFile, "config", config.DefaultConfigFile, "Config file path")
	flags.StringVar(&opts.apiURL, "api-url", "", "RAGFlow API URL (overrides config file and env)")
	flags.StringVar(&opts.apiKey, "api-key", "", "RAGFlow API key (overrides config file and env)")
	flags.IntVar(&opts.pageSize, "page-size", pagination.DefaultPageSize, "Documents requested per page")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Log API requests to stderr")
	_ = flags.SetAnnotation("format", cli.ChoicesAnnotation, []string{
		string(render.FormatTable), string(render.FormatJSON), string(render.FormatCSV),
	})

	cli.AddHelpJSONFlag(cmd)
	return cmd
}

func runList(cmd *cobra.Command, opts listOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()

	format, err := render.ParseFormat(opts.format)
	if err != nil {
		return err
	}

	cfg, err := config.Resolve(config.Options{
		APIURL:     opts.apiURL,
		APIKey:     opts.apiKey,
		ConfigFile: opts.configFile,
		Out:        out,
	})
	if err != nil {
		return err
	}

	logger := logging.New(cmd.ErrOrStderr(), cfg.LogLevel, opts.verbose)
	shutdown := telemetry.Init(telemetry.Config{DSN: cfg.SentryDSN, Release: cmd.Version}, logger)
	defer shutdown()

	err = run(ctx, cmd, cfg, opts, format, logger)
	if err != nil && !errors.Is(err, ErrInterrupted) {
		telemetry.CaptureError(ctx, err)
	}
	return err
}

func run(ctx context.Context, cmd *cobra.Command, cfg *config.Config, opts listOptions, format render.Format, logger zerolog.Logger) error {
	out := cmd.OutOrStdout()

	api := ragflow.NewClient(cfg, ragflow.WithLogger(logger))
	fmt.Fprintf(out, "Connected to RAGFlow API: %s\n", api.BaseURL())
	logger.Debug().Str("url_source", string(cfg.URLSource)).Str("key_source", string(cfg.KeySource)).Msg("configuration resolved")

	catalog := service.NewCatalog(api, out, logger)

	if opts.listKBs {
		fmt.Fprint(out, "\nAll knowledge bases:\n\n")
		listing := catalog.ListKnowledgeBases(ctx)
		if ctx.Err() != nil {
			return ErrInterrupted
		}
		return render.KnowledgeBases(out, listing.Items)
	}

	kbID := opts.kbID
	if opts.kbName != "" {
		fmt.Fprintf(out, "\nLooking up knowledge base: %s\n", opts.kbName)
		kb, err := catalog.FindByName(ctx, opts.kbName)
		if ctx.Err() != nil {
			return ErrInterrupted
		}
		if kb == nil {
			if err != nil {
				fmt.Fprintln(out, "Error: could not list knowledge bases to resolve the name")
			}
			fmt.Fprintf(out, "Error: knowledge base not found: %s\n", opts.kbName)
			fmt.Fprintln(out, "Hint: use --list-kbs to see all available knowledge bases")
			return nil
		}
		kbID = kb.ID
		fmt.Fprintf(out, "Found knowledge base: %s (ID: %s)\n\n", kb.Name, kbID)
	}

	if kbID == "" {
		_ = cmd.Help()
		fmt.Fprintln(out, "\nError: specify --kb-id or --kb-name")
		return nil
	}

	listing := catalog.ListDocuments(ctx, kbID, opts.pageSize)
	if ctx.Err() != nil {
		return ErrInterrupted
	}
	if !listing.Complete() {
		fmt.Fprintf(out, "Warning: listing stopped early, showing %d documents fetched before the error\n\n", len(listing.Items))
	}

	if err := render.Documents(out, listing.Items, format, opts.brief); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if opts.output != "" && len(listing.Items) > 0 {
		saveDocuments(out, listing.Items, opts.output, format, logger)
	}
	return nil
}

// saveDocuments reports a failed write without failing the run.
func saveDocuments(out io.Writer, docs []domain.Document, path string, format render.Format, logger zerolog.Logger) {
	if err := render.Save(docs, path, format); err != nil {
		logger.Error().Err(err).Str("path", path).Msg("save failed")
		fmt.Fprintf(out, "Error: failed to save file: %v\n", err)
		return
	}
	fmt.Fprintf(out, "Saved document list to: %s\n", path)
}
