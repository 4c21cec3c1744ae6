package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/stonemill-io/grist/cli/config"
	"github.com/stonemill-io/grist/collect"
	"github.com/stonemill-io/grist/log"
	"github.com/stonemill-io/grist/metrics"
	"github.com/stonemill-io/grist/notify"
	"github.com/stonemill-io/grist/ollama"
	"github.com/stonemill-io/grist/output"
	"github.com/stonemill-io/grist/pipeline"
	"github.com/stonemill-io/grist/prompt"
	"github.com/stonemill-io/grist/types"
)

// Exit codes for process. Failures before processing starts exit 1;
// once the batch is running, per-file failures land in the results and
// the command exits 0.
const (
	exitSuccess = 0
	exitFailure = 1
)

// ProcessCommand returns the process command.
// This is the only command that executes work.
func ProcessCommand() *cli.Command {
	return &cli.Command{
		Name:      "process",
		Usage:     "Process text files from a source through an Ollama model",
		ArgsUsage: "SOURCE",
		Description: "SOURCE is an S3 path (s3://bucket/prefix), a zip archive, a directory,\n" +
			"a single file, or a comma-separated list of glob patterns.",
		Flags: []cli.Flag{
			// Generation flags
			&cli.StringFlag{
				Name:    "model",
				Aliases: []string{"m"},
				Usage:   "Ollama model to use (default: llama3.2)",
			},
			&cli.StringFlag{
				Name:    "prompt",
				Aliases: []string{"p"},
				Usage:   "Custom prompt template (use {text} as placeholder)",
			},
			&cli.BoolFlag{
				Name:  "summarize",
				Usage: "Summarize the text",
			},
			&cli.BoolFlag{
				Name:  "analyze",
				Usage: "Analyze the text",
			},
			&cli.BoolFlag{
				Name:  "extract",
				Usage: "Extract key information",
			},
			&cli.StringFlag{
				Name:  "base-url",
				Usage: "Ollama server base URL",
			},
			&cli.DurationFlag{
				Name:  "request-timeout",
				Usage: "Per-request timeout (0 disables)",
			},
			// Collection flags
			&cli.StringSliceFlag{
				Name:    "extensions",
				Aliases: []string{"e"},
				Usage:   "File extensions to process (default: .txt .md .log .csv)",
			},
			&cli.BoolFlag{
				Name:  "no-recursive",
				Usage: "Don't recursively search directories",
			},
			&cli.BoolFlag{
				Name:  "input-jsonl",
				Usage: "Input is a JSONL file from previous processing",
			},
			// Output flags
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output file for results (JSON format)",
			},
			&cli.BoolFlag{
				Name:  "jsonl",
				Usage: "Output in JSONL format (one result per line)",
			},
			// S3 flags
			&cli.StringFlag{
				Name:  "s3-region",
				Usage: "AWS region for S3 sources (optional, uses default chain)",
			},
			&cli.StringFlag{
				Name:  "s3-endpoint",
				Usage: "Custom S3 endpoint URL (R2, MinIO)",
			},
			&cli.BoolFlag{
				Name:  "s3-path-style",
				Usage: "Force path-style S3 addressing",
			},
			// Notification flags
			&cli.StringFlag{
				Name:  "notify-type",
				Usage: "Completion notification: webhook or redis",
			},
			&cli.StringFlag{
				Name:  "notify-url",
				Usage: "Webhook endpoint or redis:// address",
			},
			&cli.StringFlag{
				Name:  "notify-channel",
				Usage: "Redis pub/sub channel for notifications",
			},
			// Run flags
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a grist.yaml config file",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable debug logging",
			},
			&cli.BoolFlag{
				Name:  "no-color",
				Usage: "Disable colored output",
			},
			&cli.BoolFlag{
				Name:  "no-progress",
				Usage: "Disable progress bars",
			},
		},
		Action: processAction,
	}
}

// generateChoice holds resolved generation settings.
type generateChoice struct {
	model      string
	baseURL    string
	timeout    time.Duration
	summarize  bool
	analyze    bool
	extract    bool
	customTmpl string
}

// collectChoice holds resolved collection settings.
type collectChoice struct {
	extensions []string
	recursive  bool
	inputJSONL bool
}

// outputChoice holds resolved output settings.
type outputChoice struct {
	path  string
	jsonl bool
}

// s3Choice holds resolved S3 connection settings. Credentials come from
// the config file only, never from flags.
type s3Choice struct {
	region          string
	endpoint        string
	pathStyle       bool
	accessKeyID     string
	secretAccessKey string
	sessionToken    string
}

// notifyChoice holds resolved notification settings.
type notifyChoice struct {
	kind    string
	url     string
	channel string
	headers map[string]string
	timeout time.Duration
}

func processAction(c *cli.Context) error {
	if c.NArg() == 0 {
		return cli.Exit("missing required argument: SOURCE", exitFailure)
	}
	// Shell-expanded globs arrive as separate args; fold them back into
	// one comma-separated pattern list.
	source := strings.Join(c.Args().Slice(), ",")

	cfg := &config.Config{}
	if path := c.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return cli.Exit(err.Error(), exitFailure)
		}
		cfg = loaded
	}

	gen := parseGenerateChoice(c, cfg)
	coll := parseCollectChoice(c, cfg)
	out := parseOutputChoice(c, cfg)
	s3 := parseS3Choice(c, cfg)
	note, err := parseNotifyChoice(c, cfg)
	if err != nil {
		return cli.Exit(err.Error(), exitFailure)
	}

	model := gen.model
	if model == "" {
		model = ollama.DefaultModel
	}

	meta := &types.RunMeta{
		RunID:  uuid.NewString(),
		Model:  model,
		Source: source,
	}
	logger := log.NewLogger(meta, c.Bool("verbose"))

	// A bad notify config fails before any work is done.
	publisher, err := notify.New(notify.Options{
		Kind:    note.kind,
		URL:     note.url,
		Channel: note.channel,
		Headers: note.headers,
		Timeout: note.timeout,
	})
	if err != nil {
		return cli.Exit(err.Error(), exitFailure)
	}
	if publisher != nil {
		defer func() { _ = publisher.Close() }()
	}

	var clientOpts []ollama.Option
	if gen.baseURL != "" {
		clientOpts = append(clientOpts, ollama.WithBaseURL(gen.baseURL))
	}
	if gen.timeout > 0 {
		clientOpts = append(clientOpts, ollama.WithTimeout(gen.timeout))
	}
	client := ollama.New(model, clientOpts...)
	defer func() { _ = client.Close() }()

	// Set up context with signal handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	if !client.CheckConnection(ctx) {
		fmt.Println("Error: Cannot connect to Ollama. Make sure it's installed and running.")
		fmt.Println("Start Ollama with: ollama serve")
		return cli.Exit("", exitFailure)
	}

	template := prompt.Select(gen.summarize, gen.analyze, gen.extract, gen.customTmpl)
	if err := template.Validate(); err != nil {
		logger.Warn("prompt template has no placeholder, file content will be dropped", map[string]any{
			"error": err.Error(),
		})
	}

	src := collect.Resolve(source, collect.ResolveOptions{TreatAsJSONL: coll.inputJSONL})
	collector := metrics.NewCollector(src.Kind.String(), model, meta.RunID)

	ws := collect.NewWorkspace()
	defer func() {
		if err := ws.Cleanup(); err != nil {
			logger.Warn("workspace cleanup failed", map[string]any{"error": err.Error()})
		}
	}()

	progress := !c.Bool("no-progress") && isStderrTTY()

	fmt.Printf("Collecting files from: %s\n", source)
	files, err := collect.New(collect.Options{
		Extensions: coll.extensions,
		Workspace:  ws,
		Logger:     logger,
		S3: collect.S3Options{
			Region:          s3.region,
			Endpoint:        s3.endpoint,
			UsePathStyle:    s3.pathStyle,
			AccessKeyID:     s3.accessKeyID,
			SecretAccessKey: s3.secretAccessKey,
			SessionToken:    s3.sessionToken,
		},
		Metrics:  collector,
		Progress: progress,
	}).Collect(ctx, src, coll.recursive)
	if err != nil {
		fmt.Printf("Error collecting files: %v\n", err)
		return cli.Exit("", exitFailure)
	}
	fmt.Printf("Found %d files to process\n", len(files))

	if len(files) == 0 {
		fmt.Println("No valid files found to process")
		return nil
	}
	collector.SetFilesCollected(int64(len(files)))

	pipe := pipeline.New(pipeline.Config{
		Generator: client,
		Template:  template,
		Logger:    logger,
		Collector: collector,
		Progress:  progress,
	})

	start := time.Now()
	results := pipe.Run(ctx, files)
	elapsed := time.Since(start)

	color := !c.Bool("no-color") && isStdoutTTY()
	report := output.NewReport(os.Stdout, color)

	if out.path != "" {
		if err := writeResults(results, out); err != nil {
			return cli.Exit(fmt.Sprintf("Error saving results: %v", err), exitFailure)
		}
		fmt.Printf("\nResults saved to: %s\n", out.path)
	} else {
		report.Print(results)
	}

	snap := collector.Snapshot()
	logger.Info("run complete", map[string]any{
		"files":             snap.FilesProcessed,
		"succeeded":         snap.Succeeded,
		"failed":            snap.Failed,
		"generation_errors": snap.GenerationErrors,
		"duration_ms":       elapsed.Milliseconds(),
	})
	report.Summary(snap, elapsed)

	if publisher != nil {
		outcome := types.OutcomeFor(snap.Succeeded, snap.Failed)
		event := notify.NewEvent(meta, outcome, snap, elapsed, out.path)
		// Publish on a fresh context so an interrupted run still
		// notifies; the publisher bounds its own attempt.
		if err := publisher.Publish(context.Background(), event); err != nil {
			logger.Warn("completion notification failed", map[string]any{"error": err.Error()})
		}
	}

	return nil
}

func writeResults(results []pipeline.Result, out outputChoice) error {
	if out.jsonl {
		return output.WriteJSONL(results, out.path)
	}
	return output.WriteJSON(results, out.path)
}

func parseGenerateChoice(c *cli.Context, cfg *config.Config) generateChoice {
	return generateChoice{
		model:      resolveString(c, "model", cfg.Model),
		baseURL:    resolveString(c, "base-url", cfg.BaseURL),
		timeout:    resolveDuration(c, "request-timeout", cfg.RequestTimeout.Duration),
		summarize:  c.Bool("summarize"),
		analyze:    c.Bool("analyze"),
		extract:    c.Bool("extract"),
		customTmpl: resolveString(c, "prompt", cfg.Prompt),
	}
}

func parseCollectChoice(c *cli.Context, cfg *config.Config) collectChoice {
	return collectChoice{
		extensions: resolveStrings(c, "extensions", cfg.Extensions),
		recursive:  !c.Bool("no-recursive"),
		inputJSONL: c.Bool("input-jsonl"),
	}
}

func parseOutputChoice(c *cli.Context, cfg *config.Config) outputChoice {
	return outputChoice{
		path:  resolveString(c, "output", cfg.Output.Path),
		jsonl: resolveBool(c, "jsonl", cfg.Output.JSONL),
	}
}

func parseS3Choice(c *cli.Context, cfg *config.Config) s3Choice {
	return s3Choice{
		region:          resolveString(c, "s3-region", cfg.S3.Region),
		endpoint:        resolveString(c, "s3-endpoint", cfg.S3.Endpoint),
		pathStyle:       resolveBool(c, "s3-path-style", cfg.S3.PathStyle),
		accessKeyID:     cfg.S3.AccessKeyID,
		secretAccessKey: cfg.S3.SecretAccessKey,
		sessionToken:    cfg.S3.SessionToken,
	}
}

// parseNotifyChoice resolves notification settings and validates that a
// configured notification names a URL.
func parseNotifyChoice(c *cli.Context, cfg *config.Config) (notifyChoice, error) {
	choice := notifyChoice{
		kind:    resolveString(c, "notify-type", cfg.Notify.Type),
		url:     resolveString(c, "notify-url", cfg.Notify.URL),
		channel: resolveString(c, "notify-channel", cfg.Notify.Channel),
		headers: cfg.Notify.Headers,
		timeout: cfg.Notify.Timeout.Duration,
	}

	switch choice.kind {
	case "":
		return choice, nil
	case "webhook", "redis":
		if choice.url == "" {
			return choice, fmt.Errorf("--notify-url required when notify type is %s", choice.kind)
		}
		return choice, nil
	default:
		return choice, fmt.Errorf("invalid notify type: %s (must be webhook or redis)", choice.kind)
	}
}

// resolveString returns the flag value when set on the command line,
// otherwise the config file value, otherwise the flag default.
func resolveString(c *cli.Context, name, configVal string) string {
	if c.IsSet(name) || configVal == "" {
		return c.String(name)
	}
	return configVal
}

// resolveBool returns the flag value when set on the command line,
// otherwise the config file value.
func resolveBool(c *cli.Context, name string, configVal bool) bool {
	if c.IsSet(name) {
		return c.Bool(name)
	}
	return configVal
}

// resolveDuration returns the flag value when set on the command line,
// otherwise the config file value.
func resolveDuration(c *cli.Context, name string, configVal time.Duration) time.Duration {
	if c.IsSet(name) || configVal == 0 {
		return c.Duration(name)
	}
	return configVal
}

// resolveStrings returns the flag values when any were given, otherwise
// the config file values.
func resolveStrings(c *cli.Context, name string, configVal []string) []string {
	if v := c.StringSlice(name); len(v) > 0 {
		return v
	}
	return configVal
}
