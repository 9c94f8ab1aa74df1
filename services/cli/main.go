package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/RuvinSL/token-estimator/pkg/config"
	"github.com/RuvinSL/token-estimator/pkg/estimator"
	"github.com/RuvinSL/token-estimator/pkg/httpclient"
	"github.com/RuvinSL/token-estimator/pkg/interfaces"
	"github.com/RuvinSL/token-estimator/pkg/logger"
	"github.com/RuvinSL/token-estimator/pkg/models"
	"github.com/spf13/pflag"
)

const (
	serviceName = "token-estimator"
	barWidth    = 10
)

type options struct {
	mode       models.Mode
	mainURL    string
	others     []string
	batchFile  string
	serviceURL string
	logLevel   string
}

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if opts.serviceURL != "" {
		cfg.Estimator.BaseURL = opts.serviceURL
	}

	log := logger.NewWithWriter(os.Stderr, serviceName, logger.ParseLevel(opts.logLevel))
	client := httpclient.New(cfg.Estimator.BaseURL, cfg.Estimator.Timeout, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	progress := estimator.SimulatorConfig{
		TickInterval:    cfg.Progress.TickInterval,
		MessageInterval: cfg.Progress.MessageInterval,
		CompletionHold:  cfg.Progress.CompletionHold,
	}
	if err := run(ctx, opts, client, log, progress, os.Stdin, os.Stdout, os.Stderr); err != nil {
		os.Exit(1)
	}
}

func parseFlags(args []string, output io.Writer) (*options, error) {
	fs := pflag.NewFlagSet(serviceName, pflag.ContinueOnError)
	fs.SetOutput(output)

	var opts options
	mode := fs.StringP("mode", "m", string(models.ModeBasic), "estimation mode: basic, smart or full")
	fs.StringVarP(&opts.mainURL, "url", "u", "", "main page URL")
	fs.StringArrayVarP(&opts.others, "other", "o", nil, "related page URL, repeatable (smart mode)")
	fs.StringVarP(&opts.batchFile, "batch-file", "b", "", "file with one related URL per line, - for stdin (smart mode)")
	fs.StringVar(&opts.serviceURL, "service-url", "", "analysis service base URL (default $ESTIMATOR_SERVICE_URL)")
	fs.StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn or error")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	m, err := models.ParseMode(*mode)
	if err != nil {
		return nil, err
	}
	opts.mode = m

	if opts.mainURL == "" && fs.NArg() > 0 {
		opts.mainURL = fs.Arg(0)
	}
	return &opts, nil
}

// run performs one analysis and prints the report to stdout. Progress and
// errors go to stderr.
func run(ctx context.Context, opts *options, client interfaces.EstimatorClient, log interfaces.Logger,
	progress estimator.SimulatorConfig, stdin io.Reader, stdout, stderr io.Writer) error {
	batch, err := readBatch(opts.batchFile, stdin)
	if err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return err
	}

	c := estimator.NewController(client, log, nil, estimator.ControllerConfig{Progress: progress})
	defer c.Close()

	manual := opts.others
	if len(manual) == 0 {
		manual = []string{""}
	}
	if err := c.SetForm(estimator.Form{
		Mode:       opts.mode,
		MainURL:    opts.mainURL,
		ManualURLs: manual,
		BatchText:  batch,
	}); err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return err
	}

	bar := &progressBar{w: stderr}
	unsubscribe := c.Subscribe(bar.draw)
	err = c.Analyze(ctx)
	unsubscribe()
	bar.finish()

	snap := c.Snapshot()
	if err != nil {
		fmt.Fprintln(stderr, "Error:", snap.Error)
		return err
	}
	return estimator.RenderReport(stdout, snap.Result, snap.Form.Mode)
}

func readBatch(path string, stdin io.Reader) (string, error) {
	switch path {
	case "":
		return "", nil
	case "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read batch URLs from stdin: %w", err)
		}
		return string(data), nil
	default:
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read batch file: %w", err)
		}
		return string(data), nil
	}
}

// progressBar redraws a single status line while a full analysis runs.
type progressBar struct {
	mu    sync.Mutex
	w     io.Writer
	drawn bool
}

func (b *progressBar) draw(snap estimator.Snapshot) {
	if !snap.ShowProgress {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	fmt.Fprintf(b.w, "\r\033[K%s", formatProgress(snap.Progress, snap.StatusMessage))
	b.drawn = true
}

func (b *progressBar) finish() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.drawn {
		fmt.Fprintln(b.w)
		b.drawn = false
	}
}

func formatProgress(percent int, message string) string {
	filled := percent * barWidth / 100
	if filled > barWidth {
		filled = barWidth
	}
	if filled < 0 {
		filled = 0
	}
	bar := strings.Repeat("#", filled) + strings.Repeat(".", barWidth-filled)
	return fmt.Sprintf("[%s] %d%% %s", bar, percent, message)
}
