package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"yt-traffic/internal/config"
	"yt-traffic/internal/domain"
	"yt-traffic/internal/export"
	"yt-traffic/internal/fetcher"
	"yt-traffic/internal/ingest"
	"yt-traffic/internal/providers/youtube"
	"yt-traffic/internal/report"
	"yt-traffic/internal/sftpclient"
)

type options struct {
	csvPath     string
	apiKey      string
	outPath     string
	sourceTypes []string
	encodings   []ingest.Encoding
	batchSize   int
	upload      bool
}

func main() {
	_ = godotenv.Load()
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	cfg := config.Load()

	opts, err := parseFlags(args, cfg, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	if opts.apiKey != "" {
		cfg.YouTubeAPIKey = opts.apiKey
	}
	cfg.BatchSize = opts.batchSize

	session := uuid.NewString()
	logger := newLogger(stderr, cfg.LogLevel).With("session", session[:8])

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "err", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, cfg.RunTimeout)
	defer cancel()

	if err := analyze(ctx, cfg, opts, session, stdout, logger); err != nil {
		switch {
		case errors.Is(err, domain.ErrQuotaExceeded):
			logger.Error("youtube api quota exceeded, check your quota in the google cloud console and retry later", "err", err)
		case errors.Is(err, domain.ErrInvalidAPIKey):
			logger.Error("youtube api key rejected, check YOUTUBE_API_KEY and that the Data API v3 is enabled", "err", err)
		default:
			logger.Error("analysis failed", "err", err)
		}
		return 1
	}
	return 0
}

func analyze(ctx context.Context, cfg config.Config, opts options, session string, stdout io.Writer, logger *log.Logger) error {
	parsed, err := ingest.ParseFile(opts.csvPath, ingest.Options{
		Encodings:   opts.encodings,
		SourceTypes: opts.sourceTypes,
	})
	if err != nil {
		return err
	}
	logger.Info("csv loaded",
		"file", filepath.Base(opts.csvPath),
		"encoding", parsed.Encoding,
		"videos", len(parsed.Rows),
		"skipped", parsed.Skipped,
		"duplicates", parsed.Duplicates,
	)
	for _, m := range parsed.Malformed {
		logger.Warn("dropped malformed row", "line", m.Line, "video", m.VideoID, "field", m.Field, "value", m.Value)
	}

	client := youtube.New(cfg.YouTubeBaseURL, cfg.YouTubeAPIKey)
	client.HTTP.Timeout = cfg.HTTPTimeout
	client.Retry.MaxAttempts = cfg.MaxAttempts
	client.Retry.BaseDelay = cfg.BaseDelay
	client.Retry.MaxDelay = cfg.MaxDelay
	client.Log = logger

	f := fetcher.New(youtube.Provider{C: client}, fetcher.NewCache(),
		fetcher.WithBatchSize(cfg.BatchSize),
		fetcher.WithBatchInterval(cfg.BatchInterval),
		fetcher.WithObserver(progressLogger(logger)),
		fetcher.WithLogger(logger),
	)

	res, fetchErr := f.Fetch(ctx, parsed.IDs())
	if errors.Is(fetchErr, domain.ErrInvalidAPIKey) || errors.Is(fetchErr, domain.ErrBadRequest) {
		return fmt.Errorf("fetch metadata: %w", fetchErr)
	}
	if fetchErr != nil {
		logger.Warn("metadata fetch stopped early, reporting what was fetched", "summary", res.Summary, "err", fetchErr)
	} else {
		logger.Info("metadata fetched",
			"available", res.Summary.Available,
			"unavailable", res.Summary.Unavailable,
			"failed", res.Summary.Failed,
			"api_calls", res.Summary.APICalls,
		)
	}
	if failed := res.FailedIDs(); len(failed) > 0 {
		logger.Warn("some videos could not be fetched, showing CSV data only", "count", len(failed), "ids", joinIDs(failed, 20))
	}

	merged := report.Merge(parsed.Rows, res.Lookups, time.Now())
	if err := report.Render(stdout, report.GroupByBucket(merged), report.Summarize(merged)); err != nil {
		return fmt.Errorf("render report: %w", err)
	}

	outPath := opts.outPath
	if outPath == "" && opts.upload {
		outPath = export.DefaultFileName(time.Now(), session)
	}
	if outPath != "" {
		if err := export.WriteFile(outPath, merged); err != nil {
			return errors.Join(fetchErr, err)
		}
		logger.Info("export written", "path", outPath, "records", len(merged), "brotli", export.IsCompressed(outPath))
	}

	if fetchErr != nil {
		if opts.upload {
			logger.Warn("skipping upload of an incomplete export", "path", outPath)
		}
		return fmt.Errorf("fetch metadata (%s): %w", res.Summary, fetchErr)
	}
	if !opts.upload {
		return nil
	}
	upCfg := sftpclient.Config{
		Host:                  cfg.SFTPHost,
		Port:                  cfg.SFTPPort,
		User:                  cfg.SFTPUser,
		Pass:                  cfg.SFTPPass,
		RemoteDir:             cfg.SFTPDir,
		KnownHostsPath:        cfg.SFTPKnownHosts,
		InsecureIgnoreHostKey: cfg.SFTPInsecureIgnoreHostKey,
	}
	upCtx, upCancel := context.WithTimeout(ctx, 5*time.Minute)
	defer upCancel()

	remote, err := sftpclient.UploadFile(upCtx, upCfg, outPath, filepath.Base(outPath))
	if err != nil {
		return err
	}
	logger.Info("uploaded", "host", upCfg.Host, "path", remote)
	return nil
}

func parseFlags(args []string, cfg config.Config, stderr io.Writer) (options, error) {
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		opts        options
		sourceTypes string
		encodings   string
	)
	fs.StringVar(&opts.csvPath, "csv", "", "traffic source CSV exported from YouTube Analytics")
	fs.StringVar(&opts.apiKey, "api-key", "", "YouTube Data API key (default $YOUTUBE_API_KEY)")
	fs.StringVar(&opts.outPath, "out", "", "write merged records to this CSV (.br suffix compresses)")
	fs.StringVar(&sourceTypes, "source-types", strings.Join(ingest.DefaultSourceTypes, ","), "comma separated traffic source prefixes that carry a video id")
	fs.StringVar(&encodings, "encodings", "utf-8,latin-1", "comma separated encodings to try, in order")
	fs.IntVar(&opts.batchSize, "batch-size", cfg.BatchSize, "ids per API call (max 50)")
	fs.BoolVar(&opts.upload, "sftp", false, "upload the export via SFTP")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if opts.csvPath == "" {
		if fs.NArg() == 0 {
			fs.Usage()
			return options{}, errors.New("analyze: -csv is required")
		}
		opts.csvPath = fs.Arg(0)
	}

	opts.sourceTypes = splitCSV(sourceTypes)
	encs, err := parseEncodings(encodings)
	if err != nil {
		return options{}, err
	}
	opts.encodings = encs
	return opts, nil
}

func newLogger(w io.Writer, level string) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Prefix:          "analyze",
	})
	lvl, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		lvl = log.InfoLevel
	}
	logger.SetLevel(lvl)
	return logger
}

func progressLogger(logger *log.Logger) fetcher.Observer {
	return fetcher.ObserverFunc(func(p fetcher.Progress) {
		if p.Batch == 0 {
			logger.Info("fetching metadata", "videos", p.Total, "cached", p.Processed, "batches", p.Batches)
			return
		}
		logger.Info("batch done", "batch", fmt.Sprintf("%d/%d", p.Batch, p.Batches), "processed", p.Processed, "total", p.Total)
	})
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseEncodings(s string) ([]ingest.Encoding, error) {
	var out []ingest.Encoding
	for _, name := range splitCSV(s) {
		enc, err := ingest.ParseEncoding(name)
		if err != nil {
			return nil, err
		}
		out = append(out, enc)
	}
	return out, nil
}

func joinIDs(ids []domain.VideoID, limit int) string {
	parts := make([]string, 0, min(len(ids), limit))
	for i, id := range ids {
		if i == limit {
			parts = append(parts, fmt.Sprintf("... +%d more", len(ids)-limit))
			break
		}
		parts = append(parts, string(id))
	}
	return strings.Join(parts, ",")
}
