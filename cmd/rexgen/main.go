package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"rexgen/internal/aggregate"
	"rexgen/internal/booklet"
	"rexgen/internal/capture"
	"rexgen/internal/config"
	"rexgen/internal/conflict"
	"rexgen/internal/event"
	"rexgen/internal/feed"
	appLog "rexgen/internal/log"
	"rexgen/internal/openapi"
	"rexgen/internal/site"
	"rexgen/internal/web"
)

// flagConfig holds CLI flag values.
type flagConfig struct {
	configPath   string
	eventsDir    string
	templatesDir string
	staticDir    string
	outDir       string
	serve        string
	refresh      string
	proof        bool
}

func main() {
	appLog.Info("rexgen starting", "version", "1.0.0")
	defer appLog.Sync()

	flags := parseFlags()

	if err := run(flags); err != nil {
		appLog.Error("run failed", err, "config_path", flags.configPath)
		os.Exit(1)
	}

	if flags.serve == "" {
		appLog.Info("rexgen done")
		return
	}

	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	if flags.refresh != "" {
		c := cron.New()
		_, err := c.AddFunc(flags.refresh, func() {
			if err := run(flags); err != nil {
				appLog.Error("scheduled rebuild failed", err)
			}
		})
		if err != nil {
			appLog.Error("invalid refresh schedule", err, "refresh", flags.refresh)
			os.Exit(1)
		}
		c.Start()
		defer c.Stop()
		appLog.Info("scheduled rebuilds enabled", "refresh", flags.refresh)
	}

	srv := web.NewServer(flags.serve, flags.outDir)
	if err := srv.Run(ctx); err != nil {
		appLog.Error("preview server failed", err)
		os.Exit(1)
	}

	appLog.Info("rexgen exiting")
}

// run executes one full pipeline pass: load config, ingest CSV files,
// aggregate, check conflicts, render, and write the output tree. Fatal
// errors abort before any output is written; content errors end up in
// errors.html and never fail the run.
func run(flags flagConfig) error {
	started := time.Now()

	cfg, err := config.Load(flags.configPath, flags.eventsDir)
	if err != nil {
		return err
	}

	normalizer, err := event.NewNormalizer(cfg)
	if err != nil {
		return err
	}

	var orientation []*event.Event
	orientationPath := cfg.Orientation.Path(flags.eventsDir)
	if orientationPath != "" {
		appLog.Info("processing orientation events", "file", orientationPath)
		if orientation, err = event.ReadFile(orientationPath, normalizer); err != nil {
			return err
		}
	}

	files, err := event.Discover(flags.eventsDir, orientationPath)
	if err != nil {
		return err
	}

	var events []*event.Event
	for _, file := range files {
		batch, err := event.ReadFile(file, normalizer)
		if err != nil {
			return err
		}
		events = append(events, batch...)
	}

	api := aggregate.Build(cfg, events, time.Now())

	report := conflict.Check(cfg, api.Events, orientation)
	if !report.Empty() {
		appLog.Warn("event errors found", "group_count", report.Len())
	}

	var extra []*event.Event
	if cfg.Orientation.IncludeInBooklet {
		extra = orientation
	}

	guide, err := booklet.Build(cfg, api, extra)
	if err != nil {
		return err
	}

	renderer := booklet.NewRenderer(flags.templatesDir)

	bookletHTML, err := renderer.RenderBooklet(guide)
	if err != nil {
		return fmt.Errorf("render booklet: %w", err)
	}
	indexHTML, err := renderer.RenderIndex()
	if err != nil {
		return fmt.Errorf("render index: %w", err)
	}
	errorsHTML, err := renderer.RenderErrors(report, api.Name)
	if err != nil {
		return fmt.Errorf("render errors: %w", err)
	}

	apiJSON, err := json.Marshal(api)
	if err != nil {
		return err
	}
	openapiYAML, err := openapi.Marshal()
	if err != nil {
		return err
	}
	schemaJSON, err := config.SchemaJSON()
	if err != nil {
		return err
	}

	err = site.Write(flags.outDir, flags.staticDir, map[string][]byte{
		"api.json":           apiJSON,
		"booklet.html":       []byte(bookletHTML),
		"index.html":         []byte(indexHTML),
		"errors.html":        []byte(errorsHTML),
		"openapi.yaml":       openapiYAML,
		"config_schema.json": schemaJSON,
		"rex.ics":            []byte(feed.Calendar(api)),
	})
	if err != nil {
		return err
	}

	if flags.proof {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		err := capture.BookletPNG(ctx, capture.Options{
			HTMLPath:   flags.outDir + "/booklet.html",
			OutputPath: flags.outDir + "/booklet.png",
		})
		if err != nil {
			return err
		}
	}

	appLog.Info("pipeline complete",
		"event_count", len(api.Events),
		"orientation_count", len(orientation),
		"error_groups", report.Len(),
		"elapsed", time.Since(started).String(),
	)
	return nil
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "config.toml", "Path to season config file")
	flag.StringVar(&cfg.eventsDir, "events", "events", "Directory of CSV event exports")
	flag.StringVar(&cfg.templatesDir, "templates", "templates", "Template override directory")
	flag.StringVar(&cfg.staticDir, "static", "static", "Static assets copied into the output tree")
	flag.StringVar(&cfg.outDir, "out", "output", "Output directory (cleared and rewritten)")
	flag.StringVar(&cfg.serve, "serve", "", "Serve the output tree on this address after generating")
	flag.StringVar(&cfg.refresh, "refresh", "", "Cron schedule for rebuilds while serving (e.g. \"*/15 * * * *\")")
	flag.BoolVar(&cfg.proof, "proof", false, "Capture a PNG print proof of the booklet")

	flag.Parse()

	return cfg
}
