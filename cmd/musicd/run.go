package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	l "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mipimipi/musicd/internal/catalog"
	"github.com/mipimipi/musicd/internal/config"
	"github.com/mipimipi/musicd/internal/httpapi"
	"github.com/mipimipi/musicd/internal/scan"
	"github.com/mipimipi/musicd/internal/streamdriver"
	"github.com/mipimipi/musicd/internal/thumbnail"
)

var cfg *config.Cfg

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the musicd server",
	Long:  "Run the musicd HTTP API, scanning the configured roots into a local catalog",
	Run: func(cmd *cobra.Command, args []string) {
		if err := run(cfg); err != nil {
			fmt.Printf("musicd cannot be run: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	cfg = config.Bind(runCmd)
	rootCmd.AddCommand(runCmd)
}

func run(cfg *config.Cfg) error {
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "invalid configuration")
	}

	level, err := l.ParseLevel(string(cfg.LogLevel))
	if err != nil {
		return errors.Wrap(err, "invalid log level")
	}
	l.SetLevel(level)

	roots := make([]catalog.Root, len(cfg.Roots))
	for i, r := range cfg.Roots {
		roots[i] = catalog.Root{Name: r.Name, Path: r.Path}
	}

	source, err := catalog.OpenSource(cfg.IndexDBPath(), roots)
	if err != nil {
		return errors.Wrap(err, "cannot open catalog")
	}

	cat, err := source.Open()
	if err != nil {
		return errors.Wrap(err, "cannot open catalog reader")
	}
	defer cat.Close()

	var cache thumbnail.Cache
	if cfg.DisableCache {
		cache = thumbnail.Disabled()
	} else {
		cache, err = thumbnail.Open(cfg.CacheDBPath(), cfg.CacheLimit)
		if err != nil {
			return errors.Wrap(err, "cannot open thumbnail cache")
		}
	}
	defer cache.Close()

	scanWorker := scan.NewWorker(source)
	if !cfg.NoInitialScan {
		if err := scanWorker.Start(); err != nil {
			return errors.Wrap(err, "cannot start initial scan")
		}
	}
	defer scanWorker.Stop()

	watchShutdown := make(chan struct{})
	go func() {
		if err := scanWorker.Watch(watchShutdown); err != nil {
			l.Errorf("filesystem watcher stopped: %v", err)
		}
	}()
	defer close(watchShutdown)

	if cfg.ScanInterval > 0 {
		go scanWorker.Poll(cfg.ScanInterval, watchShutdown)
	}

	driver := streamdriver.New()

	srv, err := httpapi.New(cfg.Bind, cat, cache, scanWorker, driver, cfg.Password)
	if err != nil {
		return errors.Wrap(err, "cannot start HTTP listener")
	}

	shutdown := make(chan struct{})
	go driver.Run(srv.Streaming(), shutdown)

	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Serve() }()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-interrupt:
		l.Infof("signal received: %v, stopping", sig)
	case err := <-serveErr:
		if err != nil {
			l.Errorf("HTTP listener stopped: %v", err)
		}
	}

	close(shutdown)
	srv.Shutdown()

	return nil
}
