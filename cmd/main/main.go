package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"autofill-service/internal/autofill/handler"
	"autofill-service/internal/autofill/service"
	"autofill-service/internal/browser"
	"autofill-service/internal/config"
	"autofill-service/internal/mapping"
	"autofill-service/internal/sse"
	serverhttp "autofill-service/server/http"
)

func main() {
	cfg := config.Load()
	logger := config.SetupLogger(cfg)

	fm, err := mapping.Load(cfg.MappingFile)
	if err != nil {
		logger.Fatal().Err(err).Str("file", cfg.MappingFile).Msg("load field mapping")
	}
	logger.Info().Int("fields", fm.Len()).Str("file", cfg.MappingFile).Msg("field mapping loaded")

	ctrl := service.New(fm, cfg.FuzzyThreshold, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           serverhttp.NewRouter(cfg, ctrl, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info().Str("addr", cfg.Addr()).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("listen")
		}
	}()

	browsers := browser.NewManager(browser.Config{
		DebuggerURL: cfg.Browser.DebuggerURL,
		Headless:    cfg.Browser.Headless,
		Timeout:     cfg.Browser.Timeout,
	}, logger)

	var wg sync.WaitGroup
	if cfg.SSE.URL != "" {
		if cfg.Browser.StartURL != "" {
			if _, err := browsers.Open(ctx, cfg.Browser.StartURL); err != nil {
				logger.Error().Err(err).Str("url", cfg.Browser.StartURL).Msg("open start page")
			} else {
				logger.Info().Str("devtools", browsers.ControlURL()).Str("url", cfg.Browser.StartURL).Msg("start page opened")
			}
		}

		client := sse.NewClient(sse.Config{
			URL:            cfg.SSE.URL,
			Insecure:       cfg.SSE.Insecure,
			MaxReconnects:  cfg.SSE.MaxReconnects,
			ReconnectDelay: cfg.SSE.ReconnectDelay,
			KeepAlive:      cfg.SSE.KeepAlive,
		}, logger)
		activePage := func(ctx context.Context) (service.Document, error) {
			doc, err := browsers.ActiveDocument(ctx)
			if err != nil {
				return nil, err
			}
			return doc, nil
		}
		handler.NewEvents(ctrl, activePage, logger).Register(client)

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := client.Run(ctx); err != nil {
				logger.Error().Err(err).Msg("verifier stream stopped")
			}
		}()
	} else {
		logger.Info().Msg("SSE_URL is empty, verifier stream disabled")
	}

	<-ctx.Done()
	logger.Info().Msg("server shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	wg.Wait()
	if err := browsers.Close(); err != nil {
		logger.Warn().Err(err).Msg("close browser")
	}
	logger.Info().Msg("bye")
}
