// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// aht30d serves AHT30 readings over HTTP.
//
// Every GET /read triggers a fresh measurement; nothing is cached. Other
// routes are GET /health, GET /read.png and GET /metrics.
//
// Configuration comes from flags, AHT30_* environment variables, and an
// optional .env file (AHT30_ENV_FILE, default ".env").
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/GermanBionicSystems/aht30/aht30"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	zerolog.DurationFieldUnit = time.Second
	zerolog.TimeFieldFormat = time.RFC3339Nano

	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: "15:04:05.000",
	})

	envFile, ok := os.LookupEnv("AHT30_ENV_FILE")
	if !ok {
		envFile = ".env"
	}
	if err := loadEnvFile(envFile); err != nil {
		log.Fatal().Err(err).Msg("Unable to load environment file")
	}

	cfg, err := parseArgs(os.Args[0], os.Args[1:], os.Getenv, os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	} else if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	if cfg.Trace || os.Getenv("TRACE") != "" {
		zerolog.SetGlobalLevel(zerolog.TraceLevel)
	} else if cfg.Debug || os.Getenv("DEBUG") != "" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	log.Info().
		Str("BindAddr", cfg.BindAddress).
		Str("Bus", cfg.Bus).
		Str("Address", addressFlag{&cfg.Address}.String()).
		Dur("Timeout", cfg.Timeout).
		Msg("Starting with the specified configuration")

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	s := &server{
		sensor:  aht30.New(nil),
		bus:     cfg.Bus,
		addr:    cfg.Address,
		timeout: cfg.Timeout,
		metrics: newMetrics(registry),
		now:     time.Now,
	}
	srv := &http.Server{
		Addr:              cfg.BindAddress,
		Handler:           s.handler(registry),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Unclean shutdown")
		}
	}()

	log.Info().Str("ListenAddress", cfg.BindAddress).Msg("Starting HTTP server")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("Unable to bind on requested address")
	}
}
