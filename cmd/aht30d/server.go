// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"time"

	"github.com/GermanBionicSystems/aht30/aht30"
	"github.com/GermanBionicSystems/aht30/readout"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/samborkent/uuidv7"
)

const kindTimeout = "timeout"

type server struct {
	sensor  *aht30.Sensor
	bus     string
	addr    uint16
	timeout time.Duration
	metrics *metrics
	now     func() time.Time
}

type readResponse struct {
	Status     string  `json:"status"`
	Timestamp  string  `json:"timestamp"`
	TempC      float64 `json:"temp_c"`
	TempF      float64 `json:"temp_f"`
	Humidity   float64 `json:"humidity"`
	Busy       bool    `json:"busy"`
	StatusByte uint8   `json:"status_byte"`
}

type errorResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Error     string `json:"error"`
	Kind      string `json:"kind"`
}

func (s *server) handler(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.health)
	mux.HandleFunc("GET /read", s.read)
	mux.HandleFunc("GET /read.png", s.readPNG)
	mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return withRequestID(mux)
}

func (s *server) timestamp() string {
	return s.now().UTC().Format("2006-01-02T15:04:05Z")
}

func (s *server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// acquire performs one sensor read for the request. A request that cannot get
// the bus within the timeout fails with kindTimeout.
func (s *server) acquire(ctx context.Context) (aht30.Reading, string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	start := time.Now()
	reading, err := s.sensor.Acquire(ctx, s.bus, s.addr)
	kind := aht30.ErrorKind(err)
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		kind = kindTimeout
	}
	s.metrics.observe(reading, err, kind, time.Since(start))

	l := zerolog.Ctx(ctx)
	if err != nil {
		l.Error().Err(err).Str("Kind", kind).Msg("Sensor read failed")
	} else {
		l.Debug().Stringer("Reading", reading).Msg("Sensor read")
	}
	return reading, kind, err
}

func (s *server) read(w http.ResponseWriter, r *http.Request) {
	reading, kind, err := s.acquire(r.Context())
	if err != nil {
		s.writeError(w, kind, err)
		return
	}
	writeJSON(w, http.StatusOK, readResponse{
		Status:     "ok",
		Timestamp:  s.timestamp(),
		TempC:      round2(reading.TemperatureC),
		TempF:      round2(reading.TemperatureF),
		Humidity:   round2(reading.Humidity),
		Busy:       reading.Busy,
		StatusByte: reading.Status,
	})
}

func (s *server) readPNG(w http.ResponseWriter, r *http.Request) {
	reading, kind, err := s.acquire(r.Context())
	if err != nil {
		s.writeError(w, kind, err)
		return
	}
	var buf bytes.Buffer
	if err := readout.EncodePNG(&buf, reading, nil); err != nil {
		s.writeError(w, "render", err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = buf.WriteTo(w)
}

func (s *server) writeError(w http.ResponseWriter, kind string, err error) {
	code := http.StatusInternalServerError
	if kind == kindTimeout {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, errorResponse{
		Status:    "error",
		Timestamp: s.timestamp(),
		Error:     err.Error(),
		Kind:      kind,
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("Failed to write response")
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.code = code
	s.ResponseWriter.WriteHeader(code)
}

// withRequestID tags each request with a UUIDv7, echoed in X-Request-Id and
// attached to the request logger.
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuidv7.New().String()
		w.Header().Set("X-Request-Id", id)
		l := log.With().Str("RequestID", id).Logger()
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r.WithContext(l.WithContext(r.Context())))
		l.Info().
			Str("Method", r.Method).
			Str("Path", r.URL.Path).
			Int("Status", rec.code).
			Dur("Duration", time.Since(start)).
			Msg("Handled request")
	})
}
