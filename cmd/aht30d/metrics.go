// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"time"

	"github.com/GermanBionicSystems/aht30/aht30"
	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	reads       *prometheus.CounterVec
	duration    prometheus.Histogram
	temperature prometheus.Gauge
	humidity    prometheus.Gauge
	busy        prometheus.Gauge
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		reads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "aht30_reads_total",
			Help: "Sensor reads by result: ok, or the error kind.",
		}, []string{"result"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "aht30_read_duration_seconds",
			Help:    "Time spent in a sensor read, including the wait for the bus.",
			Buckets: []float64{.085, .1, .125, .15, .2, .3, .5, 1, 2},
		}),
		temperature: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "aht30_temperature_celsius",
			Help: "Temperature of the last successful read in Celsius.",
		}),
		humidity: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "aht30_humidity_ratio",
			Help: "Relative humidity of the last successful read.",
		}),
		busy: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "aht30_busy",
			Help: "1 if the last successful read had the busy bit set.",
		}),
	}
	reg.MustRegister(m.reads, m.duration, m.temperature, m.humidity, m.busy)
	return m
}

func (m *metrics) observe(r aht30.Reading, err error, kind string, d time.Duration) {
	m.duration.Observe(d.Seconds())
	if err != nil {
		m.reads.WithLabelValues(kind).Inc()
		return
	}
	m.reads.WithLabelValues("ok").Inc()
	m.temperature.Set(r.TemperatureC)
	m.humidity.Set(r.Humidity / 100)
	if r.Busy {
		m.busy.Set(1)
	} else {
		m.busy.Set(0)
	}
}
