package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/krishimitra/krishi_mitra/internal/config"
	"github.com/krishimitra/krishi_mitra/internal/logging"
	"github.com/krishimitra/krishi_mitra/internal/services/evaluation"
	"github.com/krishimitra/krishi_mitra/internal/services/health"
	"github.com/krishimitra/krishi_mitra/internal/services/records"
	"github.com/krishimitra/krishi_mitra/internal/speech"
	"github.com/krishimitra/krishi_mitra/internal/store"
	"github.com/krishimitra/krishi_mitra/pkg/dedup"
	"github.com/krishimitra/krishi_mitra/pkg/mqttbus"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the MQTT sensor ingest",
	RunE:  runServe,
}

func newLogger(cfg *config.Config) (*zap.SugaredLogger, error) {
	level := cfg.Log.Level
	if logLevel != "" {
		level = logLevel
	}
	return logging.New(level)
}

// openStore returns the configured backend and a function releasing it.
func openStore(ctx context.Context, cfg *config.Config, log *zap.SugaredLogger) (store.Store, func(), error) {
	switch cfg.Store.Backend {
	case config.BackendSupabase:
		log.Infof("store: using hosted backend at %s", cfg.Store.Supabase.URL)
		return store.NewRESTStore(cfg.Store.Supabase, log), func() {}, nil
	default:
		s, err := store.OpenSQLite(ctx, cfg.Store.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		log.Infof("store: using sqlite at %s", cfg.Store.SQLitePath)
		return s, func() { _ = s.Close() }, nil
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// === Store ===
	st, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()
	var checks []health.Check
	if p, ok := st.(interface{ Ping(context.Context) error }); ok {
		checks = append(checks, health.Ping("store", p.Ping))
	}

	// === Influx mirror ===
	var (
		mirror *store.Mirror
		trend  records.TrendSource
		rec    evaluation.Recorder
	)
	if cfg.Influx.Enabled() {
		opts := influxdb2.DefaultOptions().
			SetBatchSize(cfg.Influx.BatchSize).
			SetFlushInterval(uint(cfg.Influx.FlushInterval.Milliseconds()))
		influx := influxdb2.NewClientWithOptions(cfg.Influx.URL, cfg.Influx.Token, opts)
		writeAPI := influx.WriteAPI(cfg.Influx.Org, cfg.Influx.Bucket)
		mirror = store.NewMirror(writeAPI, influx.QueryAPI(cfg.Influx.Org), cfg.Influx.Bucket, log)
		defer func() {
			writeAPI.Flush()
			influx.Close()
			<-mirror.Done()
		}()
		st = mirror.Wrap(st)
		trend, rec = mirror, mirror
		checks = append(checks,
			health.Ping("influx", func(ctx context.Context) error {
				if ok, err := influx.Ping(ctx); !ok {
					return fmt.Errorf("ping failed: %v", err)
				}
				return nil
			}),
			health.RecentErrors("influx_write", mirror.LastErrorAge, 30*time.Second),
		)
		log.Infof("store: mirroring soil readings to influx bucket %s", cfg.Influx.Bucket)
	}

	// === MQTT ===
	var (
		client mqtt.Client
		pub    mqttbus.Publisher
	)
	if cfg.MQTT.Enabled() {
		client, err = mqttbus.Connect(ctx, cfg.MQTT.Broker, log)
		if err != nil {
			return err
		}
		defer mqttbus.Close(client, log)
		pub = mqttbus.NewPublisher(client)
		checks = append(checks, health.MQTT(client))
	}

	// === Speech ===
	var speaker speech.Speaker
	switch cfg.Speech.Backend {
	case config.SpeechLog:
		voice := speech.NewVoice(speech.NewWriterSynth(zap.NewStdLog(log.Desugar()).Writer(), true), log)
		defer voice.Close()
		speaker = voice
	case config.SpeechMQTT:
		synth := speech.NewMQTTSynth(pub)
		if cfg.Speech.Topic != "" {
			synth.Topic = cfg.Speech.Topic
		}
		voice := speech.NewVoice(synth, log)
		defer voice.Close()
		speaker = voice
	}

	// === HTTP ===
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := evaluation.NewMetrics(reg)
	pipeline := evaluation.NewPipeline(st, speaker, metrics, log)

	mux := http.NewServeMux()
	mux.Handle("GET /healthz", health.Handler(checks...))
	mux.Handle("GET /readyz", health.ReadyHandler(checks...))
	mux.Handle("GET /metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	evaluation.Register(mux, pipeline)
	records.New(st, pipeline, trend, log).Register(mux)

	hs := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.HTTP.Port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Infof("http: listening on %s", hs.Addr)
		if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("http: shutting down")
		shCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		return hs.Shutdown(shCtx)
	})

	// === Sensor ingest ===
	if client != nil {
		ingest := evaluation.NewIngest(pipeline, pub, rec, dedup.New(cfg.MQTT.DedupTTL, cfg.MQTT.DedupMax))
		consumer := mqttbus.NewConsumer(client, cfg.MQTT.SensorTopics, ingest.Handle, log)
		g.Go(func() error { return consumer.Run(gctx) })
	}

	return g.Wait()
}
