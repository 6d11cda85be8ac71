package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gagliardetto/solana-go/rpc"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"

	"github.com/franco-bianco/solanatrades-go/config"
	"github.com/franco-bianco/solanatrades-go/fetch"
	"github.com/franco-bianco/solanatrades-go/indexer"
	"github.com/franco-bianco/solanatrades-go/metrics"
	"github.com/franco-bianco/solanatrades-go/sink"
	"github.com/franco-bianco/solanatrades-go/trades"
)

// app holds the wired components shared by every command.
type app struct {
	cfg       *config.Config
	log       *logrus.Logger
	fetcher   *fetch.Client
	processor *trades.Processor
	sinks     *sink.Multi
	indexer   *indexer.Indexer
	server    *http.Server
}

func newApp(ctx context.Context, configPath string, withSinks bool) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	log, err := config.NewLogger(cfg)
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	a := &app{cfg: cfg, log: log}
	a.fetcher = fetch.NewClient(fetch.ClientConfig{
		Endpoint:          cfg.RPCURL,
		Commitment:        rpc.CommitmentType(cfg.Commitment),
		RequestsPerSecond: cfg.RequestsPerSecond,
		Burst:             cfg.Burst,
		MaxRetries:        cfg.MaxRetries,
		RetryBackoff:      cfg.RetryBackoff,
		Logger:            log,
	})
	a.processor = trades.NewProcessor(log)
	a.processor.Observer = m

	a.sinks = sink.NewMulti()
	if withSinks {
		if a.sinks, err = buildSinks(ctx, cfg, log); err != nil {
			return nil, err
		}
	}

	a.indexer = indexer.New(a.fetcher, trades.NewBlockProcessor(a.processor, a.sinks), indexer.Options{
		Concurrency:          cfg.Concurrency,
		ReprocessConcurrency: cfg.ReprocessConcurrency,
		PollInterval:         cfg.PollInterval,
		Recorder:             m,
		Logger:               log,
	})

	if cfg.MetricsAddr != "" {
		a.server = metrics.NewServer(reg, m).HTTPServer(cfg.MetricsAddr)
		go func() {
			log.Infof("metrics listening on %s", cfg.MetricsAddr)
			if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Errorf("metrics server: %v", err)
			}
		}()
	}
	return a, nil
}

// buildSinks opens every sink named in output.sinks. Sinks opened before a
// failure are closed again.
func buildSinks(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*sink.Multi, error) {
	var sinks []sink.Sink
	fail := func(err error) (*sink.Multi, error) {
		_ = sink.NewMulti(sinks...).Close()
		return nil, err
	}

	for _, name := range cfg.SinkNames() {
		switch name {
		case config.SinkAvro:
			sinks = append(sinks, sink.NewAvro(cfg.OutputPath, log))
		case config.SinkCSV:
			sinks = append(sinks, sink.NewCSV(cfg.OutputPath))
		case config.SinkParquet:
			p, err := sink.NewParquet(cfg.OutputPath, sink.S3Config{
				Endpoint:  cfg.S3Endpoint,
				Region:    cfg.S3Region,
				Bucket:    cfg.S3Bucket,
				Prefix:    cfg.S3Prefix,
				AccessKey: cfg.S3AccessKey,
				SecretKey: cfg.S3SecretKey,
			}, log)
			if err != nil {
				return fail(fmt.Errorf("parquet sink: %w", err))
			}
			sinks = append(sinks, p)
		case config.SinkClickHouse:
			ch, err := sink.NewClickHouse(ctx, sink.ClickHouseConfig{
				Addr:     cfg.ClickHouseAddr,
				Database: cfg.ClickHouseDatabase,
				Username: cfg.ClickHouseUsername,
				Password: cfg.ClickHousePassword,
			}, log)
			if err != nil {
				return fail(fmt.Errorf("clickhouse sink: %w", err))
			}
			sinks = append(sinks, ch)
		case config.SinkRedis:
			sinks = append(sinks, sink.NewPublisher(cfg.RedisAddr))
		}
	}

	log.WithField("sinks", cfg.SinkNames()).Info("sinks ready")
	return sink.NewMulti(sinks...), nil
}

func (a *app) Close() {
	if a.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = a.server.Shutdown(ctx)
	}
	if err := a.sinks.Close(); err != nil {
		a.log.Errorf("close sinks: %v", err)
	}
}
