package indexer

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"sync/atomic"
	"time"

	"github.com/gagliardetto/solana-go/rpc"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/franco-bianco/solanatrades-go/fetch"
	"github.com/franco-bianco/solanatrades-go/metrics"
	"github.com/franco-bianco/solanatrades-go/trades"
)

const (
	DefaultConcurrency          = 25
	DefaultReprocessConcurrency = 10
	defaultPollInterval         = 2 * time.Second
)

var ErrInvalidRange = errors.New("invalid slot range")

// Fetcher retrieves blocks. Skipped slots are reported as fetch.ErrSlotSkipped.
type Fetcher interface {
	GetBlock(ctx context.Context, slot uint64) (*rpc.GetBlockResult, error)
	LatestSlot(ctx context.Context) (uint64, error)
}

// BlockHandler decodes and persists one block. *trades.BlockProcessor
// implements it.
type BlockHandler interface {
	ProcessBlock(ctx context.Context, slot uint64, block *rpc.GetBlockResult) (trades.Batch, error)
}

// Recorder is told when a block starts and how it ended. *metrics.Metrics
// implements it.
type Recorder interface {
	BlockStarted()
	BlockFinished(slot uint64, status string, elapsed time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) BlockStarted() {}
func (nopRecorder) BlockFinished(uint64, string, time.Duration) {}

type Options struct {
	// Concurrency caps in-flight blocks for IndexRange and Follow.
	Concurrency int
	// ReprocessConcurrency caps in-flight blocks for Reprocess.
	ReprocessConcurrency int
	PollInterval         time.Duration
	Recorder             Recorder
	Logger               *logrus.Logger
}

// Summary counts block outcomes for one run.
type Summary struct {
	OK      uint64
	Skipped uint64
	Failed  uint64
	Trades  uint64
	Elapsed time.Duration
}

func (s Summary) Blocks() uint64 {
	return s.OK + s.Skipped + s.Failed
}

type counters struct {
	ok, skipped, failed, trades atomic.Uint64
}

func (c *counters) add(status string, tradeCount int) {
	switch status {
	case metrics.BlockOK:
		c.ok.Add(1)
		c.trades.Add(uint64(tradeCount))
	case metrics.BlockSkipped:
		c.skipped.Add(1)
	default:
		c.failed.Add(1)
	}
}

func (c *counters) summary(elapsed time.Duration) Summary {
	return Summary{
		OK:      c.ok.Load(),
		Skipped: c.skipped.Load(),
		Failed:  c.failed.Load(),
		Trades:  c.trades.Load(),
		Elapsed: elapsed,
	}
}

// Indexer fetches and processes blocks, at most a fixed number at a time.
// A failure on one block is logged and never stops the run.
type Indexer struct {
	fetcher  Fetcher
	blocks   BlockHandler
	recorder Recorder
	log      *logrus.Logger

	concurrency          int64
	reprocessConcurrency int64
	pollInterval         time.Duration
}

func New(fetcher Fetcher, blocks BlockHandler, opts Options) *Indexer {
	ix := &Indexer{
		fetcher:              fetcher,
		blocks:               blocks,
		recorder:             opts.Recorder,
		log:                  opts.Logger,
		concurrency:          int64(opts.Concurrency),
		reprocessConcurrency: int64(opts.ReprocessConcurrency),
		pollInterval:         opts.PollInterval,
	}
	if ix.recorder == nil {
		ix.recorder = nopRecorder{}
	}
	if ix.log == nil {
		ix.log = logrus.New()
	}
	if ix.concurrency < 1 {
		ix.concurrency = DefaultConcurrency
	}
	if ix.reprocessConcurrency < 1 {
		ix.reprocessConcurrency = DefaultReprocessConcurrency
	}
	if ix.pollInterval <= 0 {
		ix.pollInterval = defaultPollInterval
	}
	return ix
}

// IndexRange processes every slot in [start, end], newest first.
func (ix *Indexer) IndexRange(ctx context.Context, start, end uint64) (Summary, error) {
	if start > end {
		return Summary{}, fmt.Errorf("%w: start %d is after end %d", ErrInvalidRange, start, end)
	}
	ix.log.WithFields(logrus.Fields{"start": start, "end": end, "concurrency": ix.concurrency}).Info("starting indexer")
	return ix.run(ctx, ix.concurrency, descending(start, end))
}

// Reprocess processes an explicit list of slots in the given order.
func (ix *Indexer) Reprocess(ctx context.Context, slots []uint64) (Summary, error) {
	ix.log.WithFields(logrus.Fields{"slots": len(slots), "concurrency": ix.reprocessConcurrency}).Info("starting reprocess")
	return ix.run(ctx, ix.reprocessConcurrency, func(yield func(uint64) bool) {
		for _, slot := range slots {
			if !yield(slot) {
				return
			}
		}
	})
}

// Follow processes new slots as the chain tip advances, starting at from
// (or at the current tip when from is 0), until ctx is cancelled.
func (ix *Indexer) Follow(ctx context.Context, from uint64) error {
	next := from
	if next == 0 {
		latest, err := ix.fetcher.LatestSlot(ctx)
		if err != nil {
			return fmt.Errorf("latest slot: %w", err)
		}
		next = latest
	}
	ix.log.WithFields(logrus.Fields{"from": next, "poll_interval": ix.pollInterval}).Info("following chain tip")

	ticker := time.NewTicker(ix.pollInterval)
	defer ticker.Stop()

	for {
		latest, err := ix.fetcher.LatestSlot(ctx)
		switch {
		case err != nil && ctx.Err() != nil:
			return ctx.Err()
		case err != nil:
			ix.log.Warnf("latest slot: %v", err)
		case latest >= next:
			summary, _ := ix.run(ctx, ix.concurrency, ascending(next, latest))
			ix.log.WithFields(summaryFields(summary)).Debugf("caught up to slot %d", latest)
			next = latest + 1
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// run admits each slot through a weighted semaphore before spawning its
// task, so at most limit blocks are fetched or decoded at once.
func (ix *Indexer) run(ctx context.Context, limit int64, slots iter.Seq[uint64]) (Summary, error) {
	start := time.Now()
	sem := semaphore.NewWeighted(limit)
	var g errgroup.Group
	var stats counters

	for slot := range slots {
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		g.Go(func() error {
			defer sem.Release(1)
			ix.handle(ctx, slot, &stats)
			return nil
		})
	}
	_ = g.Wait()

	summary := stats.summary(time.Since(start))
	ix.log.WithFields(summaryFields(summary)).Info("run finished")
	return summary, ctx.Err()
}

func (ix *Indexer) handle(ctx context.Context, slot uint64, stats *counters) {
	start := time.Now()
	status := metrics.BlockFailed
	tradeCount := 0
	log := ix.log.WithField("slot", slot)

	ix.recorder.BlockStarted()
	defer func() {
		if r := recover(); r != nil {
			status = metrics.BlockFailed
			log.Errorf("recovered from panic: %v", r)
		}
		ix.recorder.BlockFinished(slot, status, time.Since(start))
		stats.add(status, tradeCount)
	}()

	block, err := ix.fetcher.GetBlock(ctx, slot)
	if errors.Is(err, fetch.ErrSlotSkipped) {
		status = metrics.BlockSkipped
		log.Debug("slot skipped")
		return
	}
	if err != nil {
		log.Warnf("fetch block: %v", err)
		return
	}

	batch, err := ix.blocks.ProcessBlock(ctx, slot, block)
	if err != nil {
		log.Errorf("process block: %v", err)
		return
	}

	status = metrics.BlockOK
	tradeCount = len(batch.Trades)
	log.WithField("trades", tradeCount).Infof("Block %d processed in %v", slot, time.Since(start))
}

func summaryFields(s Summary) logrus.Fields {
	return logrus.Fields{
		"ok":      s.OK,
		"skipped": s.Skipped,
		"failed":  s.Failed,
		"trades":  s.Trades,
		"elapsed": s.Elapsed.Round(time.Millisecond),
	}
}

func descending(start, end uint64) iter.Seq[uint64] {
	return func(yield func(uint64) bool) {
		for slot := end; ; slot-- {
			if !yield(slot) || slot == start {
				return
			}
		}
	}
}

func ascending(start, end uint64) iter.Seq[uint64] {
	return func(yield func(uint64) bool) {
		for slot := start; ; slot++ {
			if !yield(slot) || slot == end {
				return
			}
		}
	}
}
