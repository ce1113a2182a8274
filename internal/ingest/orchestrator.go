// Package ingest drives the end-to-end ingestion loop: resolve the
// watermark, list message identifiers, plan batches, fetch, parse in
// parallel, and commit each batch independently.
package ingest

import (
	"fmt"
	"sync"
	"time"

	"steam-ledger/internal/batch"
	"steam-ledger/internal/logging"
	"steam-ledger/internal/mailsource"
	"steam-ledger/internal/models"
	"steam-ledger/internal/parser"
)

// Store is the durable transaction ledger the orchestrator commits into.
type Store interface {
	EnsureSchema() error
	InsertIgnore(transactions []models.Transaction) (int64, error)
	MaxDate() (time.Time, bool, error)
}

// Options controls one ingestion run.
type Options struct {
	// Incremental bounds the listing to messages newer than the store's
	// latest transaction date. A full scan is still safe, just slower;
	// the store's uniqueness constraint ignores duplicates either way.
	Incremental bool

	// BatchSize caps identifiers per fetch/commit unit; <= 0 means one
	// batch containing everything.
	BatchSize int

	// Workers bounds the parsing pool; values below 1 mean 1.
	Workers int
}

// Summary aggregates the outcome of a run.
type Summary struct {
	Batches       int
	Messages      int
	Added         int64
	Duplicates    int64
	ParseFailures int
}

// Orchestrator wires a message source, the parser and the store together.
type Orchestrator struct {
	source mailsource.Source
	store  Store
	opts   Options
	logger logging.Logger
}

// New creates an orchestrator.
func New(source mailsource.Source, store Store, opts Options, logger logging.Logger) *Orchestrator {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Orchestrator{
		source: source,
		store:  store,
		opts:   opts,
		logger: logger,
	}
}

// Run executes the ingestion loop. Fetch and commit errors are fatal and
// abort the run; batches committed before the failure stay committed. Parse
// failures are per-message diagnostics and never abort a batch.
func (o *Orchestrator) Run() (Summary, error) {
	var summary Summary

	if err := o.store.EnsureSchema(); err != nil {
		return summary, err
	}

	var since time.Time
	if o.opts.Incremental {
		watermark, ok, err := o.store.MaxDate()
		if err != nil {
			return summary, err
		}
		if ok {
			since = watermark
			o.logger.Info("incremental run",
				logging.Field{Key: logging.FieldSince, Value: since.Format(models.DateLayout)})
		}
	}

	ids, err := o.source.List(since)
	if err != nil {
		return summary, err
	}
	if len(ids) == 0 {
		o.logger.Info("no messages to process")
		return summary, nil
	}

	for i, unit := range batch.Plan(ids, o.opts.BatchSize) {
		messages, err := o.source.Fetch(unit)
		if err != nil {
			return summary, fmt.Errorf("fetch batch %d: %w", i+1, err)
		}
		summary.Messages += len(messages)

		var transactions []models.Transaction
		for _, result := range o.parseAll(messages) {
			if result.err != nil {
				summary.ParseFailures++
				o.logger.WithError(result.err).Warn("skipping unparseable message",
					logging.Field{Key: logging.FieldMessageID, Value: result.id})
				continue
			}
			transactions = append(transactions, result.transactions...)
		}

		added, err := o.store.InsertIgnore(transactions)
		if err != nil {
			return summary, fmt.Errorf("commit batch %d: %w", i+1, err)
		}
		duplicates := int64(len(transactions)) - added

		summary.Batches++
		summary.Added += added
		summary.Duplicates += duplicates
		o.logger.Info(fmt.Sprintf("%d transactions added, %d duplicates ignored", added, duplicates),
			logging.Field{Key: logging.FieldBatch, Value: i + 1},
			logging.Field{Key: logging.FieldCount, Value: len(messages)})
	}

	return summary, nil
}

// parseResult is one message's outcome: extracted transactions or a
// diagnostic, never both.
type parseResult struct {
	id           string
	transactions []models.Transaction
	err          error
}

// parseAll fans one batch of fetched messages out to a bounded worker pool.
// Parsing is pure, so workers share no state and never call back into the
// source; result order is irrelevant to the order-independent store.
func (o *Orchestrator) parseAll(messages map[string][]byte) []parseResult {
	type job struct {
		id  string
		raw []byte
	}

	jobs := make(chan job)
	results := make(chan parseResult, len(messages))

	var wg sync.WaitGroup
	for w := 0; w < o.opts.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				transactions, err := parser.Parse(mailsource.ExtractText(j.raw))
				results <- parseResult{id: j.id, transactions: transactions, err: err}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for id, raw := range messages {
			jobs <- job{id: id, raw: raw}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	var out []parseResult
	for result := range results {
		out = append(out, result)
	}
	return out
}
