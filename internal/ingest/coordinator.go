// Package ingest uploads catalog rows to the vector index in checkpointed
// batches so an interrupted run resumes where it stopped.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"catalog/internal/checkpoint"
	"catalog/internal/embeddings"
	"catalog/internal/models"
	"catalog/internal/vectorindex"

	"github.com/rs/zerolog"
)

// State of a run
type State string

const (
	StateInit       State = "INIT"
	StateResuming   State = "RESUMING"
	StateProcessing State = "PROCESSING"
	StateCompleted  State = "COMPLETED"
	StateAborted    State = "ABORTED"
)

// Stage names the step a batch failed in
type Stage string

const (
	StageEmbed      Stage = "embed"
	StageUpsert     Stage = "upsert"
	StageCheckpoint Stage = "checkpoint"
)

// BatchFailure is an unrecoverable error for rows [Start, End)
type BatchFailure struct {
	Start int
	End   int
	Stage Stage
	Err   error
}

func (e *BatchFailure) Error() string {
	return fmt.Sprintf("batch %d-%d failed during %s: %v", e.Start, e.End-1, e.Stage, e.Err)
}

func (e *BatchFailure) Unwrap() error {
	return e.Err
}

// RowSource supplies the ordered row set
type RowSource interface {
	LoadRows() ([]models.ProductRow, error)
}

// Progress is reported after each committed batch
type Progress struct {
	Start    int
	End      int
	Total    int
	Uploaded int
}

// Options tune a run. Zero values fall back to the defaults below.
type Options struct {
	BatchSize       int
	UpsertBatchSize int
	// BatchDelay is waited between batches, never after the last one
	BatchDelay time.Duration
	// UpsertPolicy retries failed upsert calls
	UpsertPolicy embeddings.RetryPolicy
	IndexSpec    vectorindex.Spec
	ReadyTimeout time.Duration
	// Sleep defaults to a context-aware timer
	Sleep   embeddings.SleepFunc
	OnBatch func(Progress)
}

const (
	DefaultBatchSize       = 100
	DefaultUpsertBatchSize = 100
	DefaultReadyTimeout    = 60 * time.Second
)

// Result summarizes a run
type Result struct {
	State       State
	Transitions []State
	Total       int
	StartOffset int
	Batches     int
	Uploaded    int
	Skipped     int
	Stats       *vectorindex.Stats
	Err         error
}

func (r *Result) enter(s State) {
	r.State = s
	r.Transitions = append(r.Transitions, s)
}

// Coordinator drives normalize, embed, upsert and checkpoint for each batch.
// Batches run strictly one after another.
type Coordinator struct {
	source   RowSource
	embedder embeddings.Embedder
	index    vectorindex.Index
	store    checkpoint.Store
	opts     Options
	logger   zerolog.Logger
}

// New wires a coordinator from its collaborators
func New(source RowSource, embedder embeddings.Embedder, index vectorindex.Index, store checkpoint.Store, opts Options, logger zerolog.Logger) *Coordinator {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.UpsertBatchSize <= 0 {
		opts.UpsertBatchSize = DefaultUpsertBatchSize
	}
	if opts.UpsertPolicy.MaxAttempts <= 0 {
		opts.UpsertPolicy = embeddings.DefaultRetryPolicy()
	}
	if opts.ReadyTimeout <= 0 {
		opts.ReadyTimeout = DefaultReadyTimeout
	}
	if opts.IndexSpec.Name == "" {
		opts.IndexSpec.Name = index.Name()
	}
	if opts.Sleep == nil {
		opts.Sleep = sleepContext
	}

	c := &Coordinator{
		source:   source,
		embedder: embedder,
		index:    index,
		store:    store,
		opts:     opts,
		logger:   logger.With().Str("component", "ingest").Logger(),
	}
	if c.opts.UpsertPolicy.OnRetry == nil {
		c.opts.UpsertPolicy.OnRetry = func(attempt int, wait time.Duration, err error) {
			c.logger.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", wait).Msg("Upsert failed, retrying")
		}
	}
	return c
}

// Run processes every row after the stored checkpoint. Setup failures
// (loading rows, reading the checkpoint, preparing the index) return an error
// before any batch runs. A batch failure returns a Result in StateAborted
// together with the *BatchFailure.
func (c *Coordinator) Run(ctx context.Context) (*Result, error) {
	result := &Result{StartOffset: 0}
	result.enter(StateInit)

	rows, err := c.source.LoadRows()
	if err != nil {
		return result, fmt.Errorf("failed to load rows: %w", err)
	}
	result.Total = len(rows)
	c.logger.Info().Int("rows", len(rows)).Msg("Loaded catalog rows")

	if len(rows) > 0 {
		result.enter(StateResuming)
		stored, err := c.store.Load()
		if err != nil {
			return result, fmt.Errorf("failed to read checkpoint: %w", err)
		}
		result.StartOffset = stored + 1
		if stored != checkpoint.None {
			c.logger.Info().Int("last_processed_index", stored).Int("start", result.StartOffset).Msg("Resuming from checkpoint")
		}
	}

	if err := vectorindex.Ensure(ctx, c.index, c.opts.IndexSpec, c.opts.ReadyTimeout, c.logger); err != nil {
		return result, fmt.Errorf("index setup failed: %w", err)
	}

	result.enter(StateProcessing)
	size := c.opts.BatchSize
	totalBatches := (len(rows) - result.StartOffset + size - 1) / size

	for start := result.StartOffset; start < len(rows); start += size {
		end := min(start+size, len(rows))

		if err := c.processBatch(ctx, rows[start:end], start, result); err != nil {
			return c.abort(result, err)
		}
		if err := c.store.Save(end - 1); err != nil {
			return c.abort(result, &BatchFailure{Start: start, End: end, Stage: StageCheckpoint, Err: err})
		}
		result.Batches++

		c.logger.Info().
			Int("batch", result.Batches).
			Int("of", totalBatches).
			Int("start", start).
			Int("end", end-1).
			Int("uploaded", result.Uploaded).
			Msg("Batch committed")

		if c.opts.OnBatch != nil {
			c.opts.OnBatch(Progress{Start: start, End: end, Total: len(rows), Uploaded: result.Uploaded})
		}

		if end < len(rows) && c.opts.BatchDelay > 0 {
			if err := c.opts.Sleep(ctx, c.opts.BatchDelay); err != nil {
				next := min(end+size, len(rows))
				return c.abort(result, &BatchFailure{Start: end, End: next, Stage: StageEmbed, Err: err})
			}
		}
	}

	if err := c.store.Clear(); err != nil {
		c.logger.Warn().Err(err).Msg("Failed to clear checkpoint")
	}
	result.enter(StateCompleted)

	stats, err := c.index.DescribeStats(ctx)
	if err != nil {
		c.logger.Warn().Err(err).Msg("Failed to read final index statistics")
	} else {
		result.Stats = &stats
	}

	event := c.logger.Info().Int("uploaded", result.Uploaded).Int("skipped", result.Skipped)
	if result.Stats != nil {
		event = event.Uint64("index_vectors", result.Stats.TotalVectorCount).Int("dimension", result.Stats.Dimension)
	}
	event.Msg("Ingestion complete")

	return result, nil
}

// processBatch embeds and upserts rows that start at offset
func (c *Coordinator) processBatch(ctx context.Context, batch []models.ProductRow, offset int, result *Result) error {
	end := offset + len(batch)

	ids := make([]string, 0, len(batch))
	texts := make([]string, 0, len(batch))
	metadata := make([]map[string]any, 0, len(batch))
	for i, row := range batch {
		id, ok := embeddings.RecordID(row)
		if !ok {
			result.Skipped++
			c.logger.Warn().Int("row", offset+i).Str("product", row.ProductName).Msg("Skipping row without variant id")
			continue
		}
		text, meta := embeddings.Normalize(row)
		ids = append(ids, id)
		texts = append(texts, text)
		metadata = append(metadata, meta)
	}
	if len(texts) == 0 {
		return nil
	}

	vectors, err := c.embedder.Embed(ctx, texts)
	if err != nil {
		return &BatchFailure{Start: offset, End: end, Stage: StageEmbed, Err: err}
	}
	if len(vectors) != len(texts) {
		err := fmt.Errorf("%w: expected %d, got %d", embeddings.ErrVectorCountMismatch, len(texts), len(vectors))
		return &BatchFailure{Start: offset, End: end, Stage: StageEmbed, Err: err}
	}

	records := make([]models.EmbeddingRecord, len(vectors))
	for i := range vectors {
		records[i] = models.EmbeddingRecord{ID: ids[i], Vector: vectors[i], Metadata: metadata[i]}
	}

	for sub := 0; sub < len(records); sub += c.opts.UpsertBatchSize {
		chunk := records[sub:min(sub+c.opts.UpsertBatchSize, len(records))]
		err := c.opts.UpsertPolicy.Do(ctx, func(ctx context.Context) error {
			return c.index.Upsert(ctx, chunk)
		})
		if err != nil {
			return &BatchFailure{Start: offset, End: end, Stage: StageUpsert, Err: err}
		}
		result.Uploaded += len(chunk)
	}
	return nil
}

// abort persists the offset before the failed batch. Sub-batches of that
// batch already upserted are overwritten on resume.
func (c *Coordinator) abort(result *Result, err error) (*Result, error) {
	var failure *BatchFailure
	if errors.As(err, &failure) && failure.Stage != StageCheckpoint {
		if saveErr := c.store.Save(failure.Start - 1); saveErr != nil {
			c.logger.Error().Err(saveErr).Int("offset", failure.Start-1).Msg("Failed to persist checkpoint while aborting")
			err = errors.Join(err, saveErr)
		}
	}

	result.enter(StateAborted)
	result.Err = err
	c.logger.Error().Err(err).Int("uploaded", result.Uploaded).Msg("Ingestion aborted, rerun to resume")
	return result, err
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
