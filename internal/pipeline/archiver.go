// Package pipeline holds background jobs that run alongside the simulation
// server.
package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/alanyoungcy/tradesim/internal/domain"
)

// archiveBatchSize caps how many records one archive object holds, so a long
// retention backlog is drained in bounded chunks.
const archiveBatchSize = 5000

// multipartThreshold is the payload size above which the archiver switches
// to a multipart upload.
const multipartThreshold = 8 * 1024 * 1024

// MultipartWriter is satisfied by blob writers that support multipart
// uploads; the archiver uses it opportunistically for large batches.
type MultipartWriter interface {
	PutMultipart(ctx context.Context, path string, data io.Reader, partSize int64) error
}

// Archiver moves old simulation records from the database to object storage
// and then deletes them. Deletion happens only after every batch has been
// uploaded, so a failed run leaves all records in place for the next one.
type Archiver struct {
	store     domain.SimulationStore
	writer    domain.BlobWriter
	retention time.Duration
	interval  time.Duration
	logger    *slog.Logger
}

// NewArchiver creates an Archiver. retention is how long records stay in the
// database; interval is how often RunLoop triggers a run.
func NewArchiver(store domain.SimulationStore, writer domain.BlobWriter, retention, interval time.Duration, logger *slog.Logger) *Archiver {
	return &Archiver{
		store:     store,
		writer:    writer,
		retention: retention,
		interval:  interval,
		logger:    logger.With(slog.String("component", "archiver")),
	}
}

// Run executes a single archive pass: export all records older than the
// retention cutoff as JSONL objects, then delete them. It returns the number
// of records archived.
func (a *Archiver) Run(ctx context.Context) (int64, error) {
	cutoff := time.Now().UTC().Add(-a.retention)
	a.logger.Info("starting archive run", slog.Time("cutoff", cutoff))

	var total int64
	for seq := 0; ; seq++ {
		recs, err := a.store.List(ctx, "", domain.ListOpts{
			Limit:  archiveBatchSize,
			Offset: seq * archiveBatchSize,
			Until:  &cutoff,
		})
		if err != nil {
			return 0, fmt.Errorf("pipeline: archive query: %w", err)
		}
		if len(recs) == 0 {
			break
		}

		buf, err := marshalJSONL(recs)
		if err != nil {
			return 0, fmt.Errorf("pipeline: archive marshal: %w", err)
		}

		path := archivePath(cutoff, seq)
		if err := a.upload(ctx, path, buf); err != nil {
			return 0, fmt.Errorf("pipeline: archive upload: %w", err)
		}

		total += int64(len(recs))
		a.logger.Info("archived batch",
			slog.String("path", path),
			slog.Int("records", len(recs)),
		)

		if len(recs) < archiveBatchSize {
			break
		}
	}

	if total == 0 {
		a.logger.Info("archive run complete, nothing to archive")
		return 0, nil
	}

	deleted, err := a.store.DeleteBefore(ctx, cutoff)
	if err != nil {
		return total, fmt.Errorf("pipeline: archive delete: %w", err)
	}

	a.logger.Info("archive run complete",
		slog.Int64("records", total),
		slog.Int64("deleted", deleted),
	)
	return total, nil
}

// RunLoop runs archive passes at the configured interval until ctx is
// cancelled. An immediate pass runs at startup so a long-stopped instance
// catches up without waiting a full interval.
func (a *Archiver) RunLoop(ctx context.Context) error {
	if _, err := a.Run(ctx); err != nil {
		a.logger.Error("archive run failed", slog.String("error", err.Error()))
	}

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := a.Run(ctx); err != nil {
				a.logger.Error("archive run failed", slog.String("error", err.Error()))
			}
		}
	}
}

func (a *Archiver) upload(ctx context.Context, path string, payload []byte) error {
	if mw, ok := a.writer.(MultipartWriter); ok && len(payload) > multipartThreshold {
		return mw.PutMultipart(ctx, path, bytes.NewReader(payload), int64(len(payload)/4))
	}
	return a.writer.Put(ctx, path, bytes.NewReader(payload), "application/x-ndjson")
}

// archivePath builds the object key for an archive file, partitioned by the
// year-month of the cutoff:
//
//	archive/simulations/2026-08-000.jsonl
func archivePath(cutoff time.Time, seq int) string {
	return fmt.Sprintf("archive/simulations/%s-%03d.jsonl", cutoff.Format("2006-01"), seq)
}

// marshalJSONL serialises records as newline-delimited JSON, one compact
// line per record.
func marshalJSONL(recs []domain.SimulationRecord) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	for i, rec := range recs {
		if err := enc.Encode(rec); err != nil {
			return nil, fmt.Errorf("jsonl encode record %d: %w", i, err)
		}
	}
	return buf.Bytes(), nil
}
