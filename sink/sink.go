package sink

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/franco-bianco/solanatrades-go/trades"
)

// Sink persists or publishes the trades of a block.
type Sink interface {
	Write(ctx context.Context, batch trades.Batch) error
	Close() error
}

// Multi fans a batch out to every sink.
type Multi struct {
	sinks []Sink
}

func NewMulti(sinks ...Sink) *Multi {
	return &Multi{sinks: sinks}
}

// Write hands batch to every sink, even after a failure, and joins the errors.
func (m *Multi) Write(ctx context.Context, batch trades.Batch) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Write(ctx, batch); err != nil {
			errs = append(errs, fmt.Errorf("%T: %w", s, err))
		}
	}
	return errors.Join(errs...)
}

func (m *Multi) Close() error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *Multi) Len() int {
	return len(m.sinks)
}

// slotPath returns <dir>/<date>/<slot><ext>, creating the date directory.
func slotPath(dir string, batch trades.Batch, ext string) (string, error) {
	folder := filepath.Join(dir, batch.Date)
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", folder, err)
	}
	return filepath.Join(folder, strconv.FormatUint(batch.Slot, 10)+ext), nil
}
