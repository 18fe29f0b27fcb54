package sink

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/finstat-dev/finstat/internal/history"
	"github.com/finstat-dev/finstat/internal/model"
	"github.com/finstat-dev/finstat/internal/statement"
)

// CSV writes one wide file per statement kind and one tall file per
// granularity into a directory.
type CSV struct {
	dir string
}

// NewCSV creates a CSV sink writing into dir.
func NewCSV(dir string) *CSV {
	return &CSV{dir: dir}
}

func (s *CSV) Name() string { return "csv" }

// WidePath returns the wide file of kind at granularity g.
func (s *CSV) WidePath(kind model.StatementKind, g model.Granularity) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s_%s.csv", kind, g))
}

// TallPath returns the tall file of granularity g.
func (s *CSV) TallPath(g model.Granularity) string {
	return filepath.Join(s.dir, fmt.Sprintf("statements_%s.csv", g))
}

// Write writes every table of out, replacing earlier files.
func (s *CSV) Write(ctx context.Context, out *model.Output) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}

	for _, w := range out.Wide {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := writeFile(s.WidePath(w.Kind, out.Granularity), func(f *os.File) error {
			return statement.WriteWide(f, w)
		})
		if err != nil {
			return err
		}
	}

	if out.Tall == nil {
		return nil
	}
	return writeFile(s.TallPath(out.Granularity), func(f *os.File) error {
		return statement.WriteTall(f, out.Tall)
	})
}

// HistoryPath returns the price history file.
func (s *CSV) HistoryPath() string {
	return filepath.Join(s.dir, "history.csv")
}

// WriteHistory writes h to history.csv, replacing the earlier file.
func (s *CSV) WriteHistory(ctx context.Context, h *model.PriceHistory) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return writeFile(s.HistoryPath(), func(f *os.File) error {
		return history.WriteCSV(f, h)
	})
}

// writeFile writes to a temporary file next to path and renames it into
// place, so readers never see a partial table.
func writeFile(path string, write func(*os.File) error) error {
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Base(path), err)
	}
	tmp := f.Name()
	defer os.Remove(tmp)

	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", filepath.Base(path), err)
	}
	if err := os.Chmod(tmp, 0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("renaming %s: %w", filepath.Base(path), err)
	}
	return nil
}
