// Package csv implements the transaction store over a single flat CSV file
// with a dynamic header. The file performs no locking: concurrent writers
// race on the full rewrite and the last complete snapshot wins.
package csv

import (
	"context"
	stdcsv "encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"spendlog/internal/core"
)

// Store persists rows in the CSV file at path. The file is created lazily on
// the first append; the directory must already exist.
type Store struct {
	path string
}

// New returns a store over the CSV file at path.
func New(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Append adds one row at the end of the file, writing a header with the row's
// columns first when the file is missing or empty. Appending never touches
// existing content: a header written for an earlier, narrower row keeps its
// column set, and older rows never gain columns introduced later.
func (s *Store) Append(ctx context.Context, row core.Row) error {
	cols := core.OrderedColumns(row)

	needHeader := true
	if info, err := os.Stat(s.path); err == nil && info.Size() > 0 {
		needHeader = false
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s for append: %w", s.path, err)
	}

	w := stdcsv.NewWriter(f)
	if needHeader {
		if err := w.Write(cols); err != nil {
			f.Close()
			return fmt.Errorf("write header: %w", err)
		}
	}
	record := make([]string, len(cols))
	for i, c := range cols {
		record[i] = row[c]
	}
	if err := w.Write(record); err != nil {
		f.Close()
		return fmt.Errorf("write row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("flush append: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", s.path, err)
	}

	slog.DebugContext(ctx, "Appended transaction row",
		"path", s.path,
		"columns", len(cols),
		"header_written", needHeader)
	return nil
}

// LoadAll reads every row in file order. A missing file is an empty store. A
// file that cannot be opened or parsed is treated as absent: it is
// reinitialized with the baseline header and an empty collection is returned,
// because read problems degrade, they never surface. Records narrower than
// the header leave the tail columns absent from the row; wider records drop
// the extras. All-blank rows are skipped.
func (s *Store) LoadAll(ctx context.Context) ([]core.Row, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []core.Row{}, nil
		}
		s.reinitialize(ctx, err)
		return []core.Row{}, nil
	}
	defer f.Close()

	r := stdcsv.NewReader(f)
	r.FieldsPerRecord = -1 // rows may be narrower or wider than the header
	records, err := r.ReadAll()
	if err != nil {
		s.reinitialize(ctx, err)
		return []core.Row{}, nil
	}
	if len(records) == 0 {
		return []core.Row{}, nil
	}

	header := records[0]
	rows := make([]core.Row, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := make(core.Row, len(header))
		for i, col := range header {
			if i < len(rec) {
				row[col] = rec[i]
			}
		}
		if row.IsBlank() {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// RewriteAll atomically replaces the file with the given collection, using
// the column set of the first row. An empty collection truncates the file to
// zero bytes with no header. Readers observe either the old or the new full
// content, never a partial write.
func (s *Store) RewriteAll(ctx context.Context, rows []core.Row) error {
	if len(rows) == 0 {
		if err := s.writeAll(nil, nil); err != nil {
			return fmt.Errorf("truncate store: %w", err)
		}
		return nil
	}

	cols := core.OrderedColumns(rows[0])
	if err := s.writeAll(cols, rows); err != nil {
		return fmt.Errorf("rewrite store: %w", err)
	}

	slog.DebugContext(ctx, "Rewrote transaction store",
		"path", s.path,
		"rows", len(rows),
		"columns", len(cols))
	return nil
}

// DeleteByID drops every row matching id and rewrites the remainder. The
// rewrite happens even when nothing matched, leaving content and order
// untouched, and core.ErrNotFound reports the miss.
func (s *Store) DeleteByID(ctx context.Context, id string) error {
	rows, err := s.LoadAll(ctx)
	if err != nil {
		return err
	}
	kept, removed := core.RemoveByID(rows, id)
	if err := s.RewriteAll(ctx, kept); err != nil {
		return err
	}
	if removed == 0 {
		return core.ErrNotFound
	}
	return nil
}

// UpdateByID patches the first row matching id and rewrites the collection.
// A patched column must already exist on the row. The rewrite happens whether
// or not a row matched, with core.ErrNotFound reporting the miss.
func (s *Store) UpdateByID(ctx context.Context, id string, patch map[string]string) error {
	rows, err := s.LoadAll(ctx)
	if err != nil {
		return err
	}
	found := core.PatchByID(rows, id, patch)
	if err := s.RewriteAll(ctx, rows); err != nil {
		return err
	}
	if !found {
		return core.ErrNotFound
	}
	return nil
}

// reinitialize replaces an unreadable file with a fresh one holding only the
// baseline header.
func (s *Store) reinitialize(ctx context.Context, cause error) {
	slog.WarnContext(ctx, "Store unreadable, reinitializing with baseline columns",
		"path", s.path,
		"error", cause)
	if err := s.writeAll(core.BaselineColumns, nil); err != nil {
		slog.ErrorContext(ctx, "Store reinitialization failed",
			"path", s.path,
			"error", err)
	}
}

// writeAll writes a complete replacement file via temp file and rename. With
// no columns it produces a zero-byte file.
func (s *Store) writeAll(cols []string, rows []core.Row) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".spendlog-*.csv")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if len(cols) > 0 {
		w := stdcsv.NewWriter(tmp)
		if err = w.Write(cols); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
		record := make([]string, len(cols))
		for _, row := range rows {
			for i, c := range cols {
				record[i] = row[c]
			}
			if err = w.Write(record); err != nil {
				return fmt.Errorf("write row: %w", err)
			}
		}
		w.Flush()
		if err = w.Error(); err != nil {
			return fmt.Errorf("flush rows: %w", err)
		}
	}

	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err = os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	return nil
}
