// Package storage holds the SQLite persistence layer. The transactions table
// mirrors the flat row model: every value is TEXT, and NULL marks a column
// the row never had, as opposed to an empty string the row carries.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"spendlog/internal/core"

	_ "modernc.org/sqlite"
)

// rowColumns carries the row column names in table-column order;
// tableColumns holds the matching table column for each position (meal_type
// holds MealType and so on).
var (
	rowColumns = []string{
		core.ColID,
		core.ColName,
		core.ColAmount,
		core.ColDate,
		core.ColCategory,
		core.ColMealType,
		core.ColLocation,
		core.ColTransportMode,
		core.ColDestination,
	}
	tableColumns = []string{
		"id",
		"name",
		"amount",
		"date",
		"category",
		"meal_type",
		"location",
		"transport_mode",
		"destination",
	}
)

const insertRowSQL = `INSERT INTO transactions (id, name, amount, date, category, meal_type, location, transport_mode, destination)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

const selectAllRowsSQL = `SELECT id, name, amount, date, category, meal_type, location, transport_mode, destination
FROM transactions ORDER BY seq`

type Repository struct {
	db *sql.DB
}

func NewRepository(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// InsertRow appends one row. Columns the row does not carry are stored as
// NULL so they stay absent on the way back out.
func (r *Repository) InsertRow(ctx context.Context, row core.Row) error {
	if _, err := r.db.ExecContext(ctx, insertRowSQL, insertArgs(row)...); err != nil {
		return fmt.Errorf("insert row: %w", err)
	}

	slog.DebugContext(ctx, "Row inserted",
		"id", row[core.ColID],
		"columns", len(row))
	return nil
}

// SelectAllRows returns every row in insertion order. NULL columns are left
// out of the returned maps.
func (r *Repository) SelectAllRows(ctx context.Context) ([]core.Row, error) {
	dbRows, err := r.db.QueryContext(ctx, selectAllRowsSQL)
	if err != nil {
		return nil, fmt.Errorf("select rows: %w", err)
	}
	defer dbRows.Close()

	out := []core.Row{}
	for dbRows.Next() {
		vals := make([]sql.NullString, len(rowColumns))
		scan := make([]any, len(vals))
		for i := range vals {
			scan[i] = &vals[i]
		}
		if err := dbRows.Scan(scan...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}

		row := make(core.Row, len(rowColumns))
		for i, col := range rowColumns {
			if vals[i].Valid {
				row[col] = vals[i].String
			}
		}
		out = append(out, row)
	}
	if err := dbRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return out, nil
}

// ReplaceAllRows swaps the whole table content for the given rows in one
// transaction.
func (r *Repository) ReplaceAllRows(ctx context.Context, rows []core.Row) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM transactions`); err != nil {
		return fmt.Errorf("clear rows: %w", err)
	}
	for _, row := range rows {
		if _, err := tx.ExecContext(ctx, insertRowSQL, insertArgs(row)...); err != nil {
			return fmt.Errorf("insert row: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace: %w", err)
	}

	slog.DebugContext(ctx, "Table content replaced", "rows", len(rows))
	return nil
}

// PatchRowByID updates the first row matching id, touching only columns the
// row already carries: a NULL column stays NULL even when the patch names it.
// Reports whether a row matched.
func (r *Repository) PatchRowByID(ctx context.Context, id string, patch map[string]string) (bool, error) {
	set := make([]string, 0, len(patch))
	args := make([]any, 0, len(patch)+1)
	for i, col := range rowColumns {
		v, ok := patch[col]
		if !ok {
			continue
		}
		tc := tableColumns[i]
		set = append(set, fmt.Sprintf("%s = CASE WHEN %s IS NULL THEN NULL ELSE ? END", tc, tc))
		args = append(args, v)
	}

	if len(set) == 0 {
		var n int64
		err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions WHERE id = ?`, id).Scan(&n)
		if err != nil {
			return false, fmt.Errorf("check row: %w", err)
		}
		return n > 0, nil
	}

	query := fmt.Sprintf(
		`UPDATE transactions SET %s WHERE seq = (SELECT MIN(seq) FROM transactions WHERE id = ?)`,
		strings.Join(set, ", "))
	args = append(args, id)

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("patch row: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("patch row count: %w", err)
	}
	return n > 0, nil
}

// DeleteRowsByID removes every row matching id and returns how many went.
func (r *Repository) DeleteRowsByID(ctx context.Context, id string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return 0, fmt.Errorf("delete rows: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete row count: %w", err)
	}
	return n, nil
}

func insertArgs(row core.Row) []any {
	args := make([]any, len(rowColumns))
	for i, col := range rowColumns {
		if v, ok := row[col]; ok {
			args[i] = v
		}
	}
	return args
}
