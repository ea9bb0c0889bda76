package results

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// Table names inside star.db.
const (
	samplesTable = "samples"
	derivedTable = "derived_samples"
)

// SaveFrames writes the posterior and derived sample tables to star.db in
// the given directory, replacing any existing file contents.
func SaveFrames(ctx context.Context, dir string, samples, derived *Frame) error {
	db, err := openDB(dir)
	if err != nil {
		return err
	}
	defer db.Close()

	for table, frame := range map[string]*Frame{
		samplesTable: samples,
		derivedTable: derived,
	} {
		if err := saveTable(ctx, db, table, frame); err != nil {
			return err
		}
	}
	return nil
}

// LoadFrames reads both sample tables back from star.db.
func LoadFrames(ctx context.Context, dir string) (samples, derived *Frame, err error) {
	db, err := openDB(dir)
	if err != nil {
		return nil, nil, err
	}
	defer db.Close()

	if samples, err = loadTable(ctx, db, samplesTable); err != nil {
		return nil, nil, err
	}
	if derived, err = loadTable(ctx, db, derivedTable); err != nil {
		return nil, nil, err
	}
	return samples, derived, nil
}

func openDB(dir string) (*sql.DB, error) {
	path := filepath.Join(dir, SamplesFile)
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sample db: %w", err)
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}
	return db, nil
}

func saveTable(ctx context.Context, db *sql.DB, table string, frame *Frame) error {
	if frame == nil || len(frame.Columns) == 0 {
		return fmt.Errorf("save %s: empty frame", table)
	}

	defs := make([]string, len(frame.Columns))
	placeholders := make([]string, len(frame.Columns))
	quoted := make([]string, len(frame.Columns))
	for i, col := range frame.Columns {
		quoted[i] = quoteIdent(col)
		defs[i] = quoted[i] + " REAL NOT NULL"
		placeholders[i] = "?"
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+quoteIdent(table)); err != nil {
		return fmt.Errorf("reset table %s: %w", table, err)
	}
	create := fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(table), strings.Join(defs, ", "))
	if _, err := tx.ExecContext(ctx, create); err != nil {
		return fmt.Errorf("create table %s: %w", table, err)
	}

	insert := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(table), strings.Join(quoted, ", "), strings.Join(placeholders, ", "))
	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return fmt.Errorf("prepare insert for %s: %w", table, err)
	}
	defer stmt.Close()

	args := make([]any, len(frame.Columns))
	for _, row := range frame.Rows {
		for i, v := range row {
			args[i] = v
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert into %s: %w", table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit %s: %w", table, err)
	}
	return nil
}

func loadTable(ctx context.Context, db *sql.DB, table string) (*Frame, error) {
	rows, err := db.QueryContext(ctx, "SELECT * FROM "+quoteIdent(table)+" ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns of %s: %w", table, err)
	}

	frame := NewFrame(columns)
	values := make([]float64, len(columns))
	scan := make([]any, len(columns))
	for i := range values {
		scan[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(scan...); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		row := make([]float64, len(values))
		copy(row, values)
		frame.Rows = append(frame.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", table, err)
	}
	return frame, nil
}

// quoteIdent wraps a column or table name in double quotes. Names come from
// model parameter lists, never user input, but band suffixes keep this
// necessary for case preservation.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
