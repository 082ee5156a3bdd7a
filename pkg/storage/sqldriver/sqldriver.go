// Package sqldriver implements storage.Driver on any database/sql backend
// supported by ent's dialect-aware SQL builder. The sqlite and postgres
// packages open the connection and embed a Driver.
package sqldriver

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/papercomputeco/uistream/pkg/llm"
	"github.com/papercomputeco/uistream/pkg/storage"
)

const table = "transcripts"

// columns in scan order.
var columns = []string{
	"id",
	"provider",
	"model",
	"started_at",
	"completed_at",
	"messages",
	"text",
	"steps",
	"tool_calls",
	"finish_reason",
	"usage",
	"error",
}

// Driver provides storage operations over an ent SQL driver.
// It is database-agnostic and can be embedded by specific drivers.
type Driver struct {
	drv *entsql.Driver
}

// New wraps an open ent SQL driver.
func New(drv *entsql.Driver) *Driver {
	return &Driver{drv: drv}
}

// Open opens dsn with the database/sql driver registered as driverName, runs
// setup on the pool, checks the connection and migrates the schema. The pool
// is closed again on any failure.
func Open(ctx context.Context, driverName, dialectName, dsn string, setup func(context.Context, *sql.DB) error) (*Driver, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if setup != nil {
		if err := setup(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	d := New(entsql.OpenDB(dialectName, db))
	if err := d.Migrate(ctx); err != nil {
		d.Close()
		return nil, err
	}
	return d, nil
}

// Migrate creates the transcripts table if it does not exist.
func (d *Driver) Migrate(ctx context.Context) error {
	b := entsql.Dialect(d.drv.Dialect())
	query, args := b.CreateTable(table).
		IfNotExists().
		Columns(
			b.Column("id").Type("VARCHAR(64)").Attr("NOT NULL"),
			b.Column("provider").Type("TEXT").Attr("NOT NULL"),
			b.Column("model").Type("TEXT").Attr("NOT NULL"),
			b.Column("started_at").Type("BIGINT").Attr("NOT NULL"),
			b.Column("completed_at").Type("BIGINT").Attr("NOT NULL"),
			b.Column("messages").Type("TEXT").Attr("NOT NULL"),
			b.Column("text").Type("TEXT").Attr("NOT NULL"),
			b.Column("steps").Type("INTEGER").Attr("NOT NULL"),
			b.Column("tool_calls").Type("TEXT").Attr("NOT NULL"),
			b.Column("finish_reason").Type("TEXT").Attr("NOT NULL"),
			b.Column("usage").Type("TEXT").Attr("NOT NULL"),
			b.Column("error").Type("TEXT").Attr("NOT NULL"),
		).
		PrimaryKey("id").
		Query()

	if err := d.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Put stores a transcript. Returns false if the id already exists.
func (d *Driver) Put(ctx context.Context, t *storage.Transcript) (bool, error) {
	if err := t.Validate(); err != nil {
		return false, err
	}

	messages, err := json.Marshal(t.Messages)
	if err != nil {
		return false, fmt.Errorf("failed to marshal messages: %w", err)
	}
	toolCalls, err := json.Marshal(t.ToolCalls)
	if err != nil {
		return false, fmt.Errorf("failed to marshal tool calls: %w", err)
	}
	var usage []byte
	if t.Usage != nil {
		usage, err = json.Marshal(t.Usage)
		if err != nil {
			return false, fmt.Errorf("failed to marshal usage: %w", err)
		}
	}

	query, args := entsql.Dialect(d.drv.Dialect()).
		Insert(table).
		Columns(columns...).
		Values(
			t.ID,
			t.Provider,
			t.Model,
			toUnix(t.StartedAt),
			toUnix(t.CompletedAt),
			string(messages),
			t.Text,
			t.Steps,
			string(toolCalls),
			t.FinishReason,
			string(usage),
			t.Error,
		).
		OnConflict(entsql.ConflictColumns("id"), entsql.DoNothing()).
		Query()

	var res sql.Result
	if err := d.drv.Exec(ctx, query, args, &res); err != nil {
		return false, fmt.Errorf("could not execute transcript insert: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("reading affected rows: %w", err)
	}
	return n > 0, nil
}

// Get retrieves a transcript by id.
func (d *Driver) Get(ctx context.Context, id string) (*storage.Transcript, error) {
	b := entsql.Dialect(d.drv.Dialect())
	query, args := b.Select(columns...).
		From(b.Table(table)).
		Where(entsql.EQ("id", id)).
		Query()

	found, err := d.query(ctx, query, args)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, storage.NotFoundError{ID: id}
	}
	return found[0], nil
}

// List returns up to limit transcripts, newest first.
func (d *Driver) List(ctx context.Context, limit int) ([]*storage.Transcript, error) {
	if limit <= 0 {
		limit = storage.DefaultListLimit
	}

	b := entsql.Dialect(d.drv.Dialect())
	query, args := b.Select(columns...).
		From(b.Table(table)).
		OrderBy(entsql.Desc("started_at"), entsql.Desc("id")).
		Limit(limit).
		Query()

	return d.query(ctx, query, args)
}

// DB returns the underlying database handle.
func (d *Driver) DB() *sql.DB {
	return d.drv.DB()
}

// Close closes the underlying database.
func (d *Driver) Close() error {
	return d.drv.Close()
}

func (d *Driver) query(ctx context.Context, query string, args []any) ([]*storage.Transcript, error) {
	rows := &entsql.Rows{}
	if err := d.drv.Query(ctx, query, args, rows); err != nil {
		return nil, fmt.Errorf("failed to query transcripts: %w", err)
	}
	defer rows.Close()

	var result []*storage.Transcript
	for rows.Next() {
		t, err := scan(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read transcripts: %w", err)
	}
	return result, nil
}

func scan(rows *entsql.Rows) (*storage.Transcript, error) {
	var (
		t                   storage.Transcript
		started, completed  int64
		messages, toolCalls string
		usage               string
	)

	if err := rows.Scan(
		&t.ID,
		&t.Provider,
		&t.Model,
		&started,
		&completed,
		&messages,
		&t.Text,
		&t.Steps,
		&toolCalls,
		&t.FinishReason,
		&usage,
		&t.Error,
	); err != nil {
		return nil, fmt.Errorf("failed to scan transcript: %w", err)
	}

	t.StartedAt = fromUnix(started)
	t.CompletedAt = fromUnix(completed)

	if err := json.Unmarshal([]byte(messages), &t.Messages); err != nil {
		return nil, fmt.Errorf("failed to unmarshal messages of %s: %w", t.ID, err)
	}
	if err := json.Unmarshal([]byte(toolCalls), &t.ToolCalls); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tool calls of %s: %w", t.ID, err)
	}
	if usage != "" {
		t.Usage = &llm.Usage{}
		if err := json.Unmarshal([]byte(usage), t.Usage); err != nil {
			return nil, fmt.Errorf("failed to unmarshal usage of %s: %w", t.ID, err)
		}
	}

	return &t, nil
}

// Timestamps are stored as unix nanoseconds so both dialects share one
// column type.
func toUnix(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func fromUnix(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n).UTC()
}
