package postgresengine

import (
	"context"
	"fmt"
	"time"

	"github.com/openshelf/library-catalog/catalog/postgresengine/internal/adapters"
)

// fakeRows replays canned rows through the adapters.DBRows interface.
type fakeRows struct {
	columns []string
	rows    [][]any
	idx     int
	closed  bool
}

func (r *fakeRows) Next() bool {
	if r.idx >= len(r.rows) {
		return false
	}

	r.idx++

	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	row := r.rows[r.idx-1]

	if len(dest) != len(row) {
		return fmt.Errorf("scan expected %d destinations, got %d", len(row), len(dest))
	}

	for i, d := range dest {
		value := row[i]

		switch target := d.(type) {
		case *any:
			*target = value

		case *int64:
			if value != nil {
				*target = value.(int64)
			}

		case *string:
			if value != nil {
				*target = value.(string)
			}

		case *time.Time:
			if value != nil {
				*target = value.(time.Time)
			}

		case **time.Time:
			if value == nil {
				*target = nil
			} else {
				parsed := value.(time.Time)
				*target = &parsed
			}

		case **string:
			if value == nil {
				*target = nil
			} else {
				parsed := value.(string)
				*target = &parsed
			}

		default:
			return fmt.Errorf("unsupported scan destination type %T", d)
		}
	}

	return nil
}

func (r *fakeRows) Columns() ([]string, error) {
	return r.columns, nil
}

func (r *fakeRows) Close() error {
	r.closed = true
	return nil
}

// fakeDB replays a FIFO queue of query results and records every executed
// query, inside and outside transactions, in order.
type fakeDB struct {
	queue     []queuedResult
	queries   []string
	beginErr  error
	commitErr error
	tx        *fakeTx
}

type queuedResult struct {
	rows *fakeRows
	err  error
}

func (d *fakeDB) queueRows(columns []string, rows ...[]any) {
	d.queue = append(d.queue, queuedResult{rows: &fakeRows{columns: columns, rows: rows}})
}

func (d *fakeDB) queueError(err error) {
	d.queue = append(d.queue, queuedResult{err: err})
}

func (d *fakeDB) Query(_ context.Context, query string) (adapters.DBRows, error) {
	d.queries = append(d.queries, query)

	if len(d.queue) == 0 {
		return nil, fmt.Errorf("unexpected query: %s", query)
	}

	next := d.queue[0]
	d.queue = d.queue[1:]

	if next.err != nil {
		return nil, next.err
	}

	return next.rows, nil
}

func (d *fakeDB) BeginTx(_ context.Context) (adapters.DBTx, error) {
	if d.beginErr != nil {
		return nil, d.beginErr
	}

	d.tx = &fakeTx{db: d, commitErr: d.commitErr}

	return d.tx, nil
}

// fakeTx delegates queries to the owning fakeDB and counts lifecycle calls.
type fakeTx struct {
	db        *fakeDB
	commitErr error
	commits   int
	rollbacks int
}

func (t *fakeTx) Query(ctx context.Context, query string) (adapters.DBRows, error) {
	return t.db.Query(ctx, query)
}

func (t *fakeTx) Commit(_ context.Context) error {
	t.commits++
	return t.commitErr
}

func (t *fakeTx) Rollback(_ context.Context) error {
	t.rollbacks++
	return nil
}

// fakeMetrics records counter increments and duration observations.
type fakeMetrics struct {
	counters       map[string]int
	counterLabels  map[string]map[string]string
	durationCounts map[string]int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{
		counters:       make(map[string]int),
		counterLabels:  make(map[string]map[string]string),
		durationCounts: make(map[string]int),
	}
}

func (m *fakeMetrics) RecordDuration(metric string, _ time.Duration, _ map[string]string) {
	m.durationCounts[metric]++
}

func (m *fakeMetrics) IncrementCounter(metric string, labels map[string]string) {
	m.counters[metric]++
	m.counterLabels[metric] = labels
}

func (m *fakeMetrics) RecordValue(string, float64, map[string]string) {}

// fakeTestLogger records log messages per level.
type fakeTestLogger struct {
	debugMsgs []string
	infoMsgs  []string
	warnMsgs  []string
	errorMsgs []string
}

func (l *fakeTestLogger) Debug(msg string, _ ...any) {
	l.debugMsgs = append(l.debugMsgs, msg)
}

func (l *fakeTestLogger) Info(msg string, _ ...any) {
	l.infoMsgs = append(l.infoMsgs, msg)
}

func (l *fakeTestLogger) Warn(msg string, _ ...any) {
	l.warnMsgs = append(l.warnMsgs, msg)
}

func (l *fakeTestLogger) Error(msg string, _ ...any) {
	l.errorMsgs = append(l.errorMsgs, msg)
}
