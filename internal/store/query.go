package store

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

var (
	ErrUnknownColumn = errors.New("unknown table or column")
	ErrUnfiltered    = errors.New("refusing to touch every row without a filter")
	ErrRowShape      = errors.New("rows do not share the same columns")
	ErrBadRow        = errors.New("stored row could not be decoded")
)

// rowError is a scan failure. It matches ErrBadRow and still unwraps to the decoder's error.
type rowError struct {
	table string
	err   error
}

func (e *rowError) Error() string        { return "scan " + e.table + ": " + e.err.Error() }
func (e *rowError) Unwrap() error        { return e.err }
func (e *rowError) Is(target error) bool { return target == ErrBadRow }

// Filter restricts a query to rows where Column equals Value.
type Filter struct {
	Column string
	Value  any
}

// Eq builds an equality filter.
func Eq(column string, value any) Filter { return Filter{Column: column, Value: value} }

// Ordering sorts a query by one column.
type Ordering struct {
	Field     string
	Ascending bool
}

func Asc(field string) Ordering  { return Ordering{Field: field, Ascending: true} }
func Desc(field string) Ordering { return Ordering{Field: field} }

func (ord Ordering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return quote(ord.Field) + " " + direction
}

// Join embeds columns of a related table into each row, matching the related
// table's id against the base table's On column. Rows without a match are kept
// and their joined columns come back NULL.
type Join struct {
	Table   string
	On      string
	Columns []string
}

// Query describes a read against one table.
type Query struct {
	Table   string
	Columns []string // all known columns when empty
	Join    *Join
	Filters []Filter
	Order   []Ordering
}

// Values maps column names to the values written by Insert, Upsert and Update.
type Values map[string]any

// Row is the subset of *sql.Rows a ScanFunc needs.
type Row interface {
	Scan(dest ...any) error
}

// ScanFunc decodes the current row. Columns arrive in Query order, followed by Join columns.
type ScanFunc[T any] func(Row) (T, error)

// Select runs q and decodes every row with scan. It never returns a nil slice.
func Select[T any](ctx context.Context, db *DB, q Query, scan ScanFunc[T]) ([]T, error) {
	b := db.builder()
	if err := b.selectFrom(q); err != nil {
		return nil, err
	}

	rows, err := db.Client.QueryContext(ctx, b.String(), b.args...)
	if err != nil {
		return nil, errors.Wrapf(err, "select %s", q.Table)
	}
	defer rows.Close()

	res := []T{}
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, &rowError{table: q.Table, err: err}
		}
		res = append(res, item)
	}
	return res, errors.Wrapf(rows.Err(), "select %s", q.Table)
}

// Count returns the number of rows matching q. Columns, Join and Order are ignored.
func (d *DB) Count(ctx context.Context, q Query) (int64, error) {
	b := d.builder()
	if !knownTable(q.Table) {
		return 0, errors.Wrapf(ErrUnknownColumn, "table %q", q.Table)
	}
	b.WriteString("SELECT COUNT(*) FROM " + quote(q.Table) + " t")
	if err := b.where(q.Table, q.Filters); err != nil {
		return 0, err
	}

	var n int64
	if err := d.Client.QueryRowContext(ctx, b.String(), b.args...).Scan(&n); err != nil {
		return 0, errors.Wrapf(err, "count %s", q.Table)
	}
	return n, nil
}

// Sum adds column over the rows matching q. No matching rows sum to zero.
func (d *DB) Sum(ctx context.Context, q Query, column string) (float64, error) {
	if !hasColumn(q.Table, column) {
		return 0, errors.Wrapf(ErrUnknownColumn, "%s.%s", q.Table, column)
	}
	b := d.builder()
	b.WriteString("SELECT COALESCE(SUM(t." + quote(column) + "), 0) FROM " + quote(q.Table) + " t")
	if err := b.where(q.Table, q.Filters); err != nil {
		return 0, err
	}

	var sum float64
	if err := d.Client.QueryRowContext(ctx, b.String(), b.args...).Scan(&sum); err != nil {
		return 0, errors.Wrapf(err, "sum %s.%s", q.Table, column)
	}
	return sum, nil
}

// Insert writes one row and returns its server-assigned id.
func (d *DB) Insert(ctx context.Context, table string, values Values) (int64, error) {
	cols, err := sortedColumns(table, values)
	if err != nil {
		return 0, err
	}
	b := d.builder()
	b.WriteString("INSERT INTO " + quote(table) + " (" + quoteAll(cols) + ") VALUES ")
	b.tuple(cols, values)
	b.WriteString(` RETURNING "id"`)

	var id int64
	if err := d.Client.QueryRowContext(ctx, b.String(), b.args...).Scan(&id); err != nil {
		return 0, errors.Wrapf(err, "insert %s", table)
	}
	return id, nil
}

// Upsert writes rows in one statement, overwriting existing rows that match on
// conflictKey. Rows repeating a key keep the last occurrence. The batch either
// lands completely or not at all.
func (d *DB) Upsert(ctx context.Context, table string, rows []Values, conflictKey ...string) error {
	if len(rows) == 0 {
		return nil
	}
	if len(conflictKey) == 0 {
		return errors.New("upsert requires a conflict key")
	}
	cols, err := sortedColumns(table, rows[0])
	if err != nil {
		return err
	}
	for _, k := range conflictKey {
		if _, ok := rows[0][k]; !ok {
			return errors.Wrapf(ErrUnknownColumn, "conflict key %s.%s not in row", table, k)
		}
	}
	for _, r := range rows[1:] {
		if len(r) != len(cols) {
			return ErrRowShape
		}
		for _, c := range cols {
			if _, ok := r[c]; !ok {
				return ErrRowShape
			}
		}
	}
	rows = dedupe(rows, conflictKey)

	b := d.builder()
	b.WriteString("INSERT INTO " + quote(table) + " (" + quoteAll(cols) + ") VALUES ")
	for i, r := range rows {
		if i > 0 {
			b.WriteString(", ")
		}
		b.tuple(cols, r)
	}
	b.WriteString(" ON CONFLICT (" + quoteAll(conflictKey) + ") ")

	var sets []string
	for _, c := range cols {
		if c == "id" || contains(conflictKey, c) {
			continue
		}
		sets = append(sets, quote(c)+" = EXCLUDED."+quote(c))
	}
	if len(sets) == 0 {
		b.WriteString("DO NOTHING")
	} else {
		b.WriteString("DO UPDATE SET " + strings.Join(sets, ", "))
	}

	tx, err := d.Client.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrapf(err, "upsert %s", table)
	}
	if _, err := tx.ExecContext(ctx, b.String(), b.args...); err != nil {
		_ = tx.Rollback()
		return errors.Wrapf(err, "upsert %s", table)
	}
	return errors.Wrapf(tx.Commit(), "upsert %s", table)
}

// Update overwrites columns of the rows matching filters and returns how many changed.
func (d *DB) Update(ctx context.Context, table string, values Values, filters ...Filter) (int64, error) {
	if len(filters) == 0 {
		return 0, ErrUnfiltered
	}
	cols, err := sortedColumns(table, values)
	if err != nil {
		return 0, err
	}
	b := d.builder()
	b.WriteString("UPDATE " + quote(table) + " AS t SET ")
	for i, c := range cols {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(quote(c) + " = " + b.arg(values[c]))
	}
	if err := b.where(table, filters); err != nil {
		return 0, err
	}
	return d.exec(ctx, "update "+table, b)
}

// Delete removes the rows matching filters and returns how many went away.
func (d *DB) Delete(ctx context.Context, table string, filters ...Filter) (int64, error) {
	if !knownTable(table) {
		return 0, errors.Wrapf(ErrUnknownColumn, "table %q", table)
	}
	if len(filters) == 0 {
		return 0, ErrUnfiltered
	}
	b := d.builder()
	b.WriteString("DELETE FROM " + quote(table) + " AS t")
	if err := b.where(table, filters); err != nil {
		return 0, err
	}
	return d.exec(ctx, "delete "+table, b)
}

func (d *DB) exec(ctx context.Context, what string, b *builder) (int64, error) {
	res, err := d.Client.ExecContext(ctx, b.String(), b.args...)
	if err != nil {
		return 0, errors.Wrap(err, what)
	}
	n, err := res.RowsAffected()
	return n, errors.Wrap(err, what)
}

// builder accumulates SQL text and its positional arguments.
type builder struct {
	strings.Builder
	dialect Dialect
	args    []any
}

func (d *DB) builder() *builder { return &builder{dialect: d.Dialect} }

func (b *builder) arg(v any) string {
	b.args = append(b.args, v)
	return b.dialect.placeholder(len(b.args))
}

func (b *builder) tuple(cols []string, values Values) {
	b.WriteString("(")
	for i, c := range cols {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(b.arg(values[c]))
	}
	b.WriteString(")")
}

func (b *builder) selectFrom(q Query) error {
	if !knownTable(q.Table) {
		return errors.Wrapf(ErrUnknownColumn, "table %q", q.Table)
	}
	cols := q.Columns
	if len(cols) == 0 {
		cols = columns[q.Table]
	}

	var sel []string
	for _, c := range cols {
		if !hasColumn(q.Table, c) {
			return errors.Wrapf(ErrUnknownColumn, "%s.%s", q.Table, c)
		}
		sel = append(sel, "t."+quote(c))
	}
	if j := q.Join; j != nil {
		if !hasColumn(q.Table, j.On) || !knownTable(j.Table) {
			return errors.Wrapf(ErrUnknownColumn, "join %s on %s.%s", j.Table, q.Table, j.On)
		}
		for _, c := range j.Columns {
			if !hasColumn(j.Table, c) {
				return errors.Wrapf(ErrUnknownColumn, "%s.%s", j.Table, c)
			}
			sel = append(sel, "j."+quote(c))
		}
	}

	b.WriteString("SELECT " + strings.Join(sel, ", ") + " FROM " + quote(q.Table) + " t")
	if j := q.Join; j != nil {
		b.WriteString(" LEFT JOIN " + quote(j.Table) + ` j ON j."id" = t.` + quote(j.On))
	}
	if err := b.where(q.Table, q.Filters); err != nil {
		return err
	}
	if len(q.Order) > 0 {
		var order []string
		for _, o := range q.Order {
			if !hasColumn(q.Table, o.Field) {
				return errors.Wrapf(ErrUnknownColumn, "order by %s.%s", q.Table, o.Field)
			}
			order = append(order, "t."+o.String())
		}
		b.WriteString(" ORDER BY " + strings.Join(order, ", "))
	}
	return nil
}

func (b *builder) where(table string, filters []Filter) error {
	clauses := make([]string, 0, len(filters))
	for _, f := range filters {
		if !hasColumn(table, f.Column) {
			return errors.Wrapf(ErrUnknownColumn, "filter %s.%s", table, f.Column)
		}
		clauses = append(clauses, "t."+quote(f.Column)+" = "+b.arg(f.Value))
	}
	if len(clauses) > 0 {
		b.WriteString(" WHERE " + strings.Join(clauses, " AND "))
	}
	return nil
}

func knownTable(table string) bool {
	_, ok := columns[table]
	return ok
}

func hasColumn(table, column string) bool {
	return contains(columns[table], column)
}

func sortedColumns(table string, values Values) ([]string, error) {
	if len(values) == 0 {
		return nil, errors.Errorf("no values for %s", table)
	}
	cols := make([]string, 0, len(values))
	for c := range values {
		if !hasColumn(table, c) {
			return nil, errors.Wrapf(ErrUnknownColumn, "%s.%s", table, c)
		}
		cols = append(cols, c)
	}
	sort.Strings(cols)
	return cols, nil
}

func dedupe(rows []Values, key []string) []Values {
	pos := make(map[string]int, len(rows))
	out := make([]Values, 0, len(rows))
	for _, r := range rows {
		parts := make([]string, len(key))
		for i, k := range key {
			parts[i] = fmt.Sprint(r[k])
		}
		k := strings.Join(parts, "\x00")
		if i, ok := pos[k]; ok {
			out[i] = r
			continue
		}
		pos[k] = len(out)
		out = append(out, r)
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func quote(ident string) string { return `"` + ident + `"` }

func quoteAll(idents []string) string {
	q := make([]string, len(idents))
	for i, id := range idents {
		q[i] = quote(id)
	}
	return strings.Join(q, ", ")
}
