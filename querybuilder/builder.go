package querybuilder

import (
	"context"
	"errors"
	"strconv"
	"strings"
)

// ErrNoData is returned by Insert and Update when there is nothing to write.
var ErrNoData = errors.New("querybuilder: no columns to write")

// Record is one result row keyed by column name. Text and blob columns are
// returned as strings.
type Record map[string]any

// SelectOption tunes Select and SelectAll.
type SelectOption func(*selectOptions)

type selectOptions struct {
	orderBy string
	sort    string
	limit   *int
}

// WithOrderBy orders results by column.
func WithOrderBy(column string) SelectOption {
	return func(o *selectOptions) {
		o.orderBy = column
	}
}

// WithSort sets the direction, ASC or DESC in any case. It only applies
// together with WithOrderBy.
func WithSort(direction string) SelectOption {
	return func(o *selectOptions) {
		o.sort = direction
	}
}

// WithLimit caps the number of rows returned by SelectAll. Select always
// reads one row, so there the option is neither applied nor validated.
func WithLimit(n int) SelectOption {
	return func(o *selectOptions) {
		o.limit = &n
	}
}

// Builder composes and runs statements over a Conn.
type Builder struct {
	conn *Conn
}

// New returns a Builder bound to conn.
func New(conn *Conn) *Builder {
	return &Builder{conn: conn}
}

// Conn returns the connection statements run on.
func (b *Builder) Conn() *Conn {
	return b.conn
}

// Insert writes one row and returns its generated id.
func (b *Builder) Insert(ctx context.Context, table string, data Pairs) (int64, error) {
	if err := validateWrite(table, data, nil); err != nil {
		return 0, err
	}

	query, args := b.insertStatement(table, data)

	if b.conn.dialect.ReturningID {
		rows, err := b.conn.Query(ctx, query, args...)
		if err != nil {
			return 0, err
		}
		defer rows.Close()

		var id int64
		if rows.Next() {
			if err := rows.Scan(&id); err != nil {
				return 0, storeError("insert", err)
			}
		}
		return id, storeError("insert", rows.Err())
	}

	res, err := b.conn.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, storeError("insert", err)
	}
	return id, nil
}

// Update sets data on every row matching conditions and returns the number of
// rows affected. Empty conditions update the whole table.
func (b *Builder) Update(ctx context.Context, table string, data, conditions Pairs) (int64, error) {
	if err := validateWrite(table, data, conditions); err != nil {
		return 0, err
	}

	query, args := b.updateStatement(table, data, conditions)
	return b.exec(ctx, "update", query, args)
}

// Delete removes every row matching conditions and returns the number of rows
// affected. Empty conditions empty the table.
func (b *Builder) Delete(ctx context.Context, table string, conditions Pairs) (int64, error) {
	if err := validateIdentifier(table); err != nil {
		return 0, err
	}
	if err := validateColumns(conditions.Columns()); err != nil {
		return 0, err
	}

	var sb strings.Builder
	sb.WriteString("DELETE FROM ")
	sb.WriteString(table)
	args := b.writeWhere(&sb, conditions, 0)

	return b.exec(ctx, "delete", sb.String(), args)
}

// Select returns the first matching row. The boolean is false when no row
// matched; that is not an error.
func (b *Builder) Select(ctx context.Context, table string, columns []string, conditions Pairs, opts ...SelectOption) (Record, bool, error) {
	so := collectSelectOptions(opts)
	so.limit = nil
	if err := validateSelect(table, columns, conditions, so); err != nil {
		return nil, false, err
	}

	one := 1
	so.limit = &one
	records, err := b.query(ctx, "select", table, columns, conditions, so)
	if err != nil {
		return nil, false, err
	}
	if len(records) == 0 {
		return nil, false, nil
	}
	return records[0], true, nil
}

// SelectAll returns every matching row, possibly none.
func (b *Builder) SelectAll(ctx context.Context, table string, columns []string, conditions Pairs, opts ...SelectOption) ([]Record, error) {
	so := collectSelectOptions(opts)
	if err := validateSelect(table, columns, conditions, so); err != nil {
		return nil, err
	}

	return b.query(ctx, "select all", table, columns, conditions, so)
}

func (b *Builder) exec(ctx context.Context, op, query string, args []any) (int64, error) {
	res, err := b.conn.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, storeError(op, err)
	}
	return n, nil
}

func (b *Builder) query(ctx context.Context, op, table string, columns []string, conditions Pairs, so selectOptions) ([]Record, error) {
	query, args := b.selectStatement(table, columns, conditions, so)

	rows, err := b.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, storeError(op, err)
	}

	records := make([]Record, 0)
	for rows.Next() {
		values := make([]any, len(names))
		dest := make([]any, len(names))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, storeError(op, err)
		}

		record := make(Record, len(names))
		for i, name := range names {
			if raw, ok := values[i].([]byte); ok {
				record[name] = string(raw)
				continue
			}
			record[name] = values[i]
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, storeError(op, err)
	}
	return records, nil
}

func (b *Builder) insertStatement(table string, data Pairs) (string, []any) {
	marks := make([]string, len(data))
	for i := range data {
		marks[i] = b.conn.dialect.Placeholder(i + 1)
	}

	var sb strings.Builder
	sb.WriteString("INSERT INTO ")
	sb.WriteString(table)
	sb.WriteString(" (")
	sb.WriteString(strings.Join(data.Columns(), ","))
	sb.WriteString(") VALUES (")
	sb.WriteString(strings.Join(marks, ","))
	sb.WriteString(")")
	if b.conn.dialect.ReturningID {
		sb.WriteString(" RETURNING id")
	}

	return sb.String(), data.Values()
}

func (b *Builder) updateStatement(table string, data, conditions Pairs) (string, []any) {
	sets := make([]string, len(data))
	for i, pair := range data {
		sets[i] = pair.Column + " = " + b.conn.dialect.Placeholder(i+1)
	}

	var sb strings.Builder
	sb.WriteString("UPDATE ")
	sb.WriteString(table)
	sb.WriteString(" SET ")
	sb.WriteString(strings.Join(sets, ","))

	args := data.Values()
	args = append(args, b.writeWhere(&sb, conditions, len(data))...)
	return sb.String(), args
}

func (b *Builder) selectStatement(table string, columns []string, conditions Pairs, so selectOptions) (string, []any) {
	cols := Wildcard
	if len(columns) > 0 {
		cols = strings.Join(columns, ",")
	}

	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(cols)
	sb.WriteString(" FROM ")
	sb.WriteString(table)
	args := b.writeWhere(&sb, conditions, 0)

	if so.orderBy != "" {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(so.orderBy)
		if so.sort != "" {
			sort, _ := normalizeSort(so.sort)
			sb.WriteString(" ")
			sb.WriteString(sort)
		}
	}

	if so.limit != nil {
		sb.WriteString(" LIMIT ")
		sb.WriteString(strconv.Itoa(*so.limit))
	}

	return sb.String(), args
}

// writeWhere appends an AND-joined equality clause. offset is the number of
// arguments already bound.
func (b *Builder) writeWhere(sb *strings.Builder, conditions Pairs, offset int) []any {
	if len(conditions) == 0 {
		return nil
	}

	clauses := make([]string, len(conditions))
	for i, pair := range conditions {
		clauses[i] = pair.Column + " = " + b.conn.dialect.Placeholder(offset+i+1)
	}

	sb.WriteString(" WHERE ")
	sb.WriteString(strings.Join(clauses, " AND "))
	return conditions.Values()
}

func collectSelectOptions(opts []SelectOption) selectOptions {
	var so selectOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&so)
		}
	}
	return so
}

func validateWrite(table string, data, conditions Pairs) error {
	if err := validateIdentifier(table); err != nil {
		return err
	}
	if len(data) == 0 {
		return ErrNoData
	}
	if err := validateColumns(data.Columns()); err != nil {
		return err
	}
	return validateColumns(conditions.Columns())
}

func validateSelect(table string, columns []string, conditions Pairs, so selectOptions) error {
	if err := validateIdentifier(table); err != nil {
		return err
	}
	if err := Validate(Options{
		Columns: columns,
		OrderBy: so.orderBy,
		Sort:    so.sort,
		Limit:   so.limit,
	}); err != nil {
		return err
	}
	return validateColumns(conditions.Columns())
}

// validateColumns checks written and compared columns, where "*" is never
// meaningful.
func validateColumns(columns []string) error {
	for _, column := range columns {
		if err := validateIdentifier(column); err != nil {
			return err
		}
	}
	return nil
}
