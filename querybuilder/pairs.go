package querybuilder

// Pair binds a column to a value.
type Pair struct {
	Column string
	Value  any
}

// Pairs is an ordered column/value list. Statement text and bound arguments
// follow its order.
type Pairs []Pair

// Set returns a copy of p extended with column = value. p is left untouched,
// so one base list can seed several statements.
func (p Pairs) Set(column string, value any) Pairs {
	out := make(Pairs, len(p), len(p)+1)
	copy(out, p)
	return append(out, Pair{Column: column, Value: value})
}

// Columns returns the column names in order.
func (p Pairs) Columns() []string {
	columns := make([]string, len(p))
	for i, pair := range p {
		columns[i] = pair.Column
	}
	return columns
}

// Values returns the values in order.
func (p Pairs) Values() []any {
	values := make([]any, len(p))
	for i, pair := range p {
		values[i] = pair.Value
	}
	return values
}

// Where starts a condition list with column = value.
func Where(column string, value any) Pairs {
	return Pairs{{Column: column, Value: value}}
}
