package querybuilder

import (
	"regexp"
	"strings"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Wildcard selects every column.
const Wildcard = "*"

// Options describes the identifiers and modifiers of one statement. Empty
// strings and a nil Limit mean "not supplied".
type Options struct {
	Table   string
	Columns []string
	OrderBy string
	Sort    string
	Limit   *int
}

// Validate checks opts in the order table, columns, order-by, limit, sort and
// returns the first violation. Columns equal to exactly ["*"] are accepted.
func Validate(opts Options) error {
	if opts.Table != "" {
		if err := validateIdentifier(opts.Table); err != nil {
			return err
		}
	}

	if !isWildcard(opts.Columns) {
		for _, column := range opts.Columns {
			if err := validateIdentifier(column); err != nil {
				return err
			}
		}
	}

	if opts.OrderBy != "" {
		if err := validateIdentifier(opts.OrderBy); err != nil {
			return err
		}
	}

	if opts.Limit != nil && *opts.Limit <= 0 {
		return &LimitError{Value: *opts.Limit}
	}

	if opts.Sort != "" {
		if _, err := normalizeSort(opts.Sort); err != nil {
			return err
		}
	}

	return nil
}

// ValidIdentifier reports whether name may be used as a table or column name.
func ValidIdentifier(name string) bool {
	return identifierPattern.MatchString(name)
}

func validateIdentifier(name string) error {
	if !ValidIdentifier(name) {
		return &IdentifierError{Value: name}
	}
	return nil
}

func normalizeSort(sort string) (string, error) {
	upper := strings.ToUpper(sort)
	if upper != "ASC" && upper != "DESC" {
		return "", &SortError{Value: sort}
	}
	return upper, nil
}

func isWildcard(columns []string) bool {
	return len(columns) == 1 && columns[0] == Wildcard
}
