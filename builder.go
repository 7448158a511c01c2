package ygggo_upsert

import (
	"strings"

	"github.com/pkg/errors"
)

// Kind selects how a bulk insert resolves unique-key conflicts.
type Kind int

const (
	// KindOnDuplicate renders INSERT ... ON DUPLICATE KEY UPDATE.
	// Affected rows per row: 0 unchanged, 1 inserted, 2 updated.
	KindOnDuplicate Kind = iota
	// KindIgnore renders INSERT IGNORE. Affected rows per row: 0 ignored, 1 inserted.
	KindIgnore
	// KindReplace renders REPLACE INTO. Affected rows per row: 1 inserted, >1 replaced.
	KindReplace
)

func (k Kind) String() string {
	switch k {
	case KindOnDuplicate:
		return "insert_on_duplicate"
	case KindIgnore:
		return "insert_ignore"
	case KindReplace:
		return "replace"
	}
	return "unknown"
}

// ParseKind maps a mode name to a Kind. It accepts the Kind.String values and
// the short forms "update", "ignore" and "replace".
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "update", "insert_on_duplicate":
		return KindOnDuplicate, nil
	case "ignore", "insert_ignore":
		return KindIgnore, nil
	case "replace":
		return KindReplace, nil
	}
	return 0, errors.Errorf("unknown mode %q (want update, ignore or replace)", s)
}

// Statement is a rendered SQL template and the values bound to its `?` placeholders.
type Statement struct {
	SQL    string
	Params []any
}

// Args returns the parameters for ExecContext.
func (s Statement) Args() []any { return s.Params }

// UpdateColumn is one entry of an ON DUPLICATE KEY UPDATE clause.
type UpdateColumn struct {
	target string
	expr   string
	assign bool
}

// Col refreshes a column with the value from the inserted row:
// `name` = VALUES(`name`).
func Col(name string) UpdateColumn { return UpdateColumn{target: name} }

// Cols is Col for several names.
func Cols(names ...string) []UpdateColumn {
	out := make([]UpdateColumn, len(names))
	for i, n := range names {
		out[i] = Col(n)
	}
	return out
}

// Assign renders "target = expr" exactly as given. Neither side is quoted or
// escaped; both must come from trusted code, never from user input.
func Assign(target, expr string) UpdateColumn {
	return UpdateColumn{target: target, expr: expr, assign: true}
}

func (u UpdateColumn) String() string {
	if u.assign {
		return u.target + " = " + u.expr
	}
	q := quoteIdent(u.target)
	return q + " = VALUES(" + q + ")"
}

// Builder renders statements of one Kind.
type Builder struct {
	Kind Kind
}

// Build renders the statement for table and in. update only applies to
// KindOnDuplicate; an empty update refreshes every column of the first row.
//
// The table name is trusted: it is wrapped in backticks but not escaped.
func (b Builder) Build(table string, in Input, update ...UpdateColumn) (Statement, error) {
	rows, err := normalizeBatch(in)
	if err != nil {
		return Statement{}, err
	}
	first, err := firstRow(rows)
	if err != nil {
		return Statement{}, err
	}
	cols, err := columnList(first)
	if err != nil {
		return Statement{}, err
	}

	var sb strings.Builder
	switch b.Kind {
	case KindOnDuplicate:
		sb.WriteString("INSERT INTO ")
	case KindIgnore:
		sb.WriteString("INSERT IGNORE INTO ")
	case KindReplace:
		sb.WriteString("REPLACE INTO ")
	default:
		return Statement{}, errors.Errorf("unknown statement kind %d", int(b.Kind))
	}
	sb.WriteString(quoteTable(table))
	sb.WriteByte('(')
	sb.WriteString(cols)
	sb.WriteString(") VALUES\n")
	sb.WriteString(placeholderGroups(rows))
	if b.Kind == KindOnDuplicate {
		if err := checkUpdate(update); err != nil {
			return Statement{}, err
		}
		sb.WriteString("\nON DUPLICATE KEY UPDATE ")
		sb.WriteString(conflictClause(update, first.cols))
	}
	return Statement{SQL: sb.String(), Params: flattenParams(rows)}, nil
}

// BuildInsertOnDuplicate renders INSERT ... ON DUPLICATE KEY UPDATE for in.
func BuildInsertOnDuplicate(table string, in Input, update ...UpdateColumn) (Statement, error) {
	return Builder{Kind: KindOnDuplicate}.Build(table, in, update...)
}

// BuildInsertIgnore renders INSERT IGNORE INTO for in.
func BuildInsertIgnore(table string, in Input) (Statement, error) {
	return Builder{Kind: KindIgnore}.Build(table, in)
}

// BuildReplace renders REPLACE INTO for in.
func BuildReplace(table string, in Input) (Statement, error) {
	return Builder{Kind: KindReplace}.Build(table, in)
}

func normalizeBatch(in Input) ([]Row, error) {
	if len(in.rows) == 0 {
		return nil, errors.Wrap(ErrEmptyInput, "no rows")
	}
	return in.rows, nil
}

func firstRow(rows []Row) (Row, error) {
	if len(rows) == 0 {
		return Row{}, errors.Wrap(ErrEmptyInput, "no rows")
	}
	if !rows[0].valid() {
		return Row{}, errors.Wrap(ErrInvalidShape, "first row was not built with a row constructor")
	}
	return rows[0], nil
}

// columnList renders `a`,`b`,`c` in the row's column order.
func columnList(row Row) (string, error) {
	if len(row.cols) == 0 {
		return "", errors.Wrap(ErrEmptyInput, "first row has no columns")
	}
	quoted := make([]string, len(row.cols))
	for i, c := range row.cols {
		quoted[i] = quoteIdent(c)
	}
	return strings.Join(quoted, ","), nil
}

// placeholderGroups renders one (?,?,...) group per row. Each group is as wide
// as its own row; widths are not checked against the first row.
func placeholderGroups(rows []Row) string {
	groups := make([]string, len(rows))
	for i, r := range rows {
		groups[i] = "(" + strings.TrimSuffix(strings.Repeat("?,", len(r.cols)), ",") + ")"
	}
	return strings.Join(groups, ", ")
}

// checkUpdate rejects entries that would render an empty column or expression.
func checkUpdate(update []UpdateColumn) error {
	for i, u := range update {
		if strings.TrimSpace(u.target) == "" {
			return errors.Wrapf(ErrInvalidShape, "update entry %d has no column", i)
		}
		if u.assign && strings.TrimSpace(u.expr) == "" {
			return errors.Wrapf(ErrInvalidShape, "update entry %d (%s) has no expression", i, u.target)
		}
	}
	return nil
}

func conflictClause(update []UpdateColumn, defaults []string) string {
	if len(update) == 0 {
		update = Cols(defaults...)
	}
	parts := make([]string, len(update))
	for i, u := range update {
		parts[i] = u.String()
	}
	return strings.Join(parts, ", ")
}

// flattenParams lists every row's values, rows outer and columns inner. A row
// holding the same columns as the first row is read in the first row's column
// order, whatever order it was built in.
func flattenParams(rows []Row) []any {
	if len(rows) == 0 {
		return nil
	}
	head := rows[0].cols
	n := 0
	for _, r := range rows {
		n += len(r.vals)
	}
	params := make([]any, 0, n)
	for _, r := range rows {
		if vals, ok := alignTo(r, head); ok {
			params = append(params, vals...)
			continue
		}
		params = append(params, r.vals...)
	}
	return params
}

// alignTo returns r's values in the order of cols when r has exactly those columns.
func alignTo(r Row, cols []string) ([]any, bool) {
	if len(r.cols) != len(cols) {
		return nil, false
	}
	same := true
	for i, c := range cols {
		if r.cols[i] != c {
			same = false
			break
		}
	}
	if same {
		return r.vals, true
	}
	out := make([]any, len(cols))
	for i, c := range cols {
		v, ok := r.Get(c)
		if !ok {
			return nil, false
		}
		out[i] = v
	}
	return out, true
}

// quoteIdent wraps a column name in backticks, doubling any embedded backtick.
func quoteIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// quoteTable wraps each dot-separated part of a bare table name in backticks.
// Names that already contain a backtick are used as-is.
func quoteTable(table string) string {
	if strings.Contains(table, "`") {
		return table
	}
	parts := strings.Split(table, ".")
	for i, p := range parts {
		parts[i] = "`" + p + "`"
	}
	return strings.Join(parts, ".")
}
