package ygggo_upsert

// Input is what the builders accept: either a single row or a batch of rows.
// The caller says which one it is; nothing is inferred from the shape of the data.
type Input struct {
	rows   []Row
	single bool
}

// Single wraps one row. It builds exactly the same statement as Batch(row).
func Single(row Row) Input { return Input{rows: []Row{row}, single: true} }

// Batch wraps an ordered list of rows. The first row decides column names and order.
func Batch(rows ...Row) Input { return Input{rows: rows} }

// IsSingle reports whether the input was built with Single.
func (in Input) IsSingle() bool { return in.single }

// Len returns the number of rows.
func (in Input) Len() int { return len(in.rows) }

// Rows returns the rows in order.
func (in Input) Rows() []Row { return append([]Row(nil), in.rows...) }

// Chunk splits in into consecutive batches of at most size rows. A size <= 0
// or an input that already fits returns in unchanged.
func Chunk(in Input, size int) []Input {
	if size <= 0 || len(in.rows) <= size {
		return []Input{in}
	}
	out := make([]Input, 0, (len(in.rows)+size-1)/size)
	for start := 0; start < len(in.rows); start += size {
		end := start + size
		if end > len(in.rows) {
			end = len(in.rows)
		}
		out = append(out, Batch(in.rows[start:end]...))
	}
	return out
}

// MaxPlaceholders is the most `?` markers MySQL accepts in one prepared statement.
const MaxPlaceholders = 65535

// chunkSize caps maxRows so that no chunk of in binds more than
// MaxPlaceholders values. Width is taken from the widest row.
func chunkSize(maxRows int, in Input) int {
	width := 0
	for _, r := range in.rows {
		if len(r.cols) > width {
			width = len(r.cols)
		}
	}
	if width == 0 {
		return maxRows
	}
	limit := MaxPlaceholders / width
	if limit < 1 {
		limit = 1
	}
	if maxRows <= 0 || maxRows > limit {
		return limit
	}
	return maxRows
}
