package table

import (
	"encoding/binary"
	"fmt"
	"math"

	"paxclean/domain/core"
)

// Table is an immutable, versioned set of equally sized columns.
// Every mutation goes through Derive, which returns a new version and
// extends the lineage; the receiver is never modified.
type Table struct {
	version int
	lineage []string
	rows    int
	columns []*Column
	index   map[string]int
}

// New creates version 1 of a table. All columns must share one row count and
// have unique names.
func New(label string, cols ...*Column) (*Table, error) {
	t := &Table{
		version: 1,
		lineage: []string{label},
		index:   make(map[string]int, len(cols)),
	}
	if len(cols) > 0 {
		t.rows = cols[0].Len()
	}
	for _, col := range cols {
		if err := t.add(col); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func (t *Table) add(col *Column) error {
	if col == nil {
		return fmt.Errorf("nil column")
	}
	if _, dup := t.index[col.Name()]; dup {
		return fmt.Errorf("duplicate column %q", col.Name())
	}
	if col.Len() != t.rows {
		return fmt.Errorf("%w: column %q has %d rows, table has %d", core.ErrRowCountMismatch, col.Name(), col.Len(), t.rows)
	}
	t.index[col.Name()] = len(t.columns)
	t.columns = append(t.columns, col)
	return nil
}

// Derive returns the next version of the table. Columns whose name already
// exists replace the old column in place; the others are appended in order.
func (t *Table) Derive(label string, cols ...*Column) (*Table, error) {
	next := &Table{
		version: t.version + 1,
		lineage: append(t.Lineage(), label),
		rows:    t.rows,
		columns: make([]*Column, len(t.columns)),
		index:   make(map[string]int, len(t.columns)+len(cols)),
	}
	copy(next.columns, t.columns)
	for name, i := range t.index {
		next.index[name] = i
	}
	if len(t.columns) == 0 && len(cols) > 0 {
		next.rows = cols[0].Len()
	}

	seen := make(map[string]bool, len(cols))
	for _, col := range cols {
		if col == nil {
			return nil, fmt.Errorf("nil column")
		}
		if seen[col.Name()] {
			return nil, fmt.Errorf("duplicate column %q in derive", col.Name())
		}
		seen[col.Name()] = true

		if i, ok := next.index[col.Name()]; ok {
			if col.Len() != next.rows {
				return nil, fmt.Errorf("%w: column %q has %d rows, table has %d", core.ErrRowCountMismatch, col.Name(), col.Len(), next.rows)
			}
			next.columns[i] = col
			continue
		}
		if err := next.add(col); err != nil {
			return nil, err
		}
	}
	return next, nil
}

func (t *Table) Rows() int    { return t.rows }
func (t *Table) Version() int { return t.version }

// Label is the lineage entry of this version.
func (t *Table) Label() string {
	return t.lineage[len(t.lineage)-1]
}

// Lineage lists the labels of every version up to this one.
func (t *Table) Lineage() []string {
	out := make([]string, len(t.lineage))
	copy(out, t.lineage)
	return out
}

// Names returns the column names in order.
func (t *Table) Names() []string {
	names := make([]string, len(t.columns))
	for i, col := range t.columns {
		names[i] = col.Name()
	}
	return names
}

// Columns returns the columns in order.
func (t *Table) Columns() []*Column {
	out := make([]*Column, len(t.columns))
	copy(out, t.columns)
	return out
}

// Column looks up a column by name.
func (t *Table) Column(name string) (*Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.columns[i], true
}

// Has reports whether the table contains a column.
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Numeric returns the named column if it exists and is numeric.
func (t *Table) Numeric(name string) (*Column, error) {
	return t.typed(name, KindNumeric)
}

// Categorical returns the named column if it exists and is categorical.
func (t *Table) Categorical(name string) (*Column, error) {
	return t.typed(name, KindCategorical)
}

func (t *Table) typed(name string, kind Kind) (*Column, error) {
	col, ok := t.Column(name)
	if !ok {
		return nil, core.NewFieldNotFoundError(name)
	}
	if col.Kind() != kind {
		return nil, core.NewWrongKindError(name, kind.String(), col.Kind().String())
	}
	return col, nil
}

// Fingerprint hashes column names, kinds and values in order. Two tables with
// the same content have the same fingerprint regardless of version.
func (t *Table) Fingerprint() (core.Fingerprint, error) {
	h, err := core.NewHasher()
	if err != nil {
		return "", err
	}
	buf := make([]byte, 8)
	for _, col := range t.columns {
		h.WriteString(col.Name())
		h.WriteString(col.Kind().String())
		for i := 0; i < col.Len(); i++ {
			if col.IsMissing(i) {
				h.Write([]byte{0xff})
				continue
			}
			if col.Kind() == KindNumeric {
				v, _ := col.Float(i)
				binary.LittleEndian.PutUint64(buf, math.Float64bits(v))
				h.Write(buf)
				continue
			}
			s, _ := col.Str(i)
			h.WriteString(s)
		}
	}
	return h.Sum(), nil
}
