// Package refdata holds the static molecular-weight and buffer pKa tables
// used to pre-fill calculator inputs.
package refdata

import (
	_ "embed"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"labcalc/internal/solver"
)

//go:embed compounds.yaml
var compoundsYAML []byte

//go:embed buffers.yaml
var buffersYAML []byte

var (
	ErrCompoundNotFound = errors.New("compound not found")
	ErrBufferNotFound   = errors.New("buffer not found")
	ErrNotApplicable    = errors.New("formula has no such input")
)

// Compound is a reagent with its molecular weight in g/mol.
type Compound struct {
	ID              string  `yaml:"id" json:"id"`
	Name            string  `yaml:"name" json:"name"`
	Formula         string  `yaml:"formula" json:"formula"`
	MolecularWeight float64 `yaml:"mw" json:"molecular_weight"`
	Category        string  `yaml:"category" json:"category"`
}

// Buffer is a buffering agent with its pKa and useful pH range.
type Buffer struct {
	ID    string    `yaml:"id" json:"id"`
	Name  string    `yaml:"name" json:"name"`
	PKa   float64   `yaml:"pka" json:"pka"`
	Range []float64 `yaml:"range" json:"range"`
}

// Category groups compounds sharing a category, in table order.
type Category struct {
	Name      string     `json:"name"`
	Compounds []Compound `json:"compounds"`
}

// Table is a read-only set of reference data.
type Table struct {
	compounds []Compound
	buffers   []Buffer
}

type document struct {
	Compounds []Compound `yaml:"compounds"`
	Buffers   []Buffer   `yaml:"buffers"`
}

// Load parses YAML documents holding a "compounds" and a "buffers" list.
func Load(docs ...[]byte) (*Table, error) {
	t := &Table{}
	for i, raw := range docs {
		var doc document
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("decode reference document %d: %w", i, err)
		}
		t.compounds = append(t.compounds, doc.Compounds...)
		t.buffers = append(t.buffers, doc.Buffers...)
	}
	if err := t.validate(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Table) validate() error {
	seen := map[string]bool{}
	for _, c := range t.compounds {
		if c.ID == "" || c.MolecularWeight <= 0 {
			return fmt.Errorf("compound %q: id and positive molecular weight required", c.Name)
		}
		if seen["c/"+c.ID] {
			return fmt.Errorf("duplicate compound id %q", c.ID)
		}
		seen["c/"+c.ID] = true
	}
	for _, b := range t.buffers {
		if b.ID == "" || len(b.Range) != 2 || b.Range[0] > b.Range[1] {
			return fmt.Errorf("buffer %q: id and [low, high] range required", b.Name)
		}
		if seen["b/"+b.ID] {
			return fmt.Errorf("duplicate buffer id %q", b.ID)
		}
		seen["b/"+b.ID] = true
	}
	return nil
}

var (
	defaultOnce  sync.Once
	defaultTable *Table
)

// Default returns the embedded reference tables.
func Default() *Table {
	defaultOnce.Do(func() {
		t, err := Load(compoundsYAML, buffersYAML)
		if err != nil {
			panic(fmt.Sprintf("refdata: embedded tables: %v", err))
		}
		defaultTable = t
	})
	return defaultTable
}

func normalize(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// Compounds returns every compound in table order.
func (t *Table) Compounds() []Compound {
	out := make([]Compound, len(t.compounds))
	copy(out, t.compounds)
	return out
}

// LookupCompound finds a compound by id, name or chemical formula,
// ignoring case.
func (t *Table) LookupCompound(key string) (Compound, error) {
	k := normalize(key)
	for _, c := range t.compounds {
		if k == c.ID || k == normalize(c.Name) || k == normalize(c.Formula) {
			return c, nil
		}
	}
	return Compound{}, fmt.Errorf("%w: %q", ErrCompoundNotFound, key)
}

// SearchCompounds returns compounds whose name, formula or category contains
// query. An empty query matches everything.
func (t *Table) SearchCompounds(query string) []Compound {
	q := normalize(query)
	if q == "" {
		return t.Compounds()
	}
	var out []Compound
	for _, c := range t.compounds {
		if strings.Contains(normalize(c.Name), q) ||
			strings.Contains(normalize(c.Formula), q) ||
			strings.Contains(normalize(c.Category), q) {
			out = append(out, c)
		}
	}
	return out
}

// Categories groups compounds by category in order of first appearance.
func Categories(compounds []Compound) []Category {
	var out []Category
	index := map[string]int{}
	for _, c := range compounds {
		i, ok := index[c.Category]
		if !ok {
			i = len(out)
			index[c.Category] = i
			out = append(out, Category{Name: c.Category})
		}
		out[i].Compounds = append(out[i].Compounds, c)
	}
	return out
}

// Buffers returns every buffer in table order.
func (t *Table) Buffers() []Buffer {
	out := make([]Buffer, len(t.buffers))
	copy(out, t.buffers)
	return out
}

// LookupBuffer finds a buffer by id or name, ignoring case.
func (t *Table) LookupBuffer(key string) (Buffer, error) {
	k := normalize(key)
	for _, b := range t.buffers {
		if k == b.ID || k == normalize(b.Name) {
			return b, nil
		}
	}
	return Buffer{}, fmt.Errorf("%w: %q", ErrBufferNotFound, key)
}

// Prefill copies req and fills a blank molecularWeight from compoundKey and a
// blank pKa from bufferKey. Supplied values are never overwritten.
func (t *Table) Prefill(f *solver.Formula, req solver.Request, compoundKey, bufferKey string) (solver.Request, error) {
	out := make(solver.Request, len(req)+2)
	for k, v := range req {
		out[k] = v
	}

	if compoundKey != "" {
		if !f.HasVariable("molecularWeight") {
			return nil, fmt.Errorf("%w: %s takes no molecular weight", ErrNotApplicable, f.ID)
		}
		c, err := t.LookupCompound(compoundKey)
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(out["molecularWeight"]) == "" {
			out["molecularWeight"] = strconv.FormatFloat(c.MolecularWeight, 'f', -1, 64)
		}
	}

	if bufferKey != "" {
		if !f.HasVariable("pKa") {
			return nil, fmt.Errorf("%w: %s takes no pKa", ErrNotApplicable, f.ID)
		}
		b, err := t.LookupBuffer(bufferKey)
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(out["pKa"]) == "" {
			out["pKa"] = strconv.FormatFloat(b.PKa, 'f', -1, 64)
		}
	}

	return out, nil
}
