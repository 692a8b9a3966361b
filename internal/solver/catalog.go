package solver

// Catalog is an ordered registry of formulas keyed by ID.
type Catalog struct {
	order []*Formula
	byID  map[string]*Formula
}

// NewCatalog registers formulas in the given order. A later formula with a
// duplicate ID replaces the earlier one.
func NewCatalog(formulas ...*Formula) *Catalog {
	c := &Catalog{byID: make(map[string]*Formula, len(formulas))}
	for _, f := range formulas {
		if _, dup := c.byID[f.ID]; !dup {
			c.order = append(c.order, f)
		} else {
			for i, existing := range c.order {
				if existing.ID == f.ID {
					c.order[i] = f
				}
			}
		}
		c.byID[f.ID] = f
	}
	return c
}

// Default returns the built-in laboratory formulas.
func Default() *Catalog {
	return NewCatalog(
		Molarity(),
		Dilution(),
		SerialDilution(),
		PercentSolution(WeightPerVolume),
		PercentSolution(VolumePerVolume),
		UnitConversion(),
		PPMConversion(),
		StockPreparation(),
		Buffer(),
		Osmolarity(),
	)
}

// Formulas returns the registered formulas in registration order.
func (c *Catalog) Formulas() []*Formula {
	out := make([]*Formula, len(c.order))
	copy(out, c.order)
	return out
}

// Lookup returns the formula with the given ID.
func (c *Catalog) Lookup(id string) (*Formula, error) {
	f, ok := c.byID[id]
	if !ok {
		return nil, &Error{Kind: KindUnknownFormula, Formula: id}
	}
	return f, nil
}

// Solve looks up id and solves req against it.
func (c *Catalog) Solve(id string, req Request) (Result, error) {
	f, err := c.Lookup(id)
	if err != nil {
		return Result{}, err
	}
	return Solve(f, req)
}
