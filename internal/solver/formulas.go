package solver

import (
	"fmt"
	"math"
)

var (
	fixed2   = Display{Notation: Fixed, Places: 2}
	fixed4   = Display{Notation: Fixed, Places: 4}
	fixed6   = Display{Notation: Fixed, Places: 6}
	exp4     = Display{Notation: Exponential, Places: 4}
	discrete = Display{Notation: Ceiling}
)

// MaxSerialSteps caps the step count accepted by serial dilution.
const MaxSerialSteps = 20

func newFormula(id, name, calculator, relation string, vars []Variable, r map[string]Rearrangement) *Formula {
	return &Formula{
		ID:             id,
		Name:           name,
		Calculator:     calculator,
		Relation:       relation,
		Variables:      vars,
		rearrangements: r,
	}
}

// Molarity relates mass, molarity, volume (mL) and molecular weight.
func Molarity() *Formula {
	return newFormula("molarity", "Molarity", "molarity",
		"mass = molarity × (volume / 1000) × molecularWeight",
		[]Variable{
			{Name: "mass", Label: "Mass needed", Unit: "g", Display: fixed4},
			{Name: "molarity", Label: "Molarity", Unit: "M", Display: fixed6},
			{Name: "volume", Label: "Volume", Unit: "mL", Display: fixed4},
			{Name: "molecularWeight", Label: "Molecular Weight", Unit: "g/mol", Display: fixed2},
		},
		map[string]Rearrangement{
			"mass": {
				Solve: func(o Operands) float64 {
					return o.Value("molarity") * (o.Value("volume") / 1000) * o.Value("molecularWeight")
				},
				Equation: func(o Operands, r string) string {
					return fmt.Sprintf("mass = %s M × (%s mL ÷ 1000) × %s g/mol = %s g",
						o.Raw("molarity"), o.Raw("volume"), o.Raw("molecularWeight"), r)
				},
			},
			"molarity": {
				Solve: func(o Operands) float64 {
					return (o.Value("mass") / o.Value("molecularWeight")) / (o.Value("volume") / 1000)
				},
				Equation: func(o Operands, r string) string {
					return fmt.Sprintf("M = (%s g ÷ %s g/mol) ÷ (%s mL ÷ 1000) = %s M",
						o.Raw("mass"), o.Raw("molecularWeight"), o.Raw("volume"), r)
				},
			},
			"volume": {
				Solve: func(o Operands) float64 {
					return o.Value("mass") / (o.Value("molarity") * o.Value("molecularWeight")) * 1000
				},
				Equation: func(o Operands, r string) string {
					return fmt.Sprintf("V = (%s g ÷ (%s M × %s g/mol)) × 1000 = %s mL",
						o.Raw("mass"), o.Raw("molarity"), o.Raw("molecularWeight"), r)
				},
			},
			"molecularWeight": {
				Solve: func(o Operands) float64 {
					return o.Value("mass") / (o.Value("molarity") * (o.Value("volume") / 1000))
				},
				Equation: func(o Operands, r string) string {
					return fmt.Sprintf("MW = %s g ÷ (%s M × (%s mL ÷ 1000)) = %s g/mol",
						o.Raw("mass"), o.Raw("molarity"), o.Raw("volume"), r)
				},
			},
		})
}

// Dilution is C₁V₁ = C₂V₂. Units are whatever the caller uses consistently.
func Dilution() *Formula {
	return newFormula("dilution", "Dilution", "dilution",
		"c1 × v1 = c2 × v2",
		[]Variable{
			{Name: "c1", Label: "Stock Concentration (C₁)", Display: fixed6},
			{Name: "v1", Label: "Stock Volume (V₁)", Display: fixed6},
			{Name: "c2", Label: "Final Concentration (C₂)", Display: fixed6},
			{Name: "v2", Label: "Final Volume (V₂)", Display: fixed6},
		},
		map[string]Rearrangement{
			"c1": {
				Solve: func(o Operands) float64 { return o.Value("c2") * o.Value("v2") / o.Value("v1") },
				Equation: func(o Operands, r string) string {
					return fmt.Sprintf("C₁ = (%s × %s) ÷ %s = %s", o.Raw("c2"), o.Raw("v2"), o.Raw("v1"), r)
				},
			},
			"v1": {
				Solve: func(o Operands) float64 { return o.Value("c2") * o.Value("v2") / o.Value("c1") },
				Equation: func(o Operands, r string) string {
					return fmt.Sprintf("V₁ = (%s × %s) ÷ %s = %s", o.Raw("c2"), o.Raw("v2"), o.Raw("c1"), r)
				},
			},
			"c2": {
				Solve: func(o Operands) float64 { return o.Value("c1") * o.Value("v1") / o.Value("v2") },
				Equation: func(o Operands, r string) string {
					return fmt.Sprintf("C₂ = (%s × %s) ÷ %s = %s", o.Raw("c1"), o.Raw("v1"), o.Raw("v2"), r)
				},
			},
			"v2": {
				Solve: func(o Operands) float64 { return o.Value("c1") * o.Value("v1") / o.Value("c2") },
				Equation: func(o Operands, r string) string {
					return fmt.Sprintf("V₂ = (%s × %s) ÷ %s = %s", o.Raw("c1"), o.Raw("v1"), o.Raw("c2"), r)
				},
			},
		})
}

func dilutionFactor(o Operands) float64 {
	t := o.Value("transferVol")
	return t / (t + o.Value("diluentVol"))
}

// SerialDilution is C_final = C_initial × (Vt/(Vt+Vd))^n. The transfer and
// diluent volumes are always supplied.
func SerialDilution() *Formula {
	f := newFormula("serial-dilution", "Serial Dilution", "serial-dilution",
		"finalConc = initialConc × (transferVol / (transferVol + diluentVol))^steps",
		[]Variable{
			{Name: "initialConc", Label: "Initial Concentration", Display: exp4},
			{Name: "transferVol", Label: "Transfer Volume", Unit: "µL", Display: fixed4},
			{Name: "diluentVol", Label: "Diluent Volume", Unit: "µL", Display: fixed4},
			{Name: "steps", Label: "Steps Required", Display: discrete,
				Constraint: Constraint{Min: bound(1), Max: bound(MaxSerialSteps), Integer: true}},
			{Name: "finalConc", Label: "Final Concentration", Display: exp4},
		},
		map[string]Rearrangement{
			"finalConc": {
				Solve: func(o Operands) float64 {
					return o.Value("initialConc") * math.Pow(dilutionFactor(o), o.Value("steps"))
				},
				Equation: func(o Operands, r string) string {
					return fmt.Sprintf("C_final = %s × (%s/(%s+%s))^%s = %s",
						o.Raw("initialConc"), o.Raw("transferVol"), o.Raw("transferVol"), o.Raw("diluentVol"), o.Raw("steps"), r)
				},
			},
			"steps": {
				Solve: func(o Operands) float64 {
					return math.Log(o.Value("finalConc")/o.Value("initialConc")) / math.Log(dilutionFactor(o))
				},
				Equation: func(o Operands, r string) string {
					return fmt.Sprintf("n = log(%s/%s) / log(%s) ≈ %s",
						o.Raw("finalConc"), o.Raw("initialConc"), FormatValue(dilutionFactor(o), fixed4), r)
				},
			},
			"initialConc": {
				Solve: func(o Operands) float64 {
					return o.Value("finalConc") / math.Pow(dilutionFactor(o), o.Value("steps"))
				},
				Equation: func(o Operands, r string) string {
					return fmt.Sprintf("C_initial = %s ÷ (%s)^%s = %s",
						o.Raw("finalConc"), FormatValue(dilutionFactor(o), fixed4), o.Raw("steps"), r)
				},
			},
		})
	f.Pinned = []string{"transferVol", "diluentVol"}
	return f
}

// PercentKind is the percent-solution convention.
type PercentKind string

const (
	WeightPerVolume PercentKind = "w/v"
	VolumePerVolume PercentKind = "v/v"
)

// PercentSolution is percent = (solute / volume) × 100 for the given
// convention: solute in g for w/v, mL for v/v.
func PercentSolution(kind PercentKind) *Formula {
	soluteUnit := "g"
	id := "percent-wv"
	if kind == VolumePerVolume {
		soluteUnit = "mL"
		id = "percent-vv"
	}
	return newFormula(id, fmt.Sprintf("Percent Solution (%s)", kind), "percent",
		"percent = (soluteAmount / totalVolume) × 100",
		[]Variable{
			{Name: "soluteAmount", Label: "Solute needed", Unit: soluteUnit, Display: fixed4},
			{Name: "totalVolume", Label: "Final Volume", Unit: "mL", Display: fixed4},
			{Name: "percent", Label: "Percent", Unit: "% " + string(kind), Display: fixed4},
		},
		map[string]Rearrangement{
			"soluteAmount": {
				Solve: func(o Operands) float64 { return o.Value("percent") / 100 * o.Value("totalVolume") },
				Equation: func(o Operands, r string) string {
					return fmt.Sprintf("Solute = (%s%% / 100) × %s mL = %s %s", o.Raw("percent"), o.Raw("totalVolume"), r, soluteUnit)
				},
			},
			"totalVolume": {
				Solve: func(o Operands) float64 { return o.Value("soluteAmount") / (o.Value("percent") / 100) },
				Equation: func(o Operands, r string) string {
					return fmt.Sprintf("Volume = %s %s ÷ (%s%% / 100) = %s mL", o.Raw("soluteAmount"), soluteUnit, o.Raw("percent"), r)
				},
			},
			"percent": {
				Solve: func(o Operands) float64 { return o.Value("soluteAmount") / o.Value("totalVolume") * 100 },
				Equation: func(o Operands, r string) string {
					return fmt.Sprintf("%% = (%s %s / %s mL) × 100 = %s%%", o.Raw("soluteAmount"), soluteUnit, o.Raw("totalVolume"), r)
				},
			},
		})
}

// UnitConversion converts between mg/mL and mM through the molecular weight.
func UnitConversion() *Formula {
	return newFormula("unit-conversion", "Unit Converter", "convert",
		"molarConc = (massConc / molecularWeight) × 1000",
		[]Variable{
			{Name: "massConc", Label: "Concentration", Unit: "mg/mL", Display: fixed6},
			{Name: "molarConc", Label: "Molarity", Unit: "mM", Display: fixed6},
			{Name: "molecularWeight", Label: "Molecular Weight", Unit: "g/mol", Display: fixed2},
		},
		map[string]Rearrangement{
			"molarConc": {
				Solve: func(o Operands) float64 { return o.Value("massConc") / o.Value("molecularWeight") * 1000 },
				Equation: func(o Operands, r string) string {
					return fmt.Sprintf("mM = (%s mg/mL ÷ %s) × 1000 = %s mM", o.Raw("massConc"), o.Raw("molecularWeight"), r)
				},
			},
			"massConc": {
				Solve: func(o Operands) float64 { return o.Value("molarConc") * o.Value("molecularWeight") / 1000 },
				Equation: func(o Operands, r string) string {
					return fmt.Sprintf("mg/mL = (%s mM × %s) ÷ 1000 = %s mg/mL", o.Raw("molarConc"), o.Raw("molecularWeight"), r)
				},
			},
			"molecularWeight": {
				Solve: func(o Operands) float64 { return o.Value("massConc") / o.Value("molarConc") * 1000 },
				Equation: func(o Operands, r string) string {
					return fmt.Sprintf("MW = (%s mg/mL ÷ %s mM) × 1000 = %s g/mol", o.Raw("massConc"), o.Raw("molarConc"), r)
				},
			},
		})
}

// PPMConversion treats ppm and mg/L as identical regardless of solvent density.
func PPMConversion() *Formula {
	return newFormula("ppm-conversion", "Unit Converter (ppm)", "convert",
		"mgPerL = ppm",
		[]Variable{
			{Name: "ppm", Label: "Result", Unit: "ppm", Display: fixed4},
			{Name: "mgPerL", Label: "Result", Unit: "mg/L", Display: fixed4},
		},
		map[string]Rearrangement{
			"mgPerL": {
				Solve: func(o Operands) float64 { return o.Value("ppm") },
				Equation: func(o Operands, r string) string {
					return fmt.Sprintf("%s ppm = %s mg/L (1:1 conversion)", o.Raw("ppm"), r)
				},
			},
			"ppm": {
				Solve: func(o Operands) float64 { return o.Value("mgPerL") },
				Equation: func(o Operands, r string) string {
					return fmt.Sprintf("%s mg/L = %s ppm (1:1 conversion)", o.Raw("mgPerL"), r)
				},
			},
		})
}

// StockPreparation is the molarity relation with the volume shown in litres
// inside the equation text.
func StockPreparation() *Formula {
	litres := func(o Operands) string { return formatOperand(o.Value("volume") / 1000) }
	return newFormula("stock-preparation", "Stock Preparation", "stock",
		"mass = molarity × (volume / 1000) × molecularWeight",
		[]Variable{
			{Name: "molarity", Label: "Stock Molarity", Unit: "M", Display: fixed6},
			{Name: "volume", Label: "Volume", Unit: "mL", Display: fixed4},
			{Name: "molecularWeight", Label: "Molecular Weight", Unit: "g/mol", Display: fixed2},
			{Name: "mass", Label: "Mass needed", Unit: "g", Display: fixed4},
		},
		map[string]Rearrangement{
			"mass": {
				Solve: func(o Operands) float64 {
					return o.Value("molarity") * (o.Value("volume") / 1000) * o.Value("molecularWeight")
				},
				Equation: func(o Operands, r string) string {
					return fmt.Sprintf("mass = %s M × %s L × %s g/mol = %s g", o.Raw("molarity"), litres(o), o.Raw("molecularWeight"), r)
				},
			},
			"molarity": {
				Solve: func(o Operands) float64 {
					return o.Value("mass") / ((o.Value("volume") / 1000) * o.Value("molecularWeight"))
				},
				Equation: func(o Operands, r string) string {
					return fmt.Sprintf("M = %s g ÷ (%s L × %s) = %s M", o.Raw("mass"), litres(o), o.Raw("molecularWeight"), r)
				},
			},
			"volume": {
				Solve: func(o Operands) float64 {
					return o.Value("mass") / (o.Value("molarity") * o.Value("molecularWeight")) * 1000
				},
				Equation: func(o Operands, r string) string {
					return fmt.Sprintf("V = (%s g ÷ (%s M × %s)) × 1000 = %s mL", o.Raw("mass"), o.Raw("molarity"), o.Raw("molecularWeight"), r)
				},
			},
			"molecularWeight": {
				Solve: func(o Operands) float64 {
					return o.Value("mass") / (o.Value("molarity") * (o.Value("volume") / 1000))
				},
				Equation: func(o Operands, r string) string {
					return fmt.Sprintf("MW = %s g ÷ (%s M × %s L) = %s g/mol", o.Raw("mass"), o.Raw("molarity"), litres(o), r)
				},
			},
		})
}

// positive passes c through and maps a non-positive concentration to NaN.
func positive(c float64) float64 {
	if c <= 0 {
		return math.NaN()
	}
	return c
}

// logRatio is log10([A⁻]/[HA]); NaN unless both concentrations are positive,
// so two negative concentrations do not cancel.
func logRatio(o Operands) float64 {
	return math.Log10(positive(o.Value("baseConc")) / positive(o.Value("acidConc")))
}

// Buffer is the Henderson–Hasselbalch relation pH = pKa + log10([A⁻]/[HA]).
func Buffer() *Formula {
	return newFormula("buffer", "Buffer (Henderson-Hasselbalch)", "buffer",
		"pH = pKa + log10(baseConc / acidConc)",
		[]Variable{
			{Name: "pH", Label: "pH", Display: fixed4},
			{Name: "pKa", Label: "pKa", Display: fixed4},
			{Name: "baseConc", Label: "[A⁻] (Base)", Unit: "M", Display: fixed4},
			{Name: "acidConc", Label: "[HA] (Acid)", Unit: "M", Display: fixed4},
		},
		map[string]Rearrangement{
			"pH": {
				Solve: func(o Operands) float64 { return o.Value("pKa") + logRatio(o) },
				Equation: func(o Operands, r string) string {
					return fmt.Sprintf("pH = %s + log(%s/%s) = %s", o.Raw("pKa"), o.Raw("baseConc"), o.Raw("acidConc"), r)
				},
			},
			"pKa": {
				Solve: func(o Operands) float64 { return o.Value("pH") - logRatio(o) },
				Equation: func(o Operands, r string) string {
					return fmt.Sprintf("pKa = %s - log(%s/%s) = %s", o.Raw("pH"), o.Raw("baseConc"), o.Raw("acidConc"), r)
				},
			},
			"baseConc": {
				Solve: func(o Operands) float64 { return positive(o.Value("acidConc")) * math.Pow(10, o.Value("pH")-o.Value("pKa")) },
				Equation: func(o Operands, r string) string {
					return fmt.Sprintf("[A⁻] = %s × 10^(%s-%s) = %s M", o.Raw("acidConc"), o.Raw("pH"), o.Raw("pKa"), r)
				},
			},
			"acidConc": {
				Solve: func(o Operands) float64 { return positive(o.Value("baseConc")) / math.Pow(10, o.Value("pH")-o.Value("pKa")) },
				Equation: func(o Operands, r string) string {
					return fmt.Sprintf("[HA] = %s ÷ 10^(%s-%s) = %s M", o.Raw("baseConc"), o.Raw("pH"), o.Raw("pKa"), r)
				},
			},
		})
}

// Osmolarity is osmolarity (mOsm/L) = molarity (M) × i × 1000.
func Osmolarity() *Formula {
	return newFormula("osmolarity", "Osmolarity", "osmolarity",
		"osmolarity = molarity × dissociationFactor × 1000",
		[]Variable{
			{Name: "molarity", Label: "Molarity", Unit: "M", Display: fixed6},
			{Name: "dissociationFactor", Label: "Dissociation Factor (i)", Display: fixed2},
			{Name: "osmolarity", Label: "Osmolarity", Unit: "mOsm/L", Display: fixed2},
		},
		map[string]Rearrangement{
			"osmolarity": {
				Solve: func(o Operands) float64 { return o.Value("molarity") * o.Value("dissociationFactor") * 1000 },
				Equation: func(o Operands, r string) string {
					return fmt.Sprintf("Osm = %s M × %s × 1000 = %s mOsm/L", o.Raw("molarity"), o.Raw("dissociationFactor"), r)
				},
			},
			"molarity": {
				Solve: func(o Operands) float64 { return o.Value("osmolarity") / (o.Value("dissociationFactor") * 1000) },
				Equation: func(o Operands, r string) string {
					return fmt.Sprintf("M = %s mOsm/L ÷ (%s × 1000) = %s M", o.Raw("osmolarity"), o.Raw("dissociationFactor"), r)
				},
			},
			"dissociationFactor": {
				Solve: func(o Operands) float64 { return o.Value("osmolarity") / (o.Value("molarity") * 1000) },
				Equation: func(o Operands, r string) string {
					return fmt.Sprintf("i = %s mOsm/L ÷ (%s M × 1000) = %s", o.Raw("osmolarity"), o.Raw("molarity"), r)
				},
			},
		})
}
