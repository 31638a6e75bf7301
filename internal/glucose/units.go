package glucose

import (
	"fmt"
	"strings"
)

// MgdlPerMmol is the conversion factor between mmol/L and mg/dL.
const MgdlPerMmol = 18.018

// Unit is a glucose display unit. Values inside the engine are always mmol/L.
type Unit string

const (
	UnitMmol Unit = "mmol/L"
	UnitMgdl Unit = "mg/dL"
)

// ParseUnit accepts the spellings found in export headers and settings.
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mmol/l", "mmol", "mmoll":
		return UnitMmol, nil
	case "mg/dl", "mgdl", "mg":
		return UnitMgdl, nil
	}
	return "", fmt.Errorf("unknown glucose unit %q", s)
}

// MmolToMgdl converts mmol/L to mg/dL. No rounding is applied.
func MmolToMgdl(mmol float64) float64 {
	return mmol * MgdlPerMmol
}

// MgdlToMmol converts mg/dL to mmol/L. No rounding is applied.
func MgdlToMmol(mgdl float64) float64 {
	return mgdl / MgdlPerMmol
}

// ConvertValue converts a canonical mmol/L value to the target unit.
func ConvertValue(mmol float64, target Unit) float64 {
	if target == UnitMgdl {
		return MmolToMgdl(mmol)
	}
	return mmol
}

// ToCanonical converts a value expressed in unit u to mmol/L.
func ToCanonical(value float64, u Unit) float64 {
	if u == UnitMgdl {
		return MgdlToMmol(value)
	}
	return value
}
