// Package insulin models insulin doses and the insulin-on-board (IOB)
// they leave behind.
package insulin

import (
	"fmt"
	"strings"
	"time"
)

// Type distinguishes background from meal/correction insulin.
type Type string

const (
	Basal Type = "basal"
	Bolus Type = "bolus"
)

// ParseType accepts "basal" or "bolus" in any case.
func ParseType(s string) (Type, error) {
	switch Type(strings.ToLower(strings.TrimSpace(s))) {
	case Basal:
		return Basal, nil
	case Bolus:
		return Bolus, nil
	default:
		return "", fmt.Errorf("unknown insulin type %q", s)
	}
}

// Dose is one delivered amount of insulin. Basal delivery is recorded as
// discrete periodic doses, not as a continuous rate.
type Dose struct {
	Timestamp time.Time `json:"timestamp"`
	Units     float64   `json:"units"`
	Type      Type      `json:"type"`
}

// DefaultDuration is the default insulin action duration.
const DefaultDuration = 5 * time.Hour

// DefaultInterval is the default sampling interval for daily IOB curves.
const DefaultInterval = 5 * time.Minute
