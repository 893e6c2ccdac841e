package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownSystemType the name does not denote a SystemType.
var ErrUnknownSystemType = errors.New("unknown system type")

// SystemType how a LectureSystem decides whether the Schein is earned.
type SystemType int

const (
	// PercentOfTotal a percentage of all points of the term.
	PercentOfTotal SystemType = iota
	// PercentOfSheets a percentage of sheets, each passed at CriteriaPerSheet percent.
	PercentOfSheets
	// PointsAbsolute a fixed number of points.
	PointsAbsolute
)

var systemTypeNames = map[SystemType]string{
	PercentOfTotal:  "percent_of_total",
	PercentOfSheets: "percent_of_sheets",
	PointsAbsolute:  "points_absolute",
}

func (t SystemType) String() string {
	if name, ok := systemTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("system_type(%d)", int(t))
}

// IsPercentage reports whether Criteria is a percentage.
func (t SystemType) IsPercentage() bool {
	return t == PercentOfTotal || t == PercentOfSheets
}

// ParseSystemType accepts the names returned by String.
func ParseSystemType(s string) (SystemType, error) {
	for t, name := range systemTypeNames {
		if name == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w %q", ErrUnknownSystemType, s)
}

// LectureSystem one grading rule of a lecture.
type LectureSystem struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"               validate:"required"`
	Type             SystemType `json:"system_type"        validate:"min=0,max=2"`
	Criteria         float64    `json:"criteria"           validate:"gt=0"`
	CriteriaPerSheet float64    `json:"criteria_per_sheet" validate:"gte=0,lte=100"`
	PointsPerSheet   float64    `json:"points_per_sheet"   validate:"gte=0"` // 0: estimate from recorded sheets
}

// NewLectureSystem builds a validated system without an id.
func NewLectureSystem(name string, typ SystemType, criteria, criteriaPerSheet, pointsPerSheet float64) (LectureSystem, error) {
	sys := LectureSystem{
		Name:             strings.TrimSpace(name),
		Type:             typ,
		Criteria:         criteria,
		CriteriaPerSheet: criteriaPerSheet,
		PointsPerSheet:   pointsPerSheet,
	}
	if err := sys.Validate(); err != nil {
		return LectureSystem{}, err
	}
	return sys, nil
}

// Validate checks the field invariants.
func (s LectureSystem) Validate() error {
	return validateEntity("lecture system", s)
}

// EstimatesPerSheet reports whether the per-sheet total is derived from the
// recorded sheets. PercentOfSheets counts sheets, one per sheet, and never estimates.
func (s LectureSystem) EstimatesPerSheet() bool {
	return s.Type != PercentOfSheets && s.PointsPerSheet == 0
}
