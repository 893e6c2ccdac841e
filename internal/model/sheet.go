package model

import "time"

// Points achieved out of total. Total 0 means nothing was recorded yet.
type Points struct {
	Achieved float64 `json:"achieved" validate:"gte=0"`
	Total    float64 `json:"total"    validate:"gte=0"`
}

// Add returns the component-wise sum.
func (p Points) Add(o Points) Points {
	return Points{Achieved: p.Achieved + o.Achieved, Total: p.Total + o.Total}
}

// Sheet one assignment sheet with its points per lecture system.
type Sheet struct {
	ID           string            `json:"id"`
	SheetNr      int               `json:"sheet_nr"      validate:"gte=0"`
	Date         time.Time         `json:"date"`
	HasPresented bool              `json:"has_presented"`
	Points       map[string]Points `json:"points"        validate:"dive"`
}

// SheetDate is the stored form of a sheet date: UTC at millisecond precision,
// the resolution of the semester file.
func SheetDate(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}

// NewSheet builds a validated sheet without points and without an id.
func NewSheet(sheetNr int, date time.Time, hasPresented bool) (Sheet, error) {
	sheet := Sheet{
		SheetNr:      sheetNr,
		Date:         SheetDate(date),
		HasPresented: hasPresented,
		Points:       make(map[string]Points),
	}
	if err := sheet.Validate(); err != nil {
		return Sheet{}, err
	}
	return sheet, nil
}

// Validate checks the field invariants.
func (s Sheet) Validate() error {
	return validateEntity("sheet", s)
}

// PointsOf returns the points recorded for systemID.
func (s *Sheet) PointsOf(systemID string) (Points, bool) {
	p, ok := s.Points[systemID]
	return p, ok
}

// SetPoints records points for systemID.
func (s *Sheet) SetPoints(systemID string, p Points) {
	if s.Points == nil {
		s.Points = make(map[string]Points)
	}
	s.Points[systemID] = p
}

// DropPoints removes the entry of systemID, if any.
func (s *Sheet) DropPoints(systemID string) {
	delete(s.Points, systemID)
}

// Clone returns a copy that shares no map with s.
func (s Sheet) Clone() Sheet {
	c := s
	c.Points = make(map[string]Points, len(s.Points))
	for k, v := range s.Points {
		c.Points[k] = v
	}
	return c
}
