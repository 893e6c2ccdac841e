package model

import (
	"fmt"
	"strings"
)

// Lecture one course tracked for its Schein.
type Lecture struct {
	ID                    string          `json:"id"`
	Name                  string          `json:"name"                    validate:"required"`
	Systems               []LectureSystem `json:"systems"                 validate:"dive"`
	Sheets                []Sheet         `json:"sheets"                  validate:"dive"`
	TotalSheetCount       int             `json:"total_sheet_count"       validate:"gte=0"` // 0: unknown
	HasPresentationPoints bool            `json:"has_presentation_points"`
	CriteriaPresentation  int             `json:"criteria_presentation"   validate:"gte=0"`
}

// NewLecture builds a validated lecture without sheets and without an id.
func NewLecture(name string, systems []LectureSystem, totalSheetCount int, hasPresentationPoints bool, criteriaPresentation int) (Lecture, error) {
	lec := Lecture{
		Name:                  strings.TrimSpace(name),
		Systems:               append([]LectureSystem(nil), systems...),
		Sheets:                []Sheet{},
		TotalSheetCount:       totalSheetCount,
		HasPresentationPoints: hasPresentationPoints,
		CriteriaPresentation:  criteriaPresentation,
	}
	if err := lec.Validate(); err != nil {
		return Lecture{}, err
	}
	return lec, nil
}

// Validate checks the field invariants of the lecture and its systems and sheets.
func (l Lecture) Validate() error {
	return validateEntity("lecture", l)
}

// AssignID sets the id once. Changing an assigned id breaks every reference to
// the lecture and is treated as a programming error.
func (l *Lecture) AssignID(id string) {
	if l.ID != "" && l.ID != id {
		panic(fmt.Sprintf("model: lecture id %s already assigned, refusing %s", l.ID, id))
	}
	l.ID = id
}

// SystemByID looks up a system of the lecture.
func (l *Lecture) SystemByID(id string) (LectureSystem, bool) {
	for _, s := range l.Systems {
		if s.ID == id {
			return s, true
		}
	}
	return LectureSystem{}, false
}

// HasSystem reports whether a system with id belongs to the lecture.
func (l *Lecture) HasSystem(id string) bool {
	_, ok := l.SystemByID(id)
	return ok
}

// SheetIndex returns the position of the sheet with id or -1.
func (l *Lecture) SheetIndex(id string) int {
	for i := range l.Sheets {
		if l.Sheets[i].ID == id {
			return i
		}
	}
	return -1
}

// SheetCount number of recorded sheets.
func (l *Lecture) SheetCount() int {
	return len(l.Sheets)
}

// PruneSheetPoints drops point entries of systems that are not part of the lecture.
func (l *Lecture) PruneSheetPoints() {
	for i := range l.Sheets {
		for sysID := range l.Sheets[i].Points {
			if !l.HasSystem(sysID) {
				l.Sheets[i].DropPoints(sysID)
			}
		}
	}
}

// Clone returns a deep copy.
func (l Lecture) Clone() Lecture {
	c := l
	c.Systems = make([]LectureSystem, len(l.Systems))
	copy(c.Systems, l.Systems)
	c.Sheets = make([]Sheet, len(l.Sheets))
	for i, s := range l.Sheets {
		c.Sheets[i] = s.Clone()
	}
	return c
}
