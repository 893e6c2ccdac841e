package projection

import (
	"fmt"

	"github.com/Dudrie/scheinprogramm.releases-sub000/internal/model"
)

// Status overall chance of earning the Schein.
type Status int

const (
	StatusNoInfoAvailable Status = iota
	StatusAchieved
	StatusCanBeAchieved
	StatusProbablyAchieved
	StatusAlmostAchieved
	StatusNotAchievable
)

var statusNames = map[Status]string{
	StatusNoInfoAvailable:  "no_info_available",
	StatusAchieved:         "achieved",
	StatusCanBeAchieved:    "can_be_achieved",
	StatusProbablyAchieved: "probably_achieved",
	StatusAlmostAchieved:   "almost_achieved",
	StatusNotAchievable:    "not_achievable",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Classify derives the overall status from the projections of all systems.
//
// One unreachable system makes the whole lecture NotAchievable. Only the first
// system seeds Achieved; an estimating system that is achieved while sheets
// remain turns Achieved into ProbablyAchieved, and a system that still needs
// points resets to CanBeAchieved. Achieved with missing presentations becomes
// AlmostAchieved.
func Classify(lec *model.Lecture) Status {
	if lec.TotalSheetCount == 0 {
		return StatusNoInfoAvailable
	}

	remaining := SheetsRemaining(lec)
	status := StatusNoInfoAvailable
	for i, sys := range lec.Systems {
		p := PointsNeededPerFutureSheet(lec, sys, SystemProgress(lec, sys))
		switch p.Kind {
		case KindUnreachable:
			return StatusNotAchievable
		case KindAchieved:
			if i == 0 {
				status = StatusAchieved
			}
			if status == StatusAchieved && sys.EstimatesPerSheet() && remaining > 0 {
				status = StatusProbablyAchieved
			}
		case KindRemaining:
			status = StatusCanBeAchieved
		}
	}

	if status == StatusAchieved {
		if pres, ok := PresentationProgress(lec); ok && pres.Achieved < pres.Total {
			status = StatusAlmostAchieved
		}
	}
	return status
}

// SystemOverview projection of one system.
type SystemOverview struct {
	System     model.LectureSystem
	Progress   model.Points
	Projection Projection
}

// LectureOverview everything the lecture overview screen shows.
type LectureOverview struct {
	Lecture         *model.Lecture
	Status          Status
	Systems         []SystemOverview
	SheetsRemaining int
	// Presentation is nil when the lecture has no presentation requirement.
	Presentation *model.Points
}

// Overview computes the projections, presentation progress and status of lec.
func Overview(lec *model.Lecture) LectureOverview {
	ov := LectureOverview{
		Lecture:         lec,
		Status:          Classify(lec),
		Systems:         make([]SystemOverview, 0, len(lec.Systems)),
		SheetsRemaining: SheetsRemaining(lec),
	}
	for _, sys := range lec.Systems {
		progress := SystemProgress(lec, sys)
		ov.Systems = append(ov.Systems, SystemOverview{
			System:     sys,
			Progress:   progress,
			Projection: PointsNeededPerFutureSheet(lec, sys, progress),
		})
	}
	if pres, ok := PresentationProgress(lec); ok {
		ov.Presentation = &pres
	}
	return ov
}
