// Package projection estimates how many points a student still needs per
// remaining sheet and whether a lecture's Schein is within reach.
//
// The estimate is a linear extrapolation over the sheets recorded so far. All
// functions are pure and recompute from the lecture on every call.
package projection

import (
	"fmt"
	"math"

	"github.com/Dudrie/scheinprogramm.releases-sub000/internal/model"
)

// Kind of a per-system projection.
type Kind int

const (
	// KindNoInfo no projection possible: unknown sheet count or nothing to estimate from.
	KindNoInfo Kind = iota
	// KindUnreachable target not met and no sheets left.
	KindUnreachable
	// KindAchieved target already met, nothing more needed.
	KindAchieved
	// KindRemaining PerSheet points are needed on each remaining sheet.
	KindRemaining
)

var kindNames = map[Kind]string{
	KindNoInfo:      "no_info",
	KindUnreachable: "unreachable",
	KindAchieved:    "achieved",
	KindRemaining:   "remaining",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Projection result of PointsNeededPerFutureSheet. PerSheet is only meaningful for KindRemaining.
type Projection struct {
	Kind     Kind
	PerSheet float64
}

func (p Projection) String() string {
	if p.Kind == KindRemaining {
		return fmt.Sprintf("%.1f per sheet", p.PerSheet)
	}
	return p.Kind.String()
}

// SheetsRemaining sheets still to come. Negative when more sheets were recorded than announced.
func SheetsRemaining(lec *model.Lecture) int {
	return lec.TotalSheetCount - lec.SheetCount()
}

// SystemProgress points the lecture's sheets add up to for sys.
//
// PercentOfSheets counts sheets instead of points: Total is the number of sheets
// with an entry for sys, Achieved the number of those passed with at least
// CriteriaPerSheet percent.
func SystemProgress(lec *model.Lecture, sys model.LectureSystem) model.Points {
	var sum model.Points
	for i := range lec.Sheets {
		p, ok := lec.Sheets[i].PointsOf(sys.ID)
		if !ok {
			continue
		}
		if sys.Type == model.PercentOfSheets {
			sum.Total++
			if p.Total > 0 && p.Achieved/p.Total*100 >= sys.CriteriaPerSheet {
				sum.Achieved++
			}
			continue
		}
		sum = sum.Add(p)
	}
	return sum
}

// PointsNeededPerFutureSheet projects the points sys still needs on each remaining sheet,
// given the progress recorded so far.
func PointsNeededPerFutureSheet(lec *model.Lecture, sys model.LectureSystem, progress model.Points) Projection {
	if lec.TotalSheetCount == 0 {
		return Projection{Kind: KindNoInfo}
	}

	sheetCount := lec.SheetCount()
	perSheet := sys.PointsPerSheet
	switch {
	case sys.Type == model.PercentOfSheets:
		perSheet = 1
	case perSheet == 0:
		if sheetCount == 0 {
			return Projection{Kind: KindNoInfo}
		}
		perSheet = progress.Total / float64(sheetCount)
	}

	remaining := SheetsRemaining(lec)

	var neededTotal float64
	if sys.Type.IsPercentage() {
		// project the remaining sheets at the same yield, then apply the threshold to the whole term.
		// remaining is negative when more sheets were handed in than announced.
		neededTotal = (progress.Total + perSheet*float64(remaining)) * (sys.Criteria / 100)
	} else {
		neededTotal = sys.Criteria
	}

	if neededTotal <= progress.Achieved {
		return Projection{Kind: KindAchieved}
	}
	if remaining <= 0 {
		return Projection{Kind: KindUnreachable}
	}
	return Projection{
		Kind:     KindRemaining,
		PerSheet: roundOneDecimal((neededTotal - progress.Achieved) / float64(remaining)),
	}
}

// roundOneDecimal rounds half away from zero.
func roundOneDecimal(v float64) float64 {
	return math.Round(v*10) / 10
}

// PresentationProgress presented sheets against the required count.
// ok is false when the lecture has no presentation requirement.
func PresentationProgress(lec *model.Lecture) (p model.Points, ok bool) {
	if !lec.HasPresentationPoints {
		return model.Points{}, false
	}
	for i := range lec.Sheets {
		if lec.Sheets[i].HasPresented {
			p.Achieved++
		}
	}
	p.Total = float64(lec.CriteriaPresentation)
	return p, true
}
