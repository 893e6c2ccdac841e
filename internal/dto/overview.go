package dto

// SystemOverviewResponse progress and projection of one grading system.
type SystemOverviewResponse struct {
	SystemID   string  `json:"system_id"`
	Name       string  `json:"name"`
	SystemType string  `json:"system_type"`
	Criteria   float64 `json:"criteria"`
	Achieved   float64 `json:"achieved"`
	Total      float64 `json:"total"`
	// Percentage achieved/total*100, nil while nothing was recorded.
	Percentage *float64 `json:"percentage"`
	// Projection one of no_info, unreachable, achieved, remaining.
	Projection           string   `json:"projection"`
	PointsNeededPerSheet *float64 `json:"points_needed_per_sheet,omitempty"`
	Estimated            bool     `json:"estimated"`
}

// LectureOverviewResponse overview of one lecture as shown on its overview page.
type LectureOverviewResponse struct {
	LectureID       string                   `json:"lecture_id"`
	LectureName     string                   `json:"lecture_name"`
	Status          string                   `json:"status"`
	SheetsRecorded  int                      `json:"sheets_recorded"`
	TotalSheetCount int                      `json:"total_sheet_count"`
	SheetsRemaining int                      `json:"sheets_remaining"`
	Systems         []SystemOverviewResponse `json:"systems"`
	Presentation    *PointsResponse          `json:"presentation,omitempty"`
}
