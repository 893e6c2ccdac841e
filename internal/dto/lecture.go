package dto

// ── lecture requests ──

// LectureSystemRequest one grading system of a lecture. ID is empty for new systems.
type LectureSystemRequest struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"               binding:"required,max=100"`
	SystemType       string  `json:"system_type"        binding:"required,oneof=percent_of_total percent_of_sheets points_absolute"`
	Criteria         float64 `json:"criteria"           binding:"gt=0"`
	CriteriaPerSheet float64 `json:"criteria_per_sheet" binding:"gte=0,lte=100"`
	PointsPerSheet   float64 `json:"points_per_sheet"   binding:"gte=0"` // 0: estimate from recorded sheets
}

// LectureRequest create or edit a lecture. Sheets are managed separately.
type LectureRequest struct {
	Name                  string                 `json:"name"                    binding:"required,max=200"`
	Systems               []LectureSystemRequest `json:"systems"                 binding:"dive"`
	TotalSheetCount       int                    `json:"total_sheet_count"       binding:"gte=0"`
	HasPresentationPoints bool                   `json:"has_presentation_points"`
	CriteriaPresentation  int                    `json:"criteria_presentation"   binding:"gte=0"`
}

// SetActiveLectureRequest selects the active lecture.
type SetActiveLectureRequest struct {
	LectureID string `json:"lecture_id" binding:"required"`
}

// ── lecture responses ──

// LectureSystemResponse grading system.
type LectureSystemResponse struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	SystemType       string  `json:"system_type"`
	Criteria         float64 `json:"criteria"`
	CriteriaPerSheet float64 `json:"criteria_per_sheet"`
	PointsPerSheet   float64 `json:"points_per_sheet"`
}

// LectureResponse lecture with its systems and sheets.
type LectureResponse struct {
	ID                    string                  `json:"id"`
	Name                  string                  `json:"name"`
	Systems               []LectureSystemResponse `json:"systems"`
	Sheets                []SheetResponse         `json:"sheets"`
	TotalSheetCount       int                     `json:"total_sheet_count"`
	HasPresentationPoints bool                    `json:"has_presentation_points"`
	CriteriaPresentation  int                     `json:"criteria_presentation"`
	IsActive              bool                    `json:"is_active"`
}
