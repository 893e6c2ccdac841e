package dto

// SheetPointsRequest points of one system on a sheet.
type SheetPointsRequest struct {
	SystemID string  `json:"system_id" binding:"required"`
	Achieved float64 `json:"achieved"  binding:"gte=0"`
	Total    float64 `json:"total"     binding:"gte=0"`
}

// SheetRequest create or edit a sheet of the active lecture.
type SheetRequest struct {
	SheetNr      int                  `json:"sheet_nr"      binding:"gte=0"`
	Date         string               `json:"date"          binding:"required"` // "2018-04-12" or RFC 3339
	HasPresented bool                 `json:"has_presented"`
	Points       []SheetPointsRequest `json:"points"        binding:"dive"`
}

// PointsResponse achieved out of total.
type PointsResponse struct {
	Achieved float64 `json:"achieved"`
	Total    float64 `json:"total"`
}

// SheetPointsResponse points of one system on a sheet.
type SheetPointsResponse struct {
	SystemID string  `json:"system_id"`
	Achieved float64 `json:"achieved"`
	Total    float64 `json:"total"`
}

// SheetResponse sheet with its points in system order.
type SheetResponse struct {
	ID           string                `json:"id"`
	SheetNr      int                   `json:"sheet_nr"`
	Date         string                `json:"date"`
	HasPresented bool                  `json:"has_presented"`
	Points       []SheetPointsResponse `json:"points"`
}

// LastSheetNrResponse highest sheet number of the active lecture, 0 without sheets.
type LastSheetNrResponse struct {
	LastSheetNr int `json:"last_sheet_nr"`
}
