package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Dudrie/scheinprogramm.releases-sub000/internal/dto"
	"github.com/Dudrie/scheinprogramm.releases-sub000/internal/model"
	"github.com/Dudrie/scheinprogramm.releases-sub000/internal/service"
	apperrors "github.com/Dudrie/scheinprogramm.releases-sub000/pkg/errors"
	"github.com/Dudrie/scheinprogramm.releases-sub000/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock SemesterService ──

type mockSemesterService struct {
	lectures []model.Lecture
	lecture  *model.Lecture
	active   *model.Lecture
	sheet    *model.Sheet
	points   model.Points
	lastNr   int
	data     []byte
	err      error

	// captured arguments
	gotLecture *model.Lecture
	gotSheet   *model.Sheet
	gotID      string
	gotPath    string
	gotData    []byte
}

func (m *mockSemesterService) ListLectures(_ context.Context) ([]model.Lecture, error) {
	return m.lectures, m.err
}
func (m *mockSemesterService) GetLecture(_ context.Context, id string) (*model.Lecture, error) {
	m.gotID = id
	return m.lecture, m.err
}
func (m *mockSemesterService) AddLecture(_ context.Context, lec *model.Lecture) (*model.Lecture, error) {
	m.gotLecture = lec
	if m.err != nil {
		return nil, m.err
	}
	stored := lec.Clone()
	stored.ID = "LEC_new"
	return &stored, nil
}
func (m *mockSemesterService) EditLecture(_ context.Context, lec *model.Lecture) (*model.Lecture, error) {
	m.gotLecture = lec
	if m.err != nil {
		return nil, m.err
	}
	return lec, nil
}
func (m *mockSemesterService) DeleteLecture(_ context.Context, id string) error {
	m.gotID = id
	return m.err
}
func (m *mockSemesterService) SetActiveLecture(_ context.Context, id string) error {
	m.gotID = id
	return m.err
}
func (m *mockSemesterService) ClearActiveLecture(_ context.Context) error { return m.err }
func (m *mockSemesterService) ActiveLecture(_ context.Context) (*model.Lecture, error) {
	if m.active == nil {
		return nil, service.ErrNoActiveLecture
	}
	return m.active, nil
}
func (m *mockSemesterService) AddSheetToActiveLecture(_ context.Context, sheet *model.Sheet) (*model.Sheet, error) {
	m.gotSheet = sheet
	if m.err != nil {
		return nil, m.err
	}
	stored := sheet.Clone()
	stored.ID = "SHEET_new"
	return &stored, nil
}
func (m *mockSemesterService) EditSheetOfActiveLecture(_ context.Context, sheet *model.Sheet) (*model.Sheet, error) {
	m.gotSheet = sheet
	if m.err != nil {
		return nil, m.err
	}
	return sheet, nil
}
func (m *mockSemesterService) RemoveSheetFromActiveLecture(_ context.Context, id string) error {
	m.gotID = id
	return m.err
}
func (m *mockSemesterService) ActiveLecturePointsOfSystem(_ context.Context, id string) (model.Points, error) {
	m.gotID = id
	return m.points, m.err
}
func (m *mockSemesterService) ActiveLectureLastSheetNr(_ context.Context) (int, error) {
	return m.lastNr, m.err
}
func (m *mockSemesterService) ActiveLecturePresentationPoints(_ context.Context) (model.Points, error) {
	return m.points, m.err
}
func (m *mockSemesterService) DataAsJSON(_ context.Context) ([]byte, error) { return m.data, m.err }
func (m *mockSemesterService) LoadDataFromJSON(_ context.Context, data []byte) error {
	m.gotData = data
	return m.err
}
func (m *mockSemesterService) NewSemester(_ context.Context) error { return m.err }
func (m *mockSemesterService) SaveSemester(_ context.Context, path string) error {
	m.gotPath = path
	return m.err
}
func (m *mockSemesterService) LoadSemester(_ context.Context, path string) error {
	m.gotPath = path
	return m.err
}

// ── Mock OverviewService ──

type mockOverviewService struct {
	result *dto.LectureOverviewResponse
	err    error
}

func (m *mockOverviewService) LectureOverview(_ context.Context, _ string) (*dto.LectureOverviewResponse, error) {
	return m.result, m.err
}
func (m *mockOverviewService) ActiveLectureOverview(_ context.Context) (*dto.LectureOverviewResponse, error) {
	return m.result, m.err
}

// ── Mock ExportService ──

type mockExportService struct {
	buf      *bytes.Buffer
	filename string
	err      error
}

func (m *mockExportService) ExportOverview(_ context.Context) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}
func (m *mockExportService) ExportCalendar(_ context.Context, _ string) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}

// ═══════════════════════════════════════════════════════════
// Test Helpers
// ═══════════════════════════════════════════════════════════

func jsonBody(v interface{}) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func parseResponse(w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

func serve(method, path, route string, h gin.HandlerFunc, body io.Reader) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.Handle(method, route, h)
	r.ServeHTTP(w, req)
	return w
}

func testLecture() *model.Lecture {
	return &model.Lecture{
		ID:   "LEC_1",
		Name: "Analysis",
		Systems: []model.LectureSystem{
			{ID: "SYS_1", Name: "Exercises", Type: model.PercentOfTotal, Criteria: 50, PointsPerSheet: 10},
		},
		Sheets: []model.Sheet{
			{ID: "SHEET_1", SheetNr: 1, Date: time.Date(2018, 4, 12, 0, 0, 0, 0, time.UTC), Points: map[string]model.Points{"SYS_1": {Achieved: 7, Total: 10}}},
		},
		TotalSheetCount: 12,
	}
}

func validLectureRequest() dto.LectureRequest {
	return dto.LectureRequest{
		Name: "Analysis",
		Systems: []dto.LectureSystemRequest{
			{Name: "Exercises", SystemType: "percent_of_total", Criteria: 50, PointsPerSheet: 10},
		},
		TotalSheetCount: 12,
	}
}

// ═══════════════════════════════════════════════════════════
// LectureHandler Tests
// ═══════════════════════════════════════════════════════════

func TestLectureHandler_ListLectures(t *testing.T) {
	mock := &mockSemesterService{lectures: []model.Lecture{*testLecture()}, active: testLecture()}
	h := NewLectureHandler(mock, &mockOverviewService{})

	w := serve("GET", "/lectures", "/lectures", h.ListLectures, nil)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body struct {
		Data struct {
			List []dto.LectureResponse `json:"list"`
		} `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &body)
	if len(body.Data.List) != 1 || !body.Data.List[0].IsActive {
		t.Errorf("expected one active lecture, got %+v", body.Data.List)
	}
	if body.Data.List[0].Sheets[0].Points[0].Achieved != 7 {
		t.Errorf("sheet points missing: %+v", body.Data.List[0].Sheets)
	}
}

func TestLectureHandler_CreateLecture_Success(t *testing.T) {
	mock := &mockSemesterService{}
	h := NewLectureHandler(mock, &mockOverviewService{})

	w := serve("POST", "/lectures", "/lectures", h.CreateLecture, jsonBody(validLectureRequest()))

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if mock.gotLecture == nil || mock.gotLecture.Systems[0].Type != model.PercentOfTotal {
		t.Errorf("lecture not converted: %+v", mock.gotLecture)
	}
}

func TestLectureHandler_CreateLecture_BadJSON(t *testing.T) {
	h := NewLectureHandler(&mockSemesterService{}, &mockOverviewService{})

	w := serve("POST", "/lectures", "/lectures", h.CreateLecture, strings.NewReader("invalid json"))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestLectureHandler_CreateLecture_CriteriaOutOfRange(t *testing.T) {
	mock := &mockSemesterService{}
	h := NewLectureHandler(mock, &mockOverviewService{})

	req := validLectureRequest()
	req.Systems[0].Criteria = 120

	w := serve("POST", "/lectures", "/lectures", h.CreateLecture, jsonBody(req))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 10002 {
		t.Errorf("expected error code 10002, got %d", resp.Code)
	}
	if mock.gotLecture != nil {
		t.Error("service must not be called with an invalid lecture")
	}
}

func TestLectureHandler_UpdateLecture_UsesPathID(t *testing.T) {
	mock := &mockSemesterService{}
	h := NewLectureHandler(mock, &mockOverviewService{})

	w := serve("PUT", "/lectures/LEC_9", "/lectures/:id", h.UpdateLecture, jsonBody(validLectureRequest()))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if mock.gotLecture.ID != "LEC_9" {
		t.Errorf("expected id from path, got %q", mock.gotLecture.ID)
	}
}

func TestLectureHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   int
	}{
		{"not found", service.ErrLectureNotFound, http.StatusNotFound, 20001},
		{"validation", apperrors.NewValidationError("lecture", apperrors.FieldError{Field: "name", Message: "name is a required field"}), http.StatusBadRequest, 10002},
		{"unexpected", io.ErrUnexpectedEOF, http.StatusInternalServerError, 50000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewLectureHandler(&mockSemesterService{err: tt.err}, &mockOverviewService{})

			w := serve("DELETE", "/lectures/LEC_1", "/lectures/:id", h.DeleteLecture, nil)

			if w.Code != tt.wantStatus {
				t.Errorf("expected %d, got %d", tt.wantStatus, w.Code)
			}
			if resp := parseResponse(w); resp.Code != tt.wantCode {
				t.Errorf("expected error code %d, got %d", tt.wantCode, resp.Code)
			}
		})
	}
}

func TestLectureHandler_GetLectureOverview(t *testing.T) {
	ov := &mockOverviewService{result: &dto.LectureOverviewResponse{LectureID: "LEC_1", Status: "achieved"}}
	h := NewLectureHandler(&mockSemesterService{}, ov)

	w := serve("GET", "/lectures/LEC_1/overview", "/lectures/:id/overview", h.GetLectureOverview, nil)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"status":"achieved"`) {
		t.Errorf("unexpected body %s", w.Body.String())
	}
}

// ═══════════════════════════════════════════════════════════
// ActiveLectureHandler Tests
// ═══════════════════════════════════════════════════════════

func TestActiveLectureHandler_NoActiveLecture(t *testing.T) {
	h := NewActiveLectureHandler(&mockSemesterService{}, &mockOverviewService{})

	w := serve("GET", "/active-lecture", "/active-lecture", h.GetActiveLecture, nil)

	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 21001 {
		t.Errorf("expected error code 21001, got %d", resp.Code)
	}
}

func TestActiveLectureHandler_SetActiveLecture(t *testing.T) {
	mock := &mockSemesterService{}
	h := NewActiveLectureHandler(mock, &mockOverviewService{})

	w := serve("PUT", "/active-lecture", "/active-lecture", h.SetActiveLecture, jsonBody(dto.SetActiveLectureRequest{LectureID: "LEC_1"}))

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if mock.gotID != "LEC_1" {
		t.Errorf("expected LEC_1, got %q", mock.gotID)
	}

	w = serve("PUT", "/active-lecture", "/active-lecture", h.SetActiveLecture, jsonBody(map[string]string{}))
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without lecture_id, got %d", w.Code)
	}
}

func TestActiveLectureHandler_AddSheet(t *testing.T) {
	mock := &mockSemesterService{active: testLecture()}
	h := NewActiveLectureHandler(mock, &mockOverviewService{})

	req := dto.SheetRequest{
		SheetNr: 2,
		Date:    "2018-04-19",
		Points:  []dto.SheetPointsRequest{{SystemID: "SYS_1", Achieved: 8, Total: 10}},
	}
	w := serve("POST", "/sheets", "/sheets", h.AddSheet, jsonBody(req))

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if mock.gotSheet.Date.Day() != 19 {
		t.Errorf("date not parsed: %v", mock.gotSheet.Date)
	}
	if p, ok := mock.gotSheet.PointsOf("SYS_1"); !ok || p.Achieved != 8 {
		t.Errorf("points not converted: %+v", mock.gotSheet.Points)
	}
}

func TestActiveLectureHandler_AddSheet_BadDate(t *testing.T) {
	mock := &mockSemesterService{active: testLecture()}
	h := NewActiveLectureHandler(mock, &mockOverviewService{})

	w := serve("POST", "/sheets", "/sheets", h.AddSheet, jsonBody(dto.SheetRequest{SheetNr: 1, Date: "12.04.2018"}))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if mock.gotSheet != nil {
		t.Error("service must not be called with an invalid date")
	}
}

func TestActiveLectureHandler_UpdateSheet_NotFound(t *testing.T) {
	mock := &mockSemesterService{active: testLecture(), err: service.ErrSheetNotFound}
	h := NewActiveLectureHandler(mock, &mockOverviewService{})

	w := serve("PUT", "/sheets/SHEET_x", "/sheets/:sheetId", h.UpdateSheet, jsonBody(dto.SheetRequest{SheetNr: 1, Date: "2018-04-12"}))

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
	if mock.gotSheet.ID != "SHEET_x" {
		t.Errorf("expected sheet id from path, got %q", mock.gotSheet.ID)
	}
}

func TestActiveLectureHandler_PresentationPoints(t *testing.T) {
	h := NewActiveLectureHandler(&mockSemesterService{points: model.Points{Achieved: 2, Total: 2}}, &mockOverviewService{})

	w := serve("GET", "/presentation-points", "/presentation-points", h.GetPresentationPoints, nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"achieved":2`) {
		t.Errorf("unexpected answer %d %s", w.Code, w.Body.String())
	}

	h = NewActiveLectureHandler(&mockSemesterService{err: service.ErrNoPresentationRequirement}, &mockOverviewService{})
	w = serve("GET", "/presentation-points", "/presentation-points", h.GetPresentationPoints, nil)
	if resp := parseResponse(w); w.Code != http.StatusNotFound || resp.Code != 21003 {
		t.Errorf("expected 404/21003, got %d/%d", w.Code, resp.Code)
	}
}

func TestActiveLectureHandler_SystemPoints(t *testing.T) {
	mock := &mockSemesterService{points: model.Points{Achieved: 12, Total: 20}}
	h := NewActiveLectureHandler(mock, &mockOverviewService{})

	w := serve("GET", "/systems/SYS_1/points", "/systems/:systemId/points", h.GetSystemPoints, nil)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if mock.gotID != "SYS_1" {
		t.Errorf("expected SYS_1, got %q", mock.gotID)
	}
}

// ═══════════════════════════════════════════════════════════
// SemesterHandler Tests
// ═══════════════════════════════════════════════════════════

func TestSemesterHandler_GetSemester_RawJSON(t *testing.T) {
	h := NewSemesterHandler(&mockSemesterService{data: []byte(`[]`)})

	w := serve("GET", "/semester", "/semester", h.GetSemester, nil)

	if w.Code != http.StatusOK || w.Body.String() != "[]" {
		t.Errorf("expected raw file content, got %d %q", w.Code, w.Body.String())
	}
}

func TestSemesterHandler_ReplaceSemester_Invalid(t *testing.T) {
	mock := &mockSemesterService{err: apperrors.ErrInvalidSemesterFile}
	h := NewSemesterHandler(mock)

	w := serve("PUT", "/semester", "/semester", h.ReplaceSemester, strings.NewReader(`[{"_id":"LEC_1"}]`))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 22001 {
		t.Errorf("expected error code 22001, got %d", resp.Code)
	}
	if string(mock.gotData) != `[{"_id":"LEC_1"}]` {
		t.Errorf("body not passed through: %q", mock.gotData)
	}
}

func TestSemesterHandler_SaveSemester(t *testing.T) {
	mock := &mockSemesterService{lectures: []model.Lecture{*testLecture()}}
	h := NewSemesterHandler(mock)

	w := serve("POST", "/semester/save", "/semester/save", h.SaveSemester, jsonBody(dto.SemesterFileRequest{Path: "/tmp/ss18.json"}))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if mock.gotPath != "/tmp/ss18.json" {
		t.Errorf("unexpected path %q", mock.gotPath)
	}
	if !strings.Contains(w.Body.String(), `"lecture_count":1`) {
		t.Errorf("unexpected body %s", w.Body.String())
	}
}

func TestSemesterHandler_LoadSemester_IOError(t *testing.T) {
	h := NewSemesterHandler(&mockSemesterService{err: io.ErrUnexpectedEOF})

	w := serve("POST", "/semester/load", "/semester/load", h.LoadSemester, jsonBody(dto.SemesterFileRequest{Path: "/nope.json"}))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 22002 {
		t.Errorf("expected error code 22002, got %d", resp.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// ExportHandler Tests
// ═══════════════════════════════════════════════════════════

func TestExportHandler_ExportOverview(t *testing.T) {
	mock := &mockExportService{buf: bytes.NewBufferString("xlsx"), filename: "schein_overview.xlsx"}
	h := NewExportHandler(mock)

	w := serve("GET", "/export/overview", "/export/overview", h.ExportOverview, nil)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != contentTypeXLSX {
		t.Errorf("unexpected content type %s", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "schein_overview.xlsx") {
		t.Errorf("unexpected content disposition %s", cd)
	}
}

func TestExportHandler_Errors(t *testing.T) {
	tests := []struct {
		err      error
		wantCode int
	}{
		{service.ErrExportNoLectures, 23001},
		{service.ErrExportNoSheets, 23002},
		{service.ErrLectureNotFound, 20001},
	}
	for _, tt := range tests {
		h := NewExportHandler(&mockExportService{err: tt.err})

		w := serve("GET", "/lectures/LEC_1/calendar", "/lectures/:id/calendar", h.ExportCalendar, nil)

		if w.Code != http.StatusNotFound {
			t.Errorf("%v: expected 404, got %d", tt.err, w.Code)
		}
		if resp := parseResponse(w); resp.Code != tt.wantCode {
			t.Errorf("%v: expected error code %d, got %d", tt.err, tt.wantCode, resp.Code)
		}
	}
}
