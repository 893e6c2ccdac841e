package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/Dudrie/scheinprogramm.releases-sub000/config"
	"github.com/Dudrie/scheinprogramm.releases-sub000/internal/model"
	"github.com/Dudrie/scheinprogramm.releases-sub000/internal/projection"
	"github.com/Dudrie/scheinprogramm.releases-sub000/internal/repository"
)

// ── export errors ──

var (
	ErrExportNoLectures   = errors.New("semester has no lectures")
	ErrExportNoSheets     = errors.New("lecture has no sheets")
	ErrExportGenerateFail = errors.New("failed to generate export file")
)

// ExportService renders semester data for use outside the app.
//
// Files are returned as bytes.Buffer together with a suggested file name; the
// handler sets the download headers.
type ExportService interface {
	// ExportOverview renders every lecture into an .xlsx workbook.
	ExportOverview(ctx context.Context) (*bytes.Buffer, string, error)
	// ExportCalendar renders the sheet dates of one lecture as an .ics calendar.
	ExportCalendar(ctx context.Context, lectureID string) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	cfg    *config.ExportConfig
	logger *zap.Logger
	now    func() time.Time
}

// NewExportService creates an ExportService.
func NewExportService(repo *repository.Repository, cfg *config.ExportConfig, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, cfg: cfg, logger: logger, now: time.Now}
}

// ═══════════════════════════════════════════════════════════
// ExportOverview
// ═══════════════════════════════════════════════════════════
//
// Layout:
//   - sheet "Overview": one row per lecture system with progress, projection and lecture status
//   - one sheet per lecture: one row per assignment sheet, one column per system

const overviewSheet = "Overview"

var overviewHeader = []interface{}{
	"Lecture", "System", "Type", "Criteria", "Achieved", "Total", "Percent", "Needed per sheet", "Status",
}

func (s *exportService) ExportOverview(ctx context.Context) (*bytes.Buffer, string, error) {
	lectures, err := s.repo.Lecture.List(ctx)
	if err != nil {
		s.logger.Error("failed to list lectures", zap.Error(err))
		return nil, "", err
	}
	if len(lectures) == 0 {
		return nil, "", ErrExportNoLectures
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", overviewSheet); err != nil {
		return nil, "", s.generateFailed(err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, "", s.generateFailed(err)
	}

	if err := s.writeSummary(f, lectures, headerStyle); err != nil {
		return nil, "", s.generateFailed(err)
	}

	used := map[string]bool{strings.ToLower(overviewSheet): true}
	for i := range lectures {
		name := uniqueSheetName(lectures[i].Name, used)
		if err := s.writeLectureSheet(f, name, &lectures[i], headerStyle); err != nil {
			return nil, "", s.generateFailed(err)
		}
	}
	f.SetActiveSheet(0)

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, "", s.generateFailed(err)
	}

	filename := fmt.Sprintf("schein_overview_%s.xlsx", s.now().Format("2006-01-02"))
	return buf, filename, nil
}

func (s *exportService) writeSummary(f *excelize.File, lectures []model.Lecture, headerStyle int) error {
	if err := f.SetSheetRow(overviewSheet, "A1", &overviewHeader); err != nil {
		return err
	}
	last := colName(len(overviewHeader) - 1)
	if err := f.SetCellStyle(overviewSheet, "A1", last+"1", headerStyle); err != nil {
		return err
	}
	if err := f.SetColWidth(overviewSheet, "A", "C", 22); err != nil {
		return err
	}
	if err := f.SetColWidth(overviewSheet, "D", last, 14); err != nil {
		return err
	}

	row := 2
	for i := range lectures {
		ov := projection.Overview(&lectures[i])
		status := ov.Status.String()

		if len(ov.Systems) == 0 {
			values := []interface{}{lectures[i].Name, "-", "", "", "", "", "", "", status}
			if err := f.SetSheetRow(overviewSheet, cell("A", row), &values); err != nil {
				return err
			}
			row++
			continue
		}
		for _, sys := range ov.Systems {
			values := []interface{}{
				lectures[i].Name,
				sys.System.Name,
				sys.System.Type.String(),
				sys.System.Criteria,
				sys.Progress.Achieved,
				sys.Progress.Total,
				percentCell(sys.Progress),
				neededCell(sys.Projection),
				status,
			}
			if err := f.SetSheetRow(overviewSheet, cell("A", row), &values); err != nil {
				return err
			}
			row++
		}
	}
	return nil
}

func (s *exportService) writeLectureSheet(f *excelize.File, name string, lec *model.Lecture, headerStyle int) error {
	if _, err := f.NewSheet(name); err != nil {
		return err
	}

	header := []interface{}{"Sheet", "Date", "Presented"}
	for _, sys := range lec.Systems {
		header = append(header, sys.Name)
	}
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return err
	}
	if err := f.SetCellStyle(name, "A1", cell(colName(len(header)-1), 1), headerStyle); err != nil {
		return err
	}
	if err := f.SetColWidth(name, "A", colName(len(header)-1), 14); err != nil {
		return err
	}

	sheets := append([]model.Sheet(nil), lec.Sheets...)
	sort.SliceStable(sheets, func(i, j int) bool { return sheets[i].SheetNr < sheets[j].SheetNr })

	for r, sh := range sheets {
		presented := "no"
		if sh.HasPresented {
			presented = "yes"
		}
		values := []interface{}{sh.SheetNr, sh.Date.Format("2006-01-02"), presented}
		for _, sys := range lec.Systems {
			if p, ok := sh.PointsOf(sys.ID); ok {
				values = append(values, fmt.Sprintf("%g / %g", p.Achieved, p.Total))
			} else {
				values = append(values, "-")
			}
		}
		if err := f.SetSheetRow(name, cell("A", r+2), &values); err != nil {
			return err
		}
	}
	return nil
}

func (s *exportService) generateFailed(err error) error {
	s.logger.Error("failed to write export", zap.Error(err))
	return ErrExportGenerateFail
}

// ═══════════════════════════════════════════════════════════
// ExportCalendar
// ═══════════════════════════════════════════════════════════
//
// One all-day event per sheet on the sheet's date. The description lists the
// points recorded per system.

func (s *exportService) ExportCalendar(ctx context.Context, lectureID string) (*bytes.Buffer, string, error) {
	lec, err := s.repo.Lecture.GetByID(ctx, lectureID)
	if err != nil {
		return nil, "", mapNotFound(err, ErrLectureNotFound)
	}
	if len(lec.Sheets) == 0 {
		return nil, "", ErrExportNoSheets
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(s.cfg.CalendarProdID)
	cal.SetXWRCalName(lec.Name)

	stamp := s.now().UTC()
	for i := range lec.Sheets {
		sh := &lec.Sheets[i]
		day := time.Date(sh.Date.Year(), sh.Date.Month(), sh.Date.Day(), 0, 0, 0, 0, time.UTC)

		ev := cal.AddEvent(sh.ID + "@schein-tracker")
		ev.SetDtStampTime(stamp)
		ev.SetAllDayStartAt(day)
		ev.SetAllDayEndAt(day.AddDate(0, 0, 1))
		ev.SetSummary(fmt.Sprintf("%s: Sheet %d", lec.Name, sh.SheetNr))
		ev.SetDescription(sheetDescription(lec, sh))
	}

	buf := bytes.NewBufferString(cal.Serialize())
	filename := fmt.Sprintf("%s_sheets.ics", fileSafe(lec.Name))
	return buf, filename, nil
}

func sheetDescription(lec *model.Lecture, sh *model.Sheet) string {
	var b strings.Builder
	for _, sys := range lec.Systems {
		if p, ok := sh.PointsOf(sys.ID); ok {
			fmt.Fprintf(&b, "%s: %g / %g\n", sys.Name, p.Achieved, p.Total)
		}
	}
	if sh.HasPresented {
		b.WriteString("Presented\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// ── helpers ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

func percentCell(p model.Points) interface{} {
	if p.Total == 0 {
		return "-"
	}
	return fmt.Sprintf("%.1f%%", p.Achieved/p.Total*100)
}

func neededCell(p projection.Projection) interface{} {
	switch p.Kind {
	case projection.KindRemaining:
		return p.PerSheet
	case projection.KindAchieved:
		return 0
	case projection.KindUnreachable:
		return "unreachable"
	default:
		return "-"
	}
}

// uniqueSheetName turns name into a worksheet name excel accepts and that is not
// in used yet. Names are compared case-insensitively.
func uniqueSheetName(name string, used map[string]bool) string {
	base := strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '_'
		}
		return r
	}, strings.TrimSpace(name))
	base = strings.Trim(base, "'")
	if base == "" {
		base = "Lecture"
	}
	base = truncateRunes(base, excelize.MaxSheetNameLength)

	candidate := base
	for n := 2; used[strings.ToLower(candidate)]; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		candidate = truncateRunes(base, excelize.MaxSheetNameLength-len(suffix)) + suffix
	}
	used[strings.ToLower(candidate)] = true
	return candidate
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func fileSafe(name string) string {
	out := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		case r == ' ':
			return '_'
		}
		return -1
	}, name)
	if out == "" {
		return "lecture"
	}
	return out
}
