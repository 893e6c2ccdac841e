package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/Dudrie/scheinprogramm.releases-sub000/internal/model"
	apperrors "github.com/Dudrie/scheinprogramm.releases-sub000/pkg/errors"
)

// dateLayout matches the ISO strings the desktop client writes, e.g. 2018-04-12T10:00:00.000Z.
const dateLayout = "2006-01-02T15:04:05.000Z07:00"

// FormatError describes why semester data was rejected. Path points at the
// offending record, e.g. "[0]._sheets[2].mapPoints[1]".
type FormatError struct {
	Path   string
	Reason string
}

func (e *FormatError) Error() string {
	if e.Path == "" {
		return "invalid semester file: " + e.Reason
	}
	return fmt.Sprintf("invalid semester file at %s: %s", e.Path, e.Reason)
}

func (e *FormatError) Unwrap() error { return apperrors.ErrInvalidSemesterFile }

// ── wire records ──

type lectureRecord struct {
	ID                    string         `json:"_id"`
	Name                  string         `json:"_name"`
	Systems               []systemRecord `json:"systems"`
	TotalSheetCount       int            `json:"_totalSheetCount"`
	HasPresentationPoints bool           `json:"_hasPresentationPoints"`
	CriteriaPresentation  int            `json:"_criteriaPresentation"`
	Sheets                []sheetRecord  `json:"_sheets"`
}

type systemRecord struct {
	ID               string  `json:"_id"`
	Name             string  `json:"_name"`
	SystemType       int     `json:"_systemType"`
	Criteria         float64 `json:"_criteria"`
	CriteriaPerSheet float64 `json:"_criteriaPerSheet"`
	PointsPerSheet   float64 `json:"_pointsPerSheet"`
}

type sheetRecord struct {
	ID           string       `json:"_id"`
	SheetNr      int          `json:"_sheetNr"`
	Date         string       `json:"_date"`
	HasPresented bool         `json:"_hasPresented"`
	MapPoints    []pointsPair `json:"mapPoints"`
}

type pointsRecord struct {
	Achieved float64 `json:"achieved"`
	Total    float64 `json:"total"`
}

// pointsPair is written as a two element array [systemId, {achieved, total}].
type pointsPair struct {
	SystemID string
	Points   pointsRecord
}

func (p pointsPair) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{p.SystemID, p.Points})
}

var (
	lectureKeys = []string{"_id", "_name", "systems", "_totalSheetCount", "_hasPresentationPoints", "_criteriaPresentation", "_sheets"}
	systemKeys  = []string{"_id", "_name", "_systemType", "_criteria", "_criteriaPerSheet", "_pointsPerSheet"}
	sheetKeys   = []string{"_id", "_sheetNr", "_date", "_hasPresented", "mapPoints"}
	pointsKeys  = []string{"achieved", "total"}
)

// ── encode ──

// Encode serializes lectures into the semester file format.
func Encode(lectures []model.Lecture) ([]byte, error) {
	records := make([]lectureRecord, 0, len(lectures))
	for i := range lectures {
		records = append(records, toLectureRecord(&lectures[i]))
	}
	return json.Marshal(records)
}

func toLectureRecord(l *model.Lecture) lectureRecord {
	rec := lectureRecord{
		ID:                    l.ID,
		Name:                  l.Name,
		Systems:               make([]systemRecord, 0, len(l.Systems)),
		TotalSheetCount:       l.TotalSheetCount,
		HasPresentationPoints: l.HasPresentationPoints,
		CriteriaPresentation:  l.CriteriaPresentation,
		Sheets:                make([]sheetRecord, 0, len(l.Sheets)),
	}
	for _, s := range l.Systems {
		rec.Systems = append(rec.Systems, systemRecord{
			ID:               s.ID,
			Name:             s.Name,
			SystemType:       int(s.Type),
			Criteria:         s.Criteria,
			CriteriaPerSheet: s.CriteriaPerSheet,
			PointsPerSheet:   s.PointsPerSheet,
		})
	}
	for i := range l.Sheets {
		rec.Sheets = append(rec.Sheets, toSheetRecord(l, &l.Sheets[i]))
	}
	return rec
}

// toSheetRecord writes points in system order so output is stable.
func toSheetRecord(l *model.Lecture, s *model.Sheet) sheetRecord {
	rec := sheetRecord{
		ID:           s.ID,
		SheetNr:      s.SheetNr,
		Date:         s.Date.UTC().Format(dateLayout),
		HasPresented: s.HasPresented,
		MapPoints:    make([]pointsPair, 0, len(s.Points)),
	}
	seen := make(map[string]bool, len(s.Points))
	for _, sys := range l.Systems {
		if p, ok := s.Points[sys.ID]; ok {
			rec.MapPoints = append(rec.MapPoints, pointsPair{SystemID: sys.ID, Points: pointsRecord(p)})
			seen[sys.ID] = true
		}
	}
	rest := make([]string, 0)
	for id := range s.Points {
		if !seen[id] {
			rest = append(rest, id)
		}
	}
	sort.Strings(rest)
	for _, id := range rest {
		rec.MapPoints = append(rec.MapPoints, pointsPair{SystemID: id, Points: pointsRecord(s.Points[id])})
	}
	return rec
}

// ── decode ──

// Decode parses semester data. It either returns every lecture or a
// *FormatError; partially valid input yields nothing.
func Decode(data []byte) ([]model.Lecture, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil || raws == nil {
		return nil, &FormatError{Reason: "top level must be an array of lectures"}
	}

	lectures := make([]model.Lecture, 0, len(raws))
	ids := make(idSet, len(raws))
	for i, raw := range raws {
		path := fmt.Sprintf("[%d]", i)
		lec, err := decodeLecture(raw, path)
		if err != nil {
			return nil, err
		}
		if err := ids.add(lec.ID, path+"._id"); err != nil {
			return nil, err
		}
		lectures = append(lectures, lec)
	}
	return lectures, nil
}

// idSet rejects ids seen before within one collection.
type idSet map[string]bool

func (s idSet) add(id, path string) error {
	if s[id] {
		return &FormatError{Path: path, Reason: fmt.Sprintf("duplicate id %q", id)}
	}
	s[id] = true
	return nil
}

func decodeLecture(raw json.RawMessage, path string) (model.Lecture, error) {
	obj, err := requireObject(raw, path, lectureKeys)
	if err != nil {
		return model.Lecture{}, err
	}

	var lec model.Lecture
	if err := decodeFields(obj, path, map[string]any{
		"_id":                    &lec.ID,
		"_name":                  &lec.Name,
		"_totalSheetCount":       &lec.TotalSheetCount,
		"_hasPresentationPoints": &lec.HasPresentationPoints,
		"_criteriaPresentation":  &lec.CriteriaPresentation,
	}); err != nil {
		return model.Lecture{}, err
	}

	systems, err := requireArray(obj["systems"], path+".systems")
	if err != nil {
		return model.Lecture{}, err
	}
	lec.Systems = make([]model.LectureSystem, 0, len(systems))
	systemIDs := make(idSet, len(systems))
	for i, rawSys := range systems {
		sysPath := fmt.Sprintf("%s.systems[%d]", path, i)
		sys, err := decodeSystem(rawSys, sysPath)
		if err != nil {
			return model.Lecture{}, err
		}
		if err := systemIDs.add(sys.ID, sysPath+"._id"); err != nil {
			return model.Lecture{}, err
		}
		lec.Systems = append(lec.Systems, sys)
	}

	sheets, err := requireArray(obj["_sheets"], path+"._sheets")
	if err != nil {
		return model.Lecture{}, err
	}
	lec.Sheets = make([]model.Sheet, 0, len(sheets))
	sheetIDs := make(idSet, len(sheets))
	for i, rawSheet := range sheets {
		sheetPath := fmt.Sprintf("%s._sheets[%d]", path, i)
		sheet, err := decodeSheet(rawSheet, sheetPath)
		if err != nil {
			return model.Lecture{}, err
		}
		if err := sheetIDs.add(sheet.ID, sheetPath+"._id"); err != nil {
			return model.Lecture{}, err
		}
		lec.Sheets = append(lec.Sheets, sheet)
	}

	if lec.ID == "" {
		return model.Lecture{}, &FormatError{Path: path + "._id", Reason: "must not be empty"}
	}
	if err := lec.Validate(); err != nil {
		return model.Lecture{}, &FormatError{Path: path, Reason: err.Error()}
	}
	return lec, nil
}

func decodeSystem(raw json.RawMessage, path string) (model.LectureSystem, error) {
	obj, err := requireObject(raw, path, systemKeys)
	if err != nil {
		return model.LectureSystem{}, err
	}

	var rec systemRecord
	if err := decodeFields(obj, path, map[string]any{
		"_id":               &rec.ID,
		"_name":             &rec.Name,
		"_systemType":       &rec.SystemType,
		"_criteria":         &rec.Criteria,
		"_criteriaPerSheet": &rec.CriteriaPerSheet,
		"_pointsPerSheet":   &rec.PointsPerSheet,
	}); err != nil {
		return model.LectureSystem{}, err
	}
	if rec.ID == "" {
		return model.LectureSystem{}, &FormatError{Path: path + "._id", Reason: "must not be empty"}
	}

	return model.LectureSystem{
		ID:               rec.ID,
		Name:             rec.Name,
		Type:             model.SystemType(rec.SystemType),
		Criteria:         rec.Criteria,
		CriteriaPerSheet: rec.CriteriaPerSheet,
		PointsPerSheet:   rec.PointsPerSheet,
	}, nil
}

func decodeSheet(raw json.RawMessage, path string) (model.Sheet, error) {
	obj, err := requireObject(raw, path, sheetKeys)
	if err != nil {
		return model.Sheet{}, err
	}

	var (
		sheet model.Sheet
		date  string
	)
	if err := decodeFields(obj, path, map[string]any{
		"_id":           &sheet.ID,
		"_sheetNr":      &sheet.SheetNr,
		"_date":         &date,
		"_hasPresented": &sheet.HasPresented,
	}); err != nil {
		return model.Sheet{}, err
	}
	if sheet.ID == "" {
		return model.Sheet{}, &FormatError{Path: path + "._id", Reason: "must not be empty"}
	}

	parsed, err := time.Parse(time.RFC3339Nano, date)
	if err != nil {
		return model.Sheet{}, &FormatError{Path: path + "._date", Reason: fmt.Sprintf("not an ISO date: %q", date)}
	}
	sheet.Date = model.SheetDate(parsed)

	pairs, err := requireArray(obj["mapPoints"], path+".mapPoints")
	if err != nil {
		return model.Sheet{}, err
	}
	sheet.Points = make(map[string]model.Points, len(pairs))
	for i, rawPair := range pairs {
		id, p, err := decodePair(rawPair, fmt.Sprintf("%s.mapPoints[%d]", path, i))
		if err != nil {
			return model.Sheet{}, err
		}
		sheet.Points[id] = p
	}
	return sheet, nil
}

func decodePair(raw json.RawMessage, path string) (string, model.Points, error) {
	var pair []json.RawMessage
	if err := json.Unmarshal(raw, &pair); err != nil || len(pair) != 2 {
		return "", model.Points{}, &FormatError{Path: path, Reason: "expected [systemId, {achieved, total}]"}
	}

	var id string
	if err := json.Unmarshal(pair[0], &id); err != nil || id == "" {
		return "", model.Points{}, &FormatError{Path: path + "[0]", Reason: "system id must be a non-empty string"}
	}

	obj, err := requireObject(pair[1], path+"[1]", pointsKeys)
	if err != nil {
		return "", model.Points{}, err
	}
	var p model.Points
	if err := decodeFields(obj, path+"[1]", map[string]any{
		"achieved": &p.Achieved,
		"total":    &p.Total,
	}); err != nil {
		return "", model.Points{}, err
	}
	return id, p, nil
}

// ── helpers ──

var null = []byte("null")

func requireObject(raw json.RawMessage, path string, keys []string) (map[string]json.RawMessage, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		return nil, &FormatError{Path: path, Reason: "expected an object"}
	}
	for _, k := range keys {
		v, ok := obj[k]
		if !ok {
			return nil, &FormatError{Path: path, Reason: "missing key " + k}
		}
		if bytes.Equal(bytes.TrimSpace(v), null) {
			return nil, &FormatError{Path: path + "." + k, Reason: "must not be null"}
		}
	}
	return obj, nil
}

func requireArray(raw json.RawMessage, path string) ([]json.RawMessage, error) {
	var arr []json.RawMessage
	if err := json.Unmarshal(raw, &arr); err != nil || arr == nil {
		return nil, &FormatError{Path: path, Reason: "expected an array"}
	}
	return arr, nil
}

func decodeFields(obj map[string]json.RawMessage, path string, fields map[string]any) error {
	for key, dst := range fields {
		if err := json.Unmarshal(obj[key], dst); err != nil {
			return &FormatError{Path: path + "." + key, Reason: "wrong type"}
		}
	}
	return nil
}
