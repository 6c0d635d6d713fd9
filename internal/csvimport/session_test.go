package csvimport_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/masjid-admin/internal/csvimport"
	"github.com/pkordes/masjid-admin/internal/domain"
)

var masjidID = uuid.MustParse("8d9b1d0e-3f1a-4c0b-9a4e-2f5b7c6d1e00")

func newSession() *csvimport.Session {
	return csvimport.NewSession(masjidID, time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC))
}

// timetable builds a CSV body with the given header row and one data row per
// date, filling every other cell with a plausible time.
func timetable(headers []string, dates ...string) string {
	var b strings.Builder
	b.WriteString(strings.Join(headers, ","))
	b.WriteString("\n")
	for _, d := range dates {
		cells := make([]string, len(headers))
		for i, h := range headers {
			if h == domain.FieldDate || h == "Day" {
				cells[i] = d
			} else {
				cells[i] = fmt.Sprintf("%02d:%02d", 5+i, 10+i)
			}
		}
		b.WriteString(strings.Join(cells, ","))
		b.WriteString("\n")
	}
	return b.String()
}

func without(fields []string, drop string) []string {
	var out []string
	for _, f := range fields {
		if f != drop {
			out = append(out, f)
		}
	}
	return out
}

// ---- upload ----------------------------------------------------------------

func TestUpload_FastPathSkipsMapping(t *testing.T) {
	// Required fields in reverse order.
	headers := make([]string, len(domain.RequiredImportFields))
	for i, f := range domain.RequiredImportFields {
		headers[len(headers)-1-i] = f
	}
	s := newSession()

	err := s.Upload(strings.NewReader(timetable(headers, "2025-01-01", "2025-01-02")), "jan.csv")

	require.NoError(t, err)
	assert.Equal(t, csvimport.StepReview, s.Step)
	assert.Len(t, s.Mapping, 12)
	for _, f := range domain.RequiredImportFields {
		assert.Equal(t, f, s.Mapping[f])
	}
	assert.Equal(t, "jan.csv", s.Filename)
}

func TestUpload_FastPathPicksUpOptionalField(t *testing.T) {
	headers := append(append([]string{}, domain.RequiredImportFields...), domain.FieldAsrStart1)
	s := newSession()

	require.NoError(t, s.Upload(strings.NewReader(timetable(headers, "2025-01-01")), "jan.csv"))

	assert.Equal(t, csvimport.StepReview, s.Step)
	assert.Equal(t, domain.FieldAsrStart1, s.Mapping[domain.FieldAsrStart1])
}

func TestUpload_MissingFieldGoesToMapping(t *testing.T) {
	headers := append(without(domain.RequiredImportFields, domain.FieldSunrise), "Shuruq")
	s := newSession()

	require.NoError(t, s.Upload(strings.NewReader(timetable(headers, "2025-01-01")), "jan.csv"))

	assert.Equal(t, csvimport.StepMapping, s.Step)
	assert.Equal(t, []string{domain.FieldSunrise}, s.Unmapped())
	assert.False(t, s.CanContinue())

	err := s.Continue()
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, csvimport.StepMapping, s.Step)
	assert.Empty(t, s.Error)

	require.NoError(t, s.Assign(domain.FieldSunrise, "Shuruq"))
	assert.True(t, s.CanContinue())
	require.NoError(t, s.Continue())
	assert.Equal(t, csvimport.StepReview, s.Step)
}

func TestUpload_ContinueNeedsAllTwelve(t *testing.T) {
	headers := []string{"Day", "A", "B", "C", "D", "E", "F", "G", "H", "I", "J", "K"}
	s := newSession()
	require.NoError(t, s.Upload(strings.NewReader(timetable(headers, "2025-01-01")), "jan.csv"))
	require.Equal(t, csvimport.StepMapping, s.Step)

	for i, f := range domain.RequiredImportFields {
		assert.False(t, s.CanContinue(), "continue enabled with %d fields mapped", i)
		require.NoError(t, s.Assign(f, headers[i]))
	}
	assert.True(t, s.CanContinue())
	require.NoError(t, s.Continue())
}

func TestUpload_ParseFailureStaysInUpload(t *testing.T) {
	s := newSession()

	err := s.Upload(strings.NewReader(""), "empty.csv")

	assert.ErrorIs(t, err, domain.ErrParse)
	assert.Equal(t, csvimport.StepUpload, s.Step)
	assert.NotEmpty(t, s.Error)
	assert.Nil(t, s.Headers)
	assert.Nil(t, s.Rows)
	assert.Empty(t, s.Mapping)
}

func TestUpload_WrongStep(t *testing.T) {
	s := newSession()
	require.NoError(t, s.Upload(strings.NewReader(timetable(domain.RequiredImportFields, "2025-01-01")), "a.csv"))

	err := s.Upload(strings.NewReader(timetable(domain.RequiredImportFields, "2025-01-01")), "b.csv")

	assert.ErrorIs(t, err, domain.ErrStep)
	assert.Equal(t, "a.csv", s.Filename)
}

// ---- mapping ---------------------------------------------------------------

func TestAssign_RejectsUnknownFieldAndHeader(t *testing.T) {
	s := newSession()
	require.NoError(t, s.Upload(strings.NewReader(timetable([]string{"Day", "Fajr"}, "2025-01-01")), "a.csv"))

	assert.ErrorIs(t, s.Assign("tahajjud", "Fajr"), domain.ErrValidation)
	assert.ErrorIs(t, s.Assign(domain.FieldFajrStart, "Nope"), domain.ErrValidation)

	require.NoError(t, s.Assign(domain.FieldFajrStart, "Fajr"))
	require.NoError(t, s.Assign(domain.FieldFajrStart, ""))
	assert.Contains(t, s.Unmapped(), domain.FieldFajrStart)
}

func TestAssign_OnlyInMapping(t *testing.T) {
	s := newSession()

	assert.ErrorIs(t, s.Assign(domain.FieldDate, "date"), domain.ErrStep)
}

func TestBack_FromMappingDiscardsData(t *testing.T) {
	s := newSession()
	require.NoError(t, s.Upload(strings.NewReader(timetable([]string{"Day", "Fajr"}, "2025-01-01")), "a.csv"))
	require.NoError(t, s.Assign(domain.FieldDate, "Day"))

	require.NoError(t, s.Back())

	assert.Equal(t, csvimport.StepUpload, s.Step)
	assert.Nil(t, s.Headers)
	assert.Nil(t, s.Rows)
	assert.Empty(t, s.Mapping)
	assert.Empty(t, s.Filename)
}

func TestBack_FromReviewKeepsMapping(t *testing.T) {
	s := newSession()
	require.NoError(t, s.Upload(strings.NewReader(timetable(domain.RequiredImportFields, "2025-01-01")), "a.csv"))

	require.NoError(t, s.Back())

	assert.Equal(t, csvimport.StepMapping, s.Step)
	assert.Len(t, s.Mapping, 12)
	assert.Len(t, s.Rows, 1)
	assert.True(t, s.CanContinue())
}

func TestBack_FromUploadIsRefused(t *testing.T) {
	assert.ErrorIs(t, newSession().Back(), domain.ErrStep)
}

// ---- projection ------------------------------------------------------------

func TestResolve(t *testing.T) {
	mapping := map[string]string{domain.FieldDate: "Day", domain.FieldFajrStart: "Fajr"}
	row := map[string]string{"Day": "2025-01-01"}

	assert.Equal(t, "2025-01-01", csvimport.Resolve(domain.FieldDate, mapping, row))
	assert.Equal(t, "", csvimport.Resolve(domain.FieldFajrStart, mapping, row), "mapped header missing from row")
	assert.Equal(t, "", csvimport.Resolve(domain.FieldSunrise, mapping, row), "unmapped field")
}

func TestProject_TagsMasjidAndActive(t *testing.T) {
	s := newSession()
	require.NoError(t, s.Upload(strings.NewReader(timetable(domain.RequiredImportFields, "2025-01-01", "2025-01-02")), "a.csv"))

	rows, err := s.Project()

	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, r := range rows {
		assert.Equal(t, masjidID, r.MasjidID)
		assert.True(t, r.Active)
		assert.Nil(t, r.AsrStart1)
	}
	assert.Equal(t, "2025-01-02", rows[1].Date)
}

func TestProject_RaggedRowYieldsEmptyString(t *testing.T) {
	in := strings.Join(domain.RequiredImportFields, ",") + "\n2025-01-01,05:12\n"
	s := newSession()
	require.NoError(t, s.Upload(strings.NewReader(in), "a.csv"))

	rows, err := s.Project()

	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "05:12", rows[0].FajrStart)
	assert.Equal(t, "", rows[0].IshaJammat)
}

func TestProject_NormalizesDates(t *testing.T) {
	in := timetable(domain.RequiredImportFields, "2025/01/03", "3 Jan 2025", "January 4, 2025", "someday")
	s := newSession()
	require.NoError(t, s.Upload(strings.NewReader(in), "a.csv"))

	rows, err := s.Project()

	require.NoError(t, err)
	assert.Equal(t, "2025-01-03", rows[0].Date)
	assert.Equal(t, "2025-01-03", rows[1].Date)
	assert.Equal(t, "2025-01-04", rows[2].Date)
	assert.Equal(t, "someday", rows[3].Date)
}

func TestProject_DayMonthOrderIsNotGuessed(t *testing.T) {
	// A UK export: 3 January and 13 January.
	in := timetable(domain.RequiredImportFields, "03/01/2025", "13/01/2025", "01/03/2025")
	s := newSession()
	require.NoError(t, s.Upload(strings.NewReader(in), "a.csv"))

	rows, err := s.Project()

	require.NoError(t, err)
	assert.Equal(t, "03/01/2025", rows[0].Date)
	assert.Equal(t, "13/01/2025", rows[1].Date)
	assert.Equal(t, "01/03/2025", rows[2].Date)
}

func TestProject_OnlyInReview(t *testing.T) {
	_, err := newSession().Project()

	assert.ErrorIs(t, err, domain.ErrStep)
}

// ---- review ----------------------------------------------------------------

func TestReview_DateRangeSkipsUnparseable(t *testing.T) {
	in := timetable(domain.RequiredImportFields, "2025-01-03", "2025-01-01", "not a date")
	s := newSession()
	require.NoError(t, s.Upload(strings.NewReader(in), "a.csv"))

	sum, err := s.Review()

	require.NoError(t, err)
	assert.Equal(t, 3, sum.Total)
	require.NotNil(t, sum.DateRange)
	assert.Equal(t, "2025-01-01", sum.DateRange.Min)
	assert.Equal(t, "2025-01-03", sum.DateRange.Max)
	require.Len(t, sum.Warnings, 1)
	assert.Equal(t, 3, sum.Warnings[0].Row)
}

func TestReview_PreviewIsBounded(t *testing.T) {
	dates := make([]string, 9)
	for i := range dates {
		dates[i] = fmt.Sprintf("2025-01-%02d", i+1)
	}
	s := newSession()
	require.NoError(t, s.Upload(strings.NewReader(timetable(domain.RequiredImportFields, dates...)), "a.csv"))

	sum, err := s.Review()

	require.NoError(t, err)
	assert.Len(t, sum.Preview, csvimport.PreviewSize)
	assert.Equal(t, 9, sum.Total)
	assert.Equal(t, "2025-01-01", sum.Preview[0].Date)
}

func TestReview_NoParseableDates(t *testing.T) {
	assert.Nil(t, csvimport.Range([]string{"", "tomorrow"}))
}

func TestReview_AmbiguousDatesAreFlagged(t *testing.T) {
	in := timetable(domain.RequiredImportFields, "2025-01-02", "03/01/2025")
	s := newSession()
	require.NoError(t, s.Upload(strings.NewReader(in), "a.csv"))

	sum, err := s.Review()

	require.NoError(t, err)
	require.NotNil(t, sum.DateRange)
	assert.Equal(t, "2025-01-02", sum.DateRange.Min)
	assert.Equal(t, "2025-01-02", sum.DateRange.Max)
	require.Len(t, sum.Warnings, 1)
	assert.Equal(t, 2, sum.Warnings[0].Row)
	assert.Equal(t, `date "03/01/2025" is ambiguous; use YYYY-MM-DD`, sum.Warnings[0].Message)
}

func TestReview_WarnsJamaatBeforeStart(t *testing.T) {
	in := strings.Join(domain.RequiredImportFields, ",") + "\n" +
		"2025-01-01,05:10,05:40,07:00,12:10,12:30,14:20,14:45,16:05,16:10,17:40,19:30\n" +
		"2025-01-02,06:00,05:30,07:00,12:10,12:30,14:20,14:45,16:05,16:10,17:40,19:30\n"
	s := newSession()
	require.NoError(t, s.Upload(strings.NewReader(in), "a.csv"))

	sum, err := s.Review()

	require.NoError(t, err)
	assert.Equal(t, []csvimport.RowWarning{{Row: 2, Message: "fajr jamaat is before start"}}, sum.Warnings)
	assert.Equal(t, 2, sum.Total)
}

func TestRecordSubmitError_KeepsReviewState(t *testing.T) {
	s := newSession()
	require.NoError(t, s.Upload(strings.NewReader(timetable(domain.RequiredImportFields, "2025-01-01", "2025-01-02")), "a.csv"))
	rows := s.Rows
	mapping := s.Mapping

	s.RecordSubmitError(errors.New("connection reset"))

	assert.Equal(t, csvimport.StepReview, s.Step)
	assert.Equal(t, rows, s.Rows)
	assert.Equal(t, mapping, s.Mapping)
	assert.Equal(t, "Failed to upload prayer times", s.Error)
}

func TestRecordSubmitError_ShowsOnlyValidationProblems(t *testing.T) {
	s := newSession()
	require.NoError(t, s.Upload(strings.NewReader(timetable(domain.RequiredImportFields, "2025-01-01")), "a.csv"))
	err := fmt.Errorf("service.PrayerTimeService.BatchCreate: %w",
		fmt.Errorf("%w: row 3: date must be YYYY-MM-DD; row 4: fajr_start is required", domain.ErrValidation))

	s.RecordSubmitError(fmt.Errorf("client.Client.BatchCreate: %w", err))

	assert.Equal(t, "Failed to upload prayer times: row 3: date must be YYYY-MM-DD; row 4: fajr_start is required", s.Error)
	assert.Equal(t, csvimport.StepReview, s.Step)
}
