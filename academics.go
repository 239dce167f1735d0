package portal

import (
	"math"
	"strconv"
	"strings"

	"github.com/goliatone/go-student-portal/client"
)

// AllExams disables the exam type filter
const AllExams = "All"

const (
	ToneGood = "good"
	ToneFair = "fair"
	TonePoor = "poor"
)

// ExamOption is an entry of the exam type selector
type ExamOption struct {
	Value string
	Label string
}

// ExamOptions lists the exam types the grade view can filter by
var ExamOptions = []ExamOption{
	{Value: AllExams, Label: "All"},
	{Value: "Midterm", Label: "Mid-term"},
	{Value: "Finalterm", Label: "Final-term"},
	{Value: "Quiz", Label: "Quiz"},
}

// GradeRow is a grade record shaped for display. Marks is the percentage
// rounded to one decimal.
type GradeRow struct {
	Subject    string
	Teacher    string
	Grade      string
	Remarks    string
	ExamType   string
	Marks      float64
	MarksLabel string
	Tone       string
}

// GradeRows maps API records to display rows
func GradeRows(records []client.GradeRecord) []GradeRow {
	rows := make([]GradeRow, 0, len(records))
	for _, r := range records {
		marks := percentage(r.MarksObtained, r.TotalMarks)
		rows = append(rows, GradeRow{
			Subject:    r.SubjectName,
			Teacher:    r.TeacherName,
			Grade:      r.Grade,
			Remarks:    r.Remarks,
			ExamType:   r.ExamName,
			Marks:      marks,
			MarksLabel: formatOneDecimal(marks),
			Tone:       GradeTone(r.Grade),
		})
	}
	return rows
}

// NormalizeExamType drops spaces and hyphens and lowercases, so
// "Mid-term", "Mid term" and "midterm" compare equal.
func NormalizeExamType(s string) string {
	return strings.ToLower(strings.Map(func(r rune) rune {
		if r == '-' || r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			return -1
		}
		return r
	}, s))
}

// FilterGrades keeps rows whose exam type matches filter. An empty filter
// or AllExams keeps everything.
func FilterGrades(rows []GradeRow, filter string) []GradeRow {
	if filter == "" || filter == AllExams {
		return rows
	}

	want := NormalizeExamType(filter)
	out := make([]GradeRow, 0, len(rows))
	for _, r := range rows {
		if NormalizeExamType(r.ExamType) == want {
			out = append(out, r)
		}
	}
	return out
}

// AverageScore averages the rounded row percentages
func AverageScore(rows []GradeRow) (float64, bool) {
	if len(rows) == 0 {
		return 0, false
	}

	var sum float64
	for _, r := range rows {
		sum += r.Marks
	}
	return sum / float64(len(rows)), true
}

// AverageLabel renders the average as "83.5%", or "N/A" without rows
func AverageLabel(rows []GradeRow) string {
	avg, ok := AverageScore(rows)
	if !ok {
		return "N/A"
	}
	return formatOneDecimal(avg) + "%"
}

// GradeTone classifies a letter grade by its first letter
func GradeTone(grade string) string {
	switch {
	case strings.HasPrefix(grade, "A"):
		return ToneGood
	case strings.HasPrefix(grade, "B"):
		return ToneFair
	default:
		return TonePoor
	}
}

const (
	StatusPresent = "Present"
	StatusAbsent  = "Absent"
)

// AttendanceSummary counts attendance records. Records with any other
// status count toward Total only.
type AttendanceSummary struct {
	Total      int
	Present    int
	Absent     int
	Percentage string
}

func SummarizeAttendance(records []client.AttendanceRecord) AttendanceSummary {
	s := AttendanceSummary{Total: len(records), Percentage: "0"}
	for _, r := range records {
		switch r.Status {
		case StatusPresent:
			s.Present++
		case StatusAbsent:
			s.Absent++
		}
	}

	if s.Total > 0 {
		s.Percentage = formatOneDecimal(float64(s.Present) / float64(s.Total) * 100)
	}

	return s
}

func percentage(part, total float64) float64 {
	if total == 0 {
		return 0
	}
	return round1(part / total * 100)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func formatOneDecimal(v float64) string {
	return strconv.FormatFloat(round1(v), 'f', 1, 64)
}
