package notas

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// Record is one row of the results table.
type Record struct {
	Name  string
	Text  string  // normalized grade text, dot as decimal separator
	Grade float64 // NaN when Text is not a number
}

// Valid reports whether the grade takes part in statistics.
func (r Record) Valid() bool {
	return !math.IsNaN(r.Grade) && !math.IsInf(r.Grade, 0)
}

// DisplayGrade is the grade text as the host page shows it.
func (r Record) DisplayGrade() string {
	return strings.Replace(r.Text, ".", ",", 1)
}

// Records holds the two orderings of the same table.
type Records struct {
	Original []Record
	Sorted   []Record
}

// RecordSource yields the records of a results table.
type RecordSource interface {
	Records() (Records, error)
}

// NormalizeGrade turns "7,5" into "7.5" and ".5" into "0.5".
func NormalizeGrade(text string) string {
	text = strings.TrimSpace(text)
	text = strings.Replace(text, ",", ".", 1)
	if strings.HasPrefix(text, ".") {
		text = "0" + text
	}
	return text
}

// ParseGrade returns NaN for anything that is not a finite number. The
// whole text must parse, so "7.5 (NP)" is not a grade.
func ParseGrade(normalized string) float64 {
	v, err := strconv.ParseFloat(normalized, 64)
	if err != nil || math.IsInf(v, 0) {
		return math.NaN()
	}
	return v
}

// NewRecord builds a record from raw cell text.
func NewRecord(name, gradeText string) Record {
	text := NormalizeGrade(gradeText)
	return Record{Name: name, Text: text, Grade: ParseGrade(text)}
}

// NewRecords keeps the input as the original order and derives the sorted one.
func NewRecords(original []Record) Records {
	orig := make([]Record, len(original))
	copy(orig, original)
	sorted := make([]Record, len(original))
	copy(sorted, original)
	sortByGradeDesc(sorted)
	return Records{Original: orig, Sorted: sorted}
}

// sortByGradeDesc orders by grade descending. Equal grades keep their
// table order unless both names are numbers, which compare descending.
// Invalid grades go last.
func sortByGradeDesc(recs []Record) {
	sort.SliceStable(recs, func(i, j int) bool {
		a, b := recs[i], recs[j]
		if a.Valid() != b.Valid() {
			return a.Valid()
		}
		if a.Valid() && a.Grade != b.Grade {
			return a.Grade > b.Grade
		}
		an, aok := numericName(a.Name)
		bn, bok := numericName(b.Name)
		if aok && bok {
			return an > bn
		}
		return false
	})
}

func numericName(name string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(name), 64)
	if err != nil || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// FixtureSource supplies literal rows, for tests and JSON input.
type FixtureSource struct {
	Rows [][2]string
}

func (f FixtureSource) Records() (Records, error) {
	recs := make([]Record, 0, len(f.Rows))
	for _, row := range f.Rows {
		recs = append(recs, NewRecord(row[0], row[1]))
	}
	return NewRecords(recs), nil
}

// Records is its own source once parsed.
func (r Records) Records() (Records, error) {
	return r, nil
}
