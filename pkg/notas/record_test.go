package notas

import (
	"math"
	"reflect"
	"testing"
)

func TestNormalizeGrade(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"7,5", "7.5"},
		{"9", "9"},
		{".5", "0.5"},
		{",5", "0.5"},
		{" 6,25 ", "6.25"},
		{"NP", "NP"},
		{"", ""},
	}
	for _, c := range cases {
		if got := NormalizeGrade(c.in); got != c.want {
			t.Errorf("NormalizeGrade(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestParseGradeRejectsNonNumbers(t *testing.T) {
	for _, in := range []string{"NP", "", "Inf", "-Inf", "7.5.1", "7.5 (NP)"} {
		if v := ParseGrade(in); !math.IsNaN(v) {
			t.Errorf("ParseGrade(%q) = %v, want NaN", in, v)
		}
	}
	if v := ParseGrade("0.5"); v != 0.5 {
		t.Errorf("ParseGrade(0.5) = %v", v)
	}
}

func TestDisplayGradeUsesComma(t *testing.T) {
	if got := NewRecord("x", ".5").DisplayGrade(); got != "0,5" {
		t.Errorf("DisplayGrade = %q, want 0,5", got)
	}
	if got := NewRecord("x", "NP").DisplayGrade(); got != "NP" {
		t.Errorf("DisplayGrade = %q, want NP", got)
	}
}

func names(recs []Record) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Name
	}
	return out
}

func TestNewRecordsSortsDescendingKeepingTies(t *testing.T) {
	recs, _ := FixtureSource{Rows: [][2]string{
		{"Zeta", "5"},
		{"Alfa", "8"},
		{"Nadie", "NP"},
		{"Beta", "5"},
		{"Gama", "9,5"},
	}}.Records()

	want := []string{"Gama", "Alfa", "Zeta", "Beta", "Nadie"}
	if got := names(recs.Sorted); !reflect.DeepEqual(got, want) {
		t.Errorf("sorted = %v, want %v", got, want)
	}
	wantOrig := []string{"Zeta", "Alfa", "Nadie", "Beta", "Gama"}
	if got := names(recs.Original); !reflect.DeepEqual(got, wantOrig) {
		t.Errorf("original = %v, want %v", got, wantOrig)
	}
}

func TestNumericNamesBreakTiesDescending(t *testing.T) {
	recs := NewRecords([]Record{
		NewRecord("100", "7"),
		NewRecord("300", "7"),
		NewRecord("200", "7"),
	})
	want := []string{"300", "200", "100"}
	if got := names(recs.Sorted); !reflect.DeepEqual(got, want) {
		t.Errorf("sorted = %v, want %v", got, want)
	}
}

func TestNewRecordsDoesNotAliasInput(t *testing.T) {
	in := []Record{NewRecord("a", "1"), NewRecord("b", "2")}
	recs := NewRecords(in)
	in[0].Name = "changed"
	if recs.Original[0].Name != "a" {
		t.Errorf("original order aliases the input slice")
	}
}
