package notas

import (
	"math"
	"reflect"
	"testing"
)

const eps = 1e-9

func scenario(t *testing.T) Records {
	t.Helper()
	recs, err := FixtureSource{Rows: [][2]string{
		{"Ana López, Juan", "7,5"},
		{"Pérez, María", "9"},
	}}.Records()
	if err != nil {
		t.Fatal(err)
	}
	return recs
}

func TestComputeStatsScenario(t *testing.T) {
	s := ComputeStats(scenario(t).Sorted, "")

	if s.Total != 2 {
		t.Fatalf("total = %d", s.Total)
	}
	if !reflect.DeepEqual(s.Marks, []float64{9, 7.5}) {
		t.Errorf("marks = %v", s.Marks)
	}
	checks := []struct {
		name      string
		got, want float64
	}{
		{"average", s.Average, 8.25},
		{"stddev", s.StdDev, 0.75},
		{"highestPossible", s.HighestPossible, 9},
		{"passThreshold", s.PassThreshold, 4.5},
		{"sobresalienteThreshold", s.SobresalienteThreshold, 8.1},
	}
	for _, c := range checks {
		if math.Abs(c.got-c.want) > eps {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
	if s.UnderPass != 0 || s.Mid != 1 || s.OverSob != 1 {
		t.Errorf("buckets = %d/%d/%d, want 0/1/1", s.UnderPass, s.Mid, s.OverSob)
	}
	if s.User != nil {
		t.Errorf("user = %+v, want nil", s.User)
	}
}

func TestComputeStatsUserStanding(t *testing.T) {
	recs := scenario(t)

	s := ComputeStats(recs.Sorted, "  Pérez, María ")
	if s.User == nil {
		t.Fatal("user not found")
	}
	if s.User.Position != 1 || s.User.Percentile != 50 || s.User.Grade != 9 {
		t.Errorf("standing = %+v", *s.User)
	}

	s = ComputeStats(recs.Sorted, "Ana López, Juan")
	if s.User == nil || s.User.Position != 2 || s.User.Percentile != 0 {
		t.Errorf("standing = %+v", s.User)
	}

	if s := ComputeStats(recs.Sorted, "Nobody"); s.User != nil {
		t.Errorf("unknown user found: %+v", s.User)
	}
}

func TestComputeStatsProperties(t *testing.T) {
	rows := [][2]string{
		{"a", "3"}, {"b", "5"}, {"c", "5"}, {"d", "6,2"}, {"e", "8,9"},
		{"f", "9"}, {"g", "10"}, {"h", "NP"}, {"i", "0"}, {"j", ".5"},
	}
	recs, _ := FixtureSource{Rows: rows}.Records()

	for _, r := range rows {
		s := ComputeStats(recs.Sorted, r[0])
		if s.UnderPass+s.Mid+s.OverSob != s.Total {
			t.Fatalf("buckets do not add up: %d+%d+%d != %d", s.UnderPass, s.Mid, s.OverSob, s.Total)
		}
		if !(s.PassThreshold < s.SobresalienteThreshold) {
			t.Fatalf("pass %v >= sob %v", s.PassThreshold, s.SobresalienteThreshold)
		}
		if s.User == nil {
			if r[0] != "h" {
				t.Errorf("user %s not found", r[0])
			}
			continue
		}
		if s.User.Percentile < 0 || s.User.Percentile > 100 {
			t.Errorf("percentile %d out of range", s.User.Percentile)
		}
		greater := 0
		for _, m := range s.Marks {
			if m > s.User.Grade {
				greater++
			}
		}
		// "c" ties with "b" and comes after it in table order.
		want := greater + 1
		if r[0] == "c" {
			want++
		}
		if s.User.Position != want {
			t.Errorf("position of %s = %d, want %d", r[0], s.User.Position, want)
		}
	}
}

func TestComputeStatsEmpty(t *testing.T) {
	s := ComputeStats(nil, "someone")
	if s.Total != 0 || s.User != nil {
		t.Fatalf("unexpected stats %+v", s)
	}
	if !math.IsNaN(s.Average) || !math.IsNaN(s.StdDev) {
		t.Errorf("average/stddev = %v/%v, want NaN", s.Average, s.StdDev)
	}
	if s.HighestPossible != 10 || s.PassThreshold != 5 || s.SobresalienteThreshold != 9 {
		t.Errorf("defaults = %v/%v/%v", s.HighestPossible, s.PassThreshold, s.SobresalienteThreshold)
	}
}

func TestComputeStatsAllEqual(t *testing.T) {
	recs, _ := FixtureSource{Rows: [][2]string{{"a", "6"}, {"b", "6"}}}.Records()
	s := ComputeStats(recs.Sorted, "")
	if s.StdDev != 0 {
		t.Errorf("stddev = %v, want 0", s.StdDev)
	}
	if s.HighestPossible != 6 || s.OverSob != 2 {
		t.Errorf("hp = %v overSob = %d", s.HighestPossible, s.OverSob)
	}
}

func TestComputeStatsIdempotent(t *testing.T) {
	recs := scenario(t)
	a := ComputeStats(recs.Sorted, "Pérez, María")
	b := ComputeStats(recs.Sorted, "Pérez, María")
	if !reflect.DeepEqual(a, b) {
		t.Errorf("stats differ between calls: %+v vs %+v", a, b)
	}
}

func TestBucket(t *testing.T) {
	s := ComputeStats(scenario(t).Sorted, "")
	cases := map[float64]string{9: "sobresaliente", 8.2: "sobresaliente", 7.5: "aprobado", 4.5: "aprobado", 4.4: "suspenso"}
	for grade, want := range cases {
		if got := s.Bucket(grade); got != want {
			t.Errorf("Bucket(%v) = %s, want %s", grade, got, want)
		}
	}
}
