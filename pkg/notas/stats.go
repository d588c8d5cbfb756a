package notas

import (
	"math"
	"strings"
)

const (
	defaultHighestPossible = 10
	passRatio              = 0.5
	sobresalienteRatio     = 0.9
)

// UserStanding is where the cached user sits in the sorted table.
type UserStanding struct {
	Name       string
	Grade      float64
	Position   int // 1-based index in the sorted records
	Percentile int // share of the cohort the user outranks, 0-100
}

// Stats is a snapshot derived from the sorted records.
type Stats struct {
	Total                  int
	Average                float64 // NaN when Total is 0
	StdDev                 float64 // population; NaN when Total is 0
	HighestPossible        float64
	PassThreshold          float64
	SobresalienteThreshold float64
	UnderPass              int
	Mid                    int
	OverSob                int
	Marks                  []float64
	User                   *UserStanding
}

// ComputeStats summarizes the valid grades of sorted and locates userName.
func ComputeStats(sorted []Record, userName string) Stats {
	marks := make([]float64, 0, len(sorted))
	for _, r := range sorted {
		if r.Valid() {
			marks = append(marks, r.Grade)
		}
	}

	s := Stats{Total: len(marks), Marks: marks}
	s.Average = calculateMean(marks)
	s.StdDev = calculateStandardDeviation(marks)

	maxObserved := float64(defaultHighestPossible)
	if len(marks) > 0 {
		maxObserved = marks[0]
		for _, m := range marks[1:] {
			if m > maxObserved {
				maxObserved = m
			}
		}
	}
	s.HighestPossible = math.Ceil(maxObserved)
	s.PassThreshold = s.HighestPossible * passRatio
	s.SobresalienteThreshold = s.HighestPossible * sobresalienteRatio

	for _, m := range marks {
		switch {
		case m < s.PassThreshold:
			s.UnderPass++
		case m < s.SobresalienteThreshold:
			s.Mid++
		default:
			s.OverSob++
		}
	}

	s.User = findUser(sorted, userName, s.Total)
	return s
}

func findUser(sorted []Record, userName string, total int) *UserStanding {
	want := strings.TrimSpace(userName)
	if want == "" || total == 0 {
		return nil
	}
	for i, r := range sorted {
		if strings.TrimSpace(r.Name) != want || !r.Valid() {
			continue
		}
		pos := i + 1
		pct := int(math.Round(float64(total-pos) / float64(total) * 100))
		if pct < 0 {
			pct = 0
		}
		if pct > 100 {
			pct = 100
		}
		return &UserStanding{Name: want, Grade: r.Grade, Position: pos, Percentile: pct}
	}
	return nil
}

// Bucket names a grade the way the summary colors it.
func (s Stats) Bucket(grade float64) string {
	switch {
	case grade >= s.SobresalienteThreshold:
		return "sobresaliente"
	case grade >= s.PassThreshold:
		return "aprobado"
	default:
		return "suspenso"
	}
}

func calculateMean(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func calculateStandardDeviation(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}

	mean := calculateMean(values)
	variance := 0.0
	for _, v := range values {
		diff := v - mean
		variance += diff * diff
	}
	variance /= float64(len(values))

	return math.Sqrt(variance)
}
