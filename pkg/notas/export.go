package notas

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/invopop/jsonschema"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

const defaultSubject = "notas"

var illegalFilenameChars = regexp.MustCompile(`[\\/:*?"<>|]+`)

// Export is the downloadable summary of one grades page.
type Export struct {
	Subject                string          `json:"subject" jsonschema_description:"Subject name taken from the page heading"`
	Average                *float64        `json:"average" jsonschema_description:"Mean of the valid grades, null when there are none"`
	HighestPossible        float64         `json:"highestPossible"`
	PassThreshold          float64         `json:"passThreshold"`
	SobresalienteThreshold float64         `json:"sobresalienteThreshold"`
	Distribution           Distribution    `json:"distribution" jsonschema_description:"Grade count per range, lowest range first"`
	Students               []ExportStudent `json:"students" jsonschema_description:"Every row, ascending by grade"`
}

type ExportStudent struct {
	Name  string   `json:"name"`
	Grade *float64 `json:"grade"`
}

// Distribution maps a range label to a count and keeps insertion order.
type Distribution struct {
	m *orderedmap.OrderedMap[string, int]
}

func NewDistribution() Distribution {
	return Distribution{m: orderedmap.New[string, int]()}
}

func (d Distribution) Set(key string, count int) {
	d.m.Set(key, count)
}

func (d Distribution) Get(key string) (int, bool) {
	if d.m == nil {
		return 0, false
	}
	return d.m.Get(key)
}

// Keys returns the range labels in insertion order.
func (d Distribution) Keys() []string {
	if d.m == nil {
		return nil
	}
	keys := make([]string, 0, d.m.Len())
	for pair := d.m.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

func (d Distribution) MarshalJSON() ([]byte, error) {
	if d.m == nil {
		return []byte("{}"), nil
	}
	return d.m.MarshalJSON()
}

func (Distribution) JSONSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:                 "object",
		AdditionalProperties: &jsonschema.Schema{Type: "integer"},
	}
}

func finiteOrNil(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	r := round2(v)
	return &r
}

// BuildExport assembles the document for records and their stats.
func BuildExport(subject string, sorted []Record, stats Stats) Export {
	pf := round2(stats.PassThreshold)
	sf := round2(stats.SobresalienteThreshold)
	hp := stats.HighestPossible

	dist := NewDistribution()
	dist.Set("0-"+svgNum(pf), stats.UnderPass)
	dist.Set(svgNum(pf)+"-"+svgNum(sf), stats.Mid)
	dist.Set(svgNum(sf)+"-"+svgNum(hp), stats.OverSob)

	students := make([]ExportStudent, 0, len(sorted))
	for _, r := range sorted {
		students = append(students, ExportStudent{
			Name:  strings.TrimSpace(r.Name),
			Grade: finiteOrNil(r.Grade),
		})
	}
	sort.SliceStable(students, func(i, j int) bool {
		a, b := students[i].Grade, students[j].Grade
		if a == nil || b == nil {
			return a != nil && b == nil
		}
		return *a < *b
	})

	return Export{
		Subject:                subject,
		Average:                finiteOrNil(stats.Average),
		HighestPossible:        hp,
		PassThreshold:          pf,
		SobresalienteThreshold: sf,
		Distribution:           dist,
		Students:               students,
	}
}

// MarshalIndent renders the document with two-space indentation.
func (e Export) MarshalIndent() ([]byte, error) {
	data, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal export: %w", err)
	}
	return data, nil
}

func (e Export) WriteTo(w io.Writer) (int64, error) {
	data, err := e.MarshalIndent()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	if err != nil {
		return int64(n), fmt.Errorf("failed to write export: %w", err)
	}
	return int64(n), nil
}

// ExportFilename strips characters that are illegal in file names.
func ExportFilename(subject string) string {
	name := strings.TrimSpace(illegalFilenameChars.ReplaceAllString(subject, ""))
	if name == "" {
		name = defaultSubject
	}
	return name + ".json"
}

func generateSchema[T any]() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	return reflector.Reflect(v)
}

// ExportSchema describes the export document for downstream validation.
func ExportSchema() *jsonschema.Schema {
	return generateSchema[Export]()
}
