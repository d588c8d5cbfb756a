package notas

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
)

// RowSink is a rendered table whose rows can be rewritten in place.
type RowSink interface {
	Len() int
	SetRow(i int, name, grade string)
}

// Controller ties the parsed records to a rendered table and the summary.
type Controller struct {
	cfg     *Config
	records Records
	stats   Stats
	subject string
	sink    RowSink
	sorted  bool
}

// NewController computes the stats for src. Nothing is drawn until the
// first SetSorted call.
func NewController(cfg *Config, src RecordSource, sink RowSink, subject string) (*Controller, error) {
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	records, err := src.Records()
	if err != nil {
		return nil, fmt.Errorf("failed to read records: %w", err)
	}
	if sink != nil && sink.Len() != len(records.Original) {
		return nil, fmt.Errorf("table has %d rows but %d records were parsed", sink.Len(), len(records.Original))
	}
	if subject == "" {
		subject = defaultSubject
	}

	c := &Controller{
		cfg:     cfg,
		records: records,
		stats:   ComputeStats(records.Sorted, cfg.UserName),
		subject: subject,
		sink:    sink,
	}
	cfg.Logger.Debug("computed stats",
		"total", c.stats.Total,
		"average", c.stats.Average,
		"stddev", c.stats.StdDev,
		"highest_possible", c.stats.HighestPossible)
	if cfg.UserName != "" && c.stats.User == nil {
		cfg.Logger.Info("user not found in table", "name", cfg.UserName)
	}
	return c, nil
}

func (c *Controller) Stats() Stats     { return c.stats }
func (c *Controller) Records() Records { return c.records }
func (c *Controller) Subject() string  { return c.subject }
func (c *Controller) IsSorted() bool   { return c.sorted }

// Visible is the record order currently shown.
func (c *Controller) Visible() []Record {
	if c.sorted {
		return c.records.Sorted
	}
	return c.records.Original
}

// SetSorted shows the sorted or the original order.
func (c *Controller) SetSorted(sorted bool) {
	c.sorted = sorted
	if c.sink == nil {
		return
	}
	for i, r := range c.Visible() {
		if i >= c.sink.Len() {
			break
		}
		c.sink.SetRow(i, r.Name, r.DisplayGrade())
	}
}

func (c *Controller) Toggle() {
	c.SetSorted(!c.sorted)
}

// Export builds the export document for the current records.
func (c *Controller) Export() Export {
	return BuildExport(c.subject, c.records.Sorted, c.stats)
}

// WriteExport writes the export document to w. Failures are logged and
// returned.
func (c *Controller) WriteExport(w io.Writer) error {
	if _, err := c.Export().WriteTo(w); err != nil {
		c.cfg.Logger.Error("Notas UPV: error exporting JSON", "error", err)
		return err
	}
	return nil
}

// ExportToFile writes the export next to the configured directory, named
// after the subject.
func (c *Controller) ExportToFile() (string, error) {
	path := filepath.Join(c.cfg.ExportDir, ExportFilename(c.subject))
	f, err := os.Create(path)
	if err != nil {
		c.cfg.Logger.Error("Notas UPV: error exporting JSON", "error", err)
		return "", fmt.Errorf("failed to create export file: %w", err)
	}
	if err := c.WriteExport(f); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		c.cfg.Logger.Error("Notas UPV: error exporting JSON", "error", err)
		return "", fmt.Errorf("failed to close export file: %w", err)
	}
	c.cfg.Logger.Info("export written", "file", path)
	return path, nil
}

type panelUser struct {
	Grade    string
	Color    string
	Position int
	Total    int
	Top      int
}

type panelData struct {
	User      *panelUser
	Curve     template.HTML
	Average   string
	UnderPass int
	Mid       int
	OverSob   int
	Pass      string
	Sob       string
	Sorted    bool
	Script    scriptData
}

type scriptData struct {
	Sorted   [][2]string `json:"sorted"`
	Original [][2]string `json:"original"`
	Export   Export      `json:"export"`
	Filename string      `json:"filename"`
}

var gradeColors = map[string]string{
	"sobresaliente": "#4CAF50",
	"aprobado":      "#2196F3",
	"suspenso":      "#f44336",
}

func rowPairs(recs []Record) [][2]string {
	out := make([][2]string, len(recs))
	for i, r := range recs {
		out[i] = [2]string{r.Name, r.DisplayGrade()}
	}
	return out
}

// Panel renders the summary shown above the table.
func (c *Controller) Panel() (string, error) {
	s := c.stats
	data := panelData{
		Curve:     template.HTML(RenderCurve(s, c.cfg.Curve)),
		Average:   FormatDecimal2(s.Average),
		UnderPass: s.UnderPass,
		Mid:       s.Mid,
		OverSob:   s.OverSob,
		Pass:      FormatNumber(s.PassThreshold),
		Sob:       FormatNumber(s.SobresalienteThreshold),
		Sorted:    c.sorted,
		Script: scriptData{
			Sorted:   rowPairs(c.records.Sorted),
			Original: rowPairs(c.records.Original),
			Export:   c.Export(),
			Filename: ExportFilename(c.subject),
		},
	}
	if u := s.User; u != nil {
		data.User = &panelUser{
			Grade:    formatShortest(u.Grade),
			Color:    gradeColors[s.Bucket(u.Grade)],
			Position: u.Position,
			Total:    s.Total,
			Top:      100 - u.Percentile,
		}
	}

	var buf bytes.Buffer
	if err := panelTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render summary panel: %w", err)
	}
	return buf.String(), nil
}

var panelTemplate = template.Must(template.New("notas-panel").Parse(panelHTML))

const panelHTML = `<span id="notas-upv">
<div style="text-align: center; margin-bottom: 12px; padding: 12px 24px; background: #f9f9f9; display:flex; flex-direction:row; align-items:center; justify-content:space-between; gap:20px;">
{{- with .User}}
<div style="display:flex; flex-direction:column; align-items:start;">
  <p style="margin:0; padding:0; font-size: 1.2em;">Tu nota:</p>
  <div style="font-size: 5em; font-weight: bold; color: {{.Color}};">{{.Grade}}</div>
  <div style="color: #666; margin: 8px 0; text-align:left; font-size: 1em;">
    Estás en la posición <strong>{{.Position}}</strong> de {{.Total}} (top <strong>{{.Top}}%</strong>)
  </div>
</div>
{{- end}}
<div style="display: flex; flex-direction: column; align-items: center; border-left: 1px solid #ddd; padding-left: 20px; margin-left: 20px;">
{{.Curve}}
<div style="display: flex; justify-content: center; gap: 20px; margin: 10px 0;">
  <div style="text-align: center;">
    <div style="font-size: 1.3em; font-weight: bold; color: #666;">{{.Average}}</div>
    <div style="font-size: 0.8em; color: #999;">Media</div>
  </div>
  <div style="text-align: center;">
    <div style="font-size: 1.3em; font-weight: bold; color: #f44336;">{{.UnderPass}}</div>
    <div style="font-size: 0.8em; color: #999;">Suspensos (&lt; {{.Pass}})</div>
  </div>
  <div style="text-align: center;">
    <div style="font-size: 1.3em; font-weight: bold; color: #2196F3;">{{.Mid}}</div>
    <div style="font-size: 0.8em; color: #999;">Aprobados ({{.Pass}} - {{.Sob}})</div>
  </div>
  <div style="text-align: center;">
    <div style="font-size: 1.3em; font-weight: bold; color: #4CAF50;">{{.OverSob}}</div>
    <div style="font-size: 0.8em; color: #999;">Sobresalientes (≥ {{.Sob}})</div>
  </div>
</div>
</div>
</div>
<div style="display:flex; flex-direction:row; justify-content:space-between; align-items: center; gap: 12px; margin: 12px 0;">
  <label style="color: #666; cursor: pointer; display: flex; align-items: center; font-size: 1em;">
    Ordenar por nota
    {{- if .Sorted}}
    <input type="checkbox" id="notas-upv-sort" checked style="margin-left: 6px; transform: scale(1.2); cursor: pointer;">
    {{- else}}
    <input type="checkbox" id="notas-upv-sort" style="margin-left: 6px; transform: scale(1.2); cursor: pointer;">
    {{- end}}
  </label>
  <div style="display:flex; gap:8px; align-items:center;">
    <button id="notas-upv-download" style="padding:6px 10px; border-radius:4px; border:1px solid #ddd; background:#fff; cursor:pointer; font-size:0.95em;">Descargar JSON</button>
  </div>
</div>
<script>
(function () {
  var data = {{.Script}};
  var panel = document.getElementById("notas-upv");
  var table = panel.nextElementSibling;
  var rows = Array.prototype.filter.call(table.tBodies[0].rows, function (tr) {
    return tr.querySelectorAll(":scope > td").length >= 2;
  });
  function show(list) {
    rows.forEach(function (tr, i) {
      var tds = tr.querySelectorAll(":scope > td");
      tds[0].textContent = list[i][0];
      tds[1].textContent = list[i][1];
    });
  }
  document.getElementById("notas-upv-sort").addEventListener("change", function () {
    show(this.checked ? data.sorted : data.original);
  });
  document.getElementById("notas-upv-download").addEventListener("click", function () {
    try {
      var blob = new Blob([JSON.stringify(data.export, null, 2)], { type: "application/json" });
      var url = URL.createObjectURL(blob);
      var a = document.createElement("a");
      a.href = url;
      a.download = data.filename;
      document.body.appendChild(a);
      a.click();
      a.remove();
      URL.revokeObjectURL(url);
    } catch (err) {
      console.error("Notas UPV: error descargando JSON", err);
    }
  });
})();
</script>
</span>`
