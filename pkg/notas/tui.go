package notas

import (
	"fmt"
	"math"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gdamore/tcell/v2"
)

var sparkLevels = []rune("▁▂▃▄▅▆▇█")

const (
	tableTop   = 7
	nameColumn = 2
)

var (
	styleTitle  = tcell.StyleDefault.Bold(true)
	styleDim    = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleUser   = tcell.StyleDefault.Foreground(tcell.NewHexColor(0x4edfff)).Bold(true)
	styleStatus = tcell.StyleDefault.Reverse(true)
	bucketStyle = map[string]tcell.Style{
		"sobresaliente": tcell.StyleDefault.Foreground(tcell.NewHexColor(0x4CAF50)),
		"aprobado":      tcell.StyleDefault.Foreground(tcell.NewHexColor(0x2196F3)),
		"suspenso":      tcell.StyleDefault.Foreground(tcell.NewHexColor(0xf44336)),
	}
)

// Viewer is a terminal rendition of the grades table. It is a RowSink,
// so the controller rewrites its rows exactly as it does the page's.
type Viewer struct {
	screen tcell.Screen
	rows   [][2]string
	ctrl   *Controller
	offset int
	status string
}

// NewViewer shows recs in their original order until a controller is
// attached.
func NewViewer(screen tcell.Screen, recs Records) *Viewer {
	return &Viewer{screen: screen, rows: rowPairs(recs.Original)}
}

func (v *Viewer) Attach(c *Controller) {
	v.ctrl = c
}

func (v *Viewer) Len() int {
	return len(v.rows)
}

func (v *Viewer) SetRow(i int, name, grade string) {
	if i < 0 || i >= len(v.rows) {
		return
	}
	v.rows[i] = [2]string{name, grade}
}

// Row returns the cells currently shown in row i.
func (v *Viewer) Row(i int) (string, string) {
	return v.rows[i][0], v.rows[i][1]
}

func (v *Viewer) Status() string {
	return v.status
}

func (v *Viewer) writeString(x, y int, s string, style tcell.Style) int {
	for _, ch := range s {
		v.screen.SetContent(x, y, ch, nil, style)
		x++
	}
	return x
}

// sparkline squeezes the sampled density into width block characters.
func sparkline(s Stats, width int) string {
	if width < 2 || s.Total == 0 {
		return ""
	}
	maxX := s.HighestPossible
	if !(maxX > 0) {
		maxX = defaultHighestPossible
	}
	points, maxY := SampleCurve(s.Average, s.StdDev, maxX, width-1)
	if !(maxY > 0) {
		return ""
	}
	var b strings.Builder
	for _, p := range points {
		level := int(math.Round(p.Y / maxY * float64(len(sparkLevels)-1)))
		b.WriteRune(sparkLevels[level])
	}
	return b.String()
}

// Draw repaints the whole screen.
func (v *Viewer) Draw() {
	v.screen.Clear()
	width, height := v.screen.Size()
	s := v.ctrl.Stats()

	v.writeString(0, 0, v.ctrl.Subject(), styleTitle)

	x := v.writeString(0, 1, "Media "+FormatDecimal2(s.Average), tcell.StyleDefault)
	x = v.writeString(x+2, 1, fmt.Sprintf("Suspensos (< %s): %d", FormatNumber(s.PassThreshold), s.UnderPass), bucketStyle["suspenso"])
	x = v.writeString(x+2, 1, fmt.Sprintf("Aprobados (%s - %s): %d", FormatNumber(s.PassThreshold), FormatNumber(s.SobresalienteThreshold), s.Mid), bucketStyle["aprobado"])
	v.writeString(x+2, 1, fmt.Sprintf("Sobresalientes (≥ %s): %d", FormatNumber(s.SobresalienteThreshold), s.OverSob), bucketStyle["sobresaliente"])

	if u := s.User; u != nil {
		line := fmt.Sprintf("Tu nota: %s  posición %d de %d (top %d%%)", formatShortest(u.Grade), u.Position, s.Total, 100-u.Percentile)
		v.writeString(0, 2, line, bucketStyle[s.Bucket(u.Grade)].Bold(true))
	}

	curveWidth := width
	if curveWidth > 60 {
		curveWidth = 60
	}
	v.writeString(0, 3, sparkline(s, curveWidth), styleDim)
	v.writeString(0, 4, "0", styleDim)
	maxLabel := FormatNumber(s.HighestPossible)
	if curveWidth > len(maxLabel) {
		v.writeString(curveWidth-len(maxLabel), 4, maxLabel, styleDim)
	}

	check := "[ ]"
	if v.ctrl.IsSorted() {
		check = "[x]"
	}
	v.writeString(0, 5, check+" Ordenar por nota (s)   Descargar JSON (e)   Salir (q)", tcell.StyleDefault)

	userName := ""
	if s.User != nil {
		userName = s.User.Name
	}
	visible := height - tableTop - 1
	for i := 0; i < visible && v.offset+i < len(v.rows); i++ {
		row := v.rows[v.offset+i]
		style := tcell.StyleDefault
		if userName != "" && strings.TrimSpace(row[0]) == userName {
			style = styleUser
		}
		end := v.writeString(nameColumn, tableTop+i, row[0], style)
		gradeX := width - 8
		if gradeX < end+1 {
			gradeX = end + 1
		}
		v.writeString(gradeX, tableTop+i, row[1], style)
	}

	if v.status != "" {
		v.writeString(0, height-1, v.status, styleStatus)
	}
	v.screen.Show()
}

// HandleKey applies one key press and reports whether the viewer should
// close.
func (v *Viewer) HandleKey(ev *tcell.EventKey) bool {
	page := v.pageSize()
	switch ev.Key() {
	case tcell.KeyCtrlC, tcell.KeyEscape:
		return true
	case tcell.KeyUp:
		v.scroll(-1, page)
	case tcell.KeyDown:
		v.scroll(1, page)
	case tcell.KeyPgUp:
		v.scroll(-page, page)
	case tcell.KeyPgDn:
		v.scroll(page, page)
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return true
		case 's', ' ':
			v.ctrl.Toggle()
		case 'e':
			path, err := v.ctrl.ExportToFile()
			if err != nil {
				v.status = "Error descargando JSON: " + err.Error()
			} else {
				v.status = "JSON guardado en " + path
			}
		}
	}
	return false
}

// pageSize is the number of table rows that fit, never less than one.
func (v *Viewer) pageSize() int {
	_, height := v.screen.Size()
	if page := height - tableTop - 1; page > 0 {
		return page
	}
	return 1
}

func (v *Viewer) scroll(delta, page int) {
	v.offset += delta
	if maxOffset := len(v.rows) - page; v.offset > maxOffset {
		v.offset = maxOffset
	}
	if v.offset < 0 {
		v.offset = 0
	}
}

// Run draws and processes events until the user quits or the process is
// interrupted. The screen is finalized on return.
func (v *Viewer) Run() error {
	if v.ctrl == nil {
		return fmt.Errorf("viewer has no controller")
	}
	if err := v.screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize screen: %w", err)
	}
	defer v.screen.Fini()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer func() {
		signal.Stop(sigChan)
		close(sigChan)
	}()
	go func() {
		if _, ok := <-sigChan; ok {
			v.screen.PostEvent(tcell.NewEventInterrupt(nil))
		}
	}()

	v.Draw()
	for {
		switch ev := v.screen.PollEvent().(type) {
		case nil, *tcell.EventInterrupt:
			return nil
		case *tcell.EventResize:
			v.screen.Sync()
			v.Draw()
		case *tcell.EventKey:
			if v.HandleKey(ev) {
				return nil
			}
			v.Draw()
		}
	}
}
