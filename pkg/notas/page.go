package notas

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	landingMarker   = "sic_menu.Alumno"
	landingNameSel  = `a[name="panel_155"]`
	subjectSel      = "h1.cabpagina"
	androidMarker   = "Android"
	mobileHeaderSel = "#contenido .cabpagina"
	mobileBodySel   = "#contenido .container"
)

var ErrNoTable = errors.New("page has no results table")

// IsLandingPage reports whether location is the portal menu that shows
// the user's display name.
func IsLandingPage(location string) bool {
	return strings.Contains(location, landingMarker)
}

// Page is a parsed host document. It is both the record source and the
// row sink for the first table on the page.
type Page struct {
	doc    *goquery.Document
	table  *goquery.Selection
	rows   []*goquery.Selection
	logger *slog.Logger
}

func LoadPage(r io.Reader, logger *slog.Logger) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page HTML: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	p := &Page{doc: doc, logger: logger}

	p.table = doc.Find("table").First()
	if p.table.Length() == 0 {
		return p, nil
	}
	p.table.Find("tbody").First().ChildrenFiltered("tr").Each(func(i int, tr *goquery.Selection) {
		if tr.ChildrenFiltered("td").Length() < 2 {
			p.logger.Debug("skipping row without name and grade cells", "row", i)
			return
		}
		p.rows = append(p.rows, tr)
	})
	return p, nil
}

func (p *Page) HasTable() bool {
	return p.table != nil && p.table.Length() > 0
}

func (p *Page) Records() (Records, error) {
	if !p.HasTable() {
		return Records{}, ErrNoTable
	}
	recs := make([]Record, 0, len(p.rows))
	for _, tr := range p.rows {
		cells := tr.ChildrenFiltered("td")
		recs = append(recs, NewRecord(cells.Eq(0).Text(), cells.Eq(1).Text()))
	}
	return NewRecords(recs), nil
}

func (p *Page) Len() int {
	return len(p.rows)
}

// SetRow swaps the text of the two cells of row i. Row and cell elements
// stay in place.
func (p *Page) SetRow(i int, name, grade string) {
	if i < 0 || i >= len(p.rows) {
		return
	}
	cells := p.rows[i].ChildrenFiltered("td")
	cells.Eq(0).SetText(name)
	cells.Eq(1).SetText(grade)
}

// InsertBeforeTable places markup immediately before the results table.
func (p *Page) InsertBeforeTable(markup string) error {
	if !p.HasTable() {
		return ErrNoTable
	}
	p.table.BeforeHtml(markup)
	return nil
}

// Subject is the page heading, then the title, then a default.
func (p *Page) Subject() string {
	if h := strings.TrimSpace(p.doc.Find(subjectSel).First().Text()); h != "" {
		return h
	}
	if t := strings.Join(strings.Fields(p.doc.Find("title").First().Text()), " "); t != "" {
		return t
	}
	return defaultSubject
}

// LandingDisplayName is the user's name as shown on the landing page.
func (p *Page) LandingDisplayName() (string, bool) {
	el := p.doc.Find(landingNameSel).First()
	if el.Length() == 0 {
		return "", false
	}
	return strings.TrimSpace(el.Text()), true
}

// ApplyMobileLayout narrows the page containers on Android user agents.
func (p *Page) ApplyMobileLayout(userAgent string) bool {
	if !strings.Contains(userAgent, androidMarker) {
		return false
	}
	appendStyle(p.doc.Find(mobileHeaderSel).First(), "padding-left: 10px")
	body := p.doc.Find(mobileBodySel).First()
	appendStyle(body, "margin-left: 10px")
	appendStyle(body, "width: 90vw")
	return true
}

func appendStyle(sel *goquery.Selection, decl string) {
	if sel.Length() == 0 {
		return
	}
	style := strings.TrimSpace(sel.AttrOr("style", ""))
	if style != "" && !strings.HasSuffix(style, ";") {
		style += ";"
	}
	if style != "" {
		style += " "
	}
	sel.SetAttr("style", style+decl+";")
}

// Render writes the whole document.
func (p *Page) Render(w io.Writer) error {
	out, err := goquery.OuterHtml(p.doc.Selection)
	if err != nil {
		return fmt.Errorf("failed to render page: %w", err)
	}
	if _, err := io.WriteString(w, out); err != nil {
		return fmt.Errorf("failed to write page: %w", err)
	}
	return nil
}

// RememberDisplayName caches the landing page's display name. Pages
// without the name element are left alone.
func RememberDisplayName(p *Page, store *Store) (string, error) {
	name, ok := p.LandingDisplayName()
	if !ok {
		p.logger.Debug("landing page has no display name element")
		return "", nil
	}
	if err := store.Set(UserNameKey, name); err != nil {
		return "", err
	}
	p.logger.Info("cached display name", "name", name, "store", store.Path())
	return name, nil
}
