package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/muesli/termenv"

	"github.com/llehouerou/songvault/internal/id3win"
	"github.com/llehouerou/songvault/internal/library"
)

const (
	// DefaultCellWidth caps table cells so one long value cannot blow up a row.
	DefaultCellWidth = 32
)

// Printer writes styled catalog output to a writer.
type Printer struct {
	w         io.Writer
	r         *lipgloss.Renderer
	theme     Theme
	st        Styles
	cellWidth int
}

// NewPrinter returns a Printer for w. The color profile is detected from w
// unless noColor forces plain output.
func NewPrinter(w io.Writer, noColor bool) *Printer {
	r := lipgloss.NewRenderer(w)
	if noColor {
		r.SetColorProfile(termenv.Ascii)
	}
	theme := DefaultTheme()
	return &Printer{
		w:         w,
		r:         r,
		theme:     theme,
		st:        theme.styles(r),
		cellWidth: DefaultCellWidth,
	}
}

// Writer returns the underlying writer.
func (p *Printer) Writer() io.Writer {
	return p.w
}

// SetCellWidth changes the cell truncation width; <= 0 disables it.
func (p *Printer) SetCellWidth(n int) {
	p.cellWidth = n
}

func (p *Printer) newTable() *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(p.st.Border)
}

// Songs prints one row per song with the given columns after a short id.
func (p *Printer) Songs(songs []library.Song, cols []library.Column) {
	if len(songs) == 0 {
		p.Line(p.st.Muted.Render("no songs"))
		return
	}

	headers := []string{"ID"}
	for _, c := range cols {
		headers = append(headers, c.DisplayName())
	}

	// unknown[i][j] marks cells that fall back to library.Unknown.
	unknown := make([][]bool, len(songs))
	rows := make([][]string, len(songs))
	for i := range songs {
		s := &songs[i]
		row := []string{s.ID}
		flags := []bool{false}
		for _, c := range cols {
			row = append(row, Truncate(s.Display(c), p.cellWidth))
			flags = append(flags, s.Value(c) == "")
		}
		rows[i] = row
		unknown[i] = flags
	}

	t := p.newTable().
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return p.st.Header.Padding(0, 1)
			case row >= 0 && row < len(unknown) && unknown[row][col]:
				return p.st.Muted.Padding(0, 1)
			default:
				return p.st.Base.Padding(0, 1)
			}
		})
	p.Line(t.String())
	p.Line(p.st.Muted.Render(countLabel(len(songs), "song")))
}

// Song prints every column of one song under a title banner.
func (p *Printer) Song(s *library.Song) {
	title := s.Title
	if title == "" {
		title = s.FileName
	}
	p.Line(gradient(p.r, Sanitize(title), p.theme.Primary, p.theme.Secondary))

	pairs := [][2]string{{"ID", s.ID}}
	missing := map[int]bool{}
	for _, c := range library.Columns() {
		if s.Value(c) == "" {
			missing[len(pairs)] = true
		}
		pairs = append(pairs, [2]string{c.DisplayName(), s.Display(c)})
	}
	pairs = append(pairs, [2]string{"Path", s.Path})
	if !s.AddedAt.IsZero() {
		pairs = append(pairs, [2]string{"Added", s.AddedAt.Local().Format("2006-01-02 15:04:05")})
	}
	p.details(pairs, missing)
}

// Fields prints the recognized tag window fields in table order.
func (p *Printer) Fields(fields id3win.Fields) {
	pairs := make([][2]string, 0, len(id3win.AllFields()))
	missing := map[int]bool{}
	for _, f := range id3win.AllFields() {
		v, ok := fields[f]
		if !ok {
			missing[len(pairs)] = true
			v = library.Unknown
		}
		pairs = append(pairs, [2]string{string(f), v})
	}
	p.details(pairs, missing)
}

// Frames prints the raw layout of a tag window.
func (p *Printer) Frames(h id3win.Header, frames []id3win.Frame) {
	p.Line(p.st.Key.Render(fmt.Sprintf(
		"ID3 v2.%d.%d flags=%02x declared=%d window=%d",
		h.Version[0], h.Version[1], h.Version[2], h.DeclaredSize, id3win.WindowSize,
	)))
	if len(frames) == 0 {
		p.Line(p.st.Muted.Render("no frames"))
		return
	}

	rows := make([][]string, len(frames))
	for i, f := range frames {
		field := "-"
		if name, ok := id3win.FieldForID(f.ID); ok {
			field = string(name)
		}
		content := "(truncated)"
		if !f.Truncated {
			content = strconv.Quote(string(f.Content))
		}
		rows[i] = []string{
			strconv.Itoa(f.Offset),
			Sanitize(string(f.ID[:])),
			field,
			strconv.FormatUint(uint64(f.Size), 10),
			fmt.Sprintf("%02x%02x", f.Gap[0], f.Gap[1]),
			Truncate(content, p.cellWidth),
		}
	}

	t := p.newTable().
		Headers("Offset", "ID", "Field", "Size", "Gap", "Content").
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return p.st.Header.Padding(0, 1)
			case row >= 0 && row < len(frames) && frames[row].Truncated:
				return p.st.Warning.Padding(0, 1)
			default:
				return p.st.Base.Padding(0, 1)
			}
		})
	p.Line(t.String())
}

func (p *Printer) details(pairs [][2]string, missing map[int]bool) {
	rows := make([][]string, len(pairs))
	for i, kv := range pairs {
		rows[i] = []string{kv[0], Truncate(kv[1], 0)}
	}
	t := p.newTable().
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case col == 0:
				return p.st.Key.Padding(0, 1)
			case missing[row]:
				return p.st.Muted.Padding(0, 1)
			default:
				return p.st.Base.Padding(0, 1)
			}
		})
	p.Line(t.String())
}

// Success prints a confirmation line.
func (p *Printer) Success(format string, args ...any) {
	p.Line(p.st.Success.Render(fmt.Sprintf(format, args...)))
}

// Warning prints a warning line.
func (p *Printer) Warning(format string, args ...any) {
	p.Line(p.st.Warning.Render(fmt.Sprintf(format, args...)))
}

// Error prints an error line.
func (p *Printer) Error(msg string) {
	p.Line(p.st.Error.Render(msg))
}

// Line writes s followed by a newline.
func (p *Printer) Line(s string) {
	_, _ = io.WriteString(p.w, s)
	if !strings.HasSuffix(s, "\n") {
		_, _ = io.WriteString(p.w, "\n")
	}
}

func countLabel(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return strconv.Itoa(n) + " " + noun + "s"
}
