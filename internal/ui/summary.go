// Package ui renders torrent summaries and the hashing progress bar.
package ui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/danferreira/gtmake/internal/config"
	"github.com/danferreira/gtmake/internal/metadata"
	"github.com/dustin/go-humanize"
)

var (
	labelStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")).Width(16)
	hashStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("229"))
	titleStyle = lipgloss.NewStyle().Bold(true).Underline(true).MarginTop(1)
	tableStyle = lipgloss.NewStyle().BorderStyle(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("240"))
)

type SummaryOptions struct {
	// Path is shown as the torrent name; the document name is used when empty.
	Path      string
	ShowFiles bool
	Pick      metadata.Picker
	// Location for the creation date; defaults to time.Local.
	Location *time.Location
}

// Summary describes doc the way the info command prints it.
func Summary(doc *metadata.Document, opts SummaryOptions) (string, error) {
	hash, err := doc.InfoHash()
	if err != nil {
		return "", err
	}
	magnet, err := doc.Magnet(opts.Pick)
	if err != nil {
		return "", err
	}

	name := opts.Path
	if name == "" {
		name = doc.Name()
	}

	private := "No"
	if doc.Private() {
		private = "Yes"
	}

	var created string
	if ts, ok := doc.CreationDate(); ok {
		loc := opts.Location
		if loc == nil {
			loc = time.Local
		}
		created = ts.In(loc).Format("2006-01-02 15:04:05 -07:00")
	}

	var tiers []string
	for _, tier := range doc.Trackers() {
		tiers = append(tiers, strings.Join(tier, "\n"))
	}

	var b strings.Builder
	b.WriteString("\n")
	row(&b, "Info Hash:", hashStyle.Render(hash))
	row(&b, "Torrent Name:", name)
	row(&b, "Data Size:", humanize.IBytes(uint64(doc.TotalLength())))
	row(&b, "Piece Size:", humanize.IBytes(uint64(doc.PieceLength())))
	row(&b, "Piece Count:", fmt.Sprint(doc.PieceCount()))
	row(&b, "Private:", private)
	row(&b, "Creation Date:", created)
	row(&b, "Created By:", doc.CreatedBy())
	row(&b, "Comment:", doc.Comment())
	row(&b, "Source:", doc.Source())
	row(&b, "Trackers:", strings.Join(tiers, "\n\n"))
	b.WriteString("\n")
	row(&b, "Magnet:", magnet)

	if opts.ShowFiles {
		b.WriteString(titleStyle.Render("Files"))
		b.WriteString("\n")
		b.WriteString(filesTable(doc.Files()))
		b.WriteString("\n")
	}

	return b.String(), nil
}

func row(b *strings.Builder, label, value string) {
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(label), value))
	b.WriteString("\n")
}

func filesTable(files []metadata.FileEntry) string {
	sizeWidth, pathWidth := len("Size"), len("Path")
	rows := make([]table.Row, 0, len(files))
	for _, f := range files {
		size := humanize.IBytes(uint64(f.Length))
		path := filepath.Join(f.Path...)
		sizeWidth = max(sizeWidth, lipgloss.Width(size))
		pathWidth = max(pathWidth, lipgloss.Width(path))
		rows = append(rows, table.Row{size, path})
	}

	columns := []table.Column{
		{Title: "Size", Width: sizeWidth},
		{Title: "Path", Width: pathWidth},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(false),
		table.WithWidth(sizeWidth+pathWidth+4),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.Bold(true)
	s.Selected = lipgloss.NewStyle()
	t.SetStyles(s)
	t.SetHeight(len(rows) + 1)

	return tableStyle.Render(t.View())
}

// Abbreviations lists default and user tracker abbreviations.
func Abbreviations(path string, defaults, user []config.Abbreviation) string {
	var b strings.Builder
	row(&b, "Config File:", path)
	b.WriteString("\n")
	row(&b, "Default:", abbrList(defaults))
	b.WriteString("\n")
	row(&b, "User:", abbrList(user))
	return b.String()
}

func abbrList(abbrs []config.Abbreviation) string {
	lines := make([]string, 0, len(abbrs))
	for _, a := range abbrs {
		lines = append(lines, fmt.Sprintf("%s: %s", a.Name, strings.Join(a.URLs, "\n"+strings.Repeat(" ", len(a.Name)+2))))
	}
	return strings.Join(lines, "\n")
}
