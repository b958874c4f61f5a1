package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"yt-traffic/internal/domain"
)

const maxTitleRunes = 60

var (
	colorBorder  = lipgloss.Color("240")
	colorHeading = lipgloss.Color("226")
	colorDim     = lipgloss.Color("241")
	colorWarn    = lipgloss.Color("208")
)

var tableHeaders = []string{"Title", "Views", "Avg View Duration", "Impressions", "CTR (%)", "Watch Time (hrs)", "URL"}

// Render writes the summary followed by one table per non-empty bucket.
// Colors are only emitted when w is a terminal.
func Render(w io.Writer, groups []Group, summary Summary) error {
	r := lipgloss.NewRenderer(w)
	heading := r.NewStyle().Bold(true).Foreground(colorHeading)
	dim := r.NewStyle().Foreground(colorDim)
	warn := r.NewStyle().Foreground(colorWarn)

	var b strings.Builder
	b.WriteString(heading.Render("Related video traffic"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%d videos, %s views: %d available, %d unavailable, %d failed\n",
		summary.Videos, FormatNumber(summary.TotalViews), summary.Available, summary.Unavailable, summary.Failed))

	counts := make([]string, 0, len(domain.Buckets))
	for _, bk := range domain.Buckets {
		if bk == domain.BucketUnknown && summary.ByBucket[bk] == 0 {
			continue
		}
		counts = append(counts, fmt.Sprintf("%s: %d", bk.Label(), summary.ByBucket[bk]))
	}
	b.WriteString(dim.Render(strings.Join(counts, " | ")))
	b.WriteString("\n")
	if summary.Failed > 0 {
		b.WriteString(warn.Render(fmt.Sprintf("%d videos could not be fetched; their rows use CSV views only", summary.Failed)))
		b.WriteString("\n")
	}

	for _, g := range groups {
		if len(g.Videos) == 0 {
			continue
		}
		b.WriteString("\n")
		b.WriteString(heading.Render(fmt.Sprintf("%s (%d)", g.Bucket.Label(), len(g.Videos))))
		b.WriteString("\n")
		b.WriteString(renderTable(r, g.Videos))
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func renderTable(r *lipgloss.Renderer, videos []domain.MergedVideo) string {
	header := r.NewStyle().Bold(true).Padding(0, 1)
	cell := r.NewStyle().Padding(0, 1)
	numeric := cell.Align(lipgloss.Right)

	rows := make([][]string, 0, len(videos))
	for _, v := range videos {
		rows = append(rows, []string{
			displayTitle(v),
			FormatNumber(v.DisplayViews()),
			FormatDuration(v.AvgViewDuration),
			FormatNumber(v.Impressions),
			fmt.Sprintf("%.2f", v.CTR),
			fmt.Sprintf("%.1f", v.WatchTimeHours),
			v.URL(),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(r.NewStyle().Foreground(colorBorder)).
		Headers(tableHeaders...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return header
			case col >= 1 && col <= 5:
				return numeric
			}
			return cell
		})
	return t.Render()
}

func displayTitle(v domain.MergedVideo) string {
	switch v.Lookup.Status {
	case domain.StatusUnavailable:
		return "(unavailable)"
	case domain.StatusFailed:
		return "(fetch failed)"
	}
	title := strings.TrimSpace(v.Title())
	if title == "" {
		return "(untitled)"
	}
	if runes := []rune(title); len(runes) > maxTitleRunes {
		return string(runes[:maxTitleRunes-1]) + "…"
	}
	return title
}
