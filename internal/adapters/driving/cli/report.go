package cli

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/omarcs/lia-woocommerce/internal/core/domain"
)

// reportStyles are the colours of the terminal report.
type reportStyles struct {
	Title   lipgloss.Style
	Section lipgloss.Style
	Label   lipgloss.Style
	Value   lipgloss.Style
	Good    lipgloss.Style
	Bad     lipgloss.Style
	Box     lipgloss.Style
}

func defaultReportStyles() reportStyles {
	return reportStyles{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED")),
		Section: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#06B6D4")),
		Label:   lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086")).Width(22),
		Value:   lipgloss.NewStyle().Foreground(lipgloss.Color("#CDD6F4")),
		Good:    lipgloss.NewStyle().Foreground(lipgloss.Color("#A6E3A1")),
		Bad:     lipgloss.NewStyle().Foreground(lipgloss.Color("#F38BA8")),
		Box: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#45475A")).
			Padding(0, 1),
	}
}

// reportLine is one labelled value. Tone is +1 good, -1 bad, 0 neutral.
type reportLine struct {
	label string
	value string
	tone  int
}

type reportSection struct {
	title string
	lines []reportLine
}

// renderReport writes the run report, styled on a terminal and as plain
// aligned lines otherwise.
func renderReport(w io.Writer, report *domain.RunReport) {
	sections := reportSections(report)
	if isTerminal(w) {
		fmt.Fprintln(w, renderStyled(sections, defaultReportStyles()))
		return
	}
	fmt.Fprint(w, renderPlain(sections))
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func reportSections(r *domain.RunReport) []reportSection {
	s := r.Stats
	d := r.Detection

	run := reportSection{title: "Sync report", lines: []reportLine{
		{label: "Run", value: r.RunID},
		{label: "Mode", value: string(r.Mode)},
		{label: "Started", value: r.StartedAt.Format(time.RFC3339)},
		{label: "Duration", value: r.Duration.Round(time.Millisecond).String()},
	}}

	detection := reportSection{title: "Detection", lines: []reportLine{
		{label: "Online items", value: fmt.Sprint(len(d.Online))},
		{label: "Local items", value: fmt.Sprint(len(d.Local))},
	}}
	if d.Mode == domain.ModeIncremental {
		detection.lines = append(detection.lines,
			reportLine{label: "New", value: fmt.Sprint(d.New)},
			reportLine{label: "Modified", value: fmt.Sprint(d.Modified)},
			reportLine{label: "Retried", value: fmt.Sprint(d.Retried)},
		)
	}
	if d.NeedsIntervention > 0 {
		detection.lines = append(detection.lines,
			reportLine{label: "Needs intervention", value: fmt.Sprint(d.NeedsIntervention), tone: -1})
	}

	results := reportSection{title: "Results", lines: []reportLine{
		{label: "Processed", value: fmt.Sprint(s.Processed)},
		{label: "Sent", value: fmt.Sprint(s.Valid), tone: 1},
		{label: "Sent online", value: fmt.Sprint(s.Sent[domain.ChannelOnline])},
		{label: "Sent local", value: fmt.Sprint(s.Sent[domain.ChannelLocal])},
		{label: "Invalid", value: fmt.Sprint(s.Invalid), tone: toneOf(s.Invalid)},
		{label: "Errors", value: fmt.Sprint(s.Errors), tone: toneOf(s.Errors)},
		{label: "Deleted", value: fmt.Sprint(s.Deleted)},
	}}

	quality := reportSection{title: "Data quality", lines: []reportLine{
		{label: "Valid price", value: ratio(s.ValidPrice, s.Processed)},
		{label: "Real image", value: ratio(s.RealImage, s.Processed)},
		{label: "In stock", value: ratio(s.InStock, s.Processed)},
	}}
	reasons := make([]string, 0, len(s.Rejected))
	for reason := range s.Rejected {
		reasons = append(reasons, string(reason))
	}
	sort.Strings(reasons)
	for _, reason := range reasons {
		quality.lines = append(quality.lines, reportLine{
			label: "Rejected: " + reason,
			value: fmt.Sprint(s.Rejected[domain.RejectReason(reason)]),
			tone:  -1,
		})
	}

	return []reportSection{run, detection, results, quality}
}

func toneOf(failures int) int {
	if failures > 0 {
		return -1
	}
	return 0
}

func ratio(n, total int) string {
	if total == 0 {
		return fmt.Sprint(n)
	}
	return fmt.Sprintf("%d (%.1f%%)", n, float64(n)*100/float64(total))
}

func renderPlain(sections []reportSection) string {
	var b strings.Builder
	for i, sec := range sections {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(sec.title + "\n")
		for _, l := range sec.lines {
			fmt.Fprintf(&b, "  %-22s %s\n", l.label, l.value)
		}
	}
	return b.String()
}

func renderStyled(sections []reportSection, st reportStyles) string {
	var blocks []string
	for i, sec := range sections {
		rows := make([]string, 0, len(sec.lines)+1)
		if i == 0 {
			rows = append(rows, st.Title.Render(sec.title))
		} else {
			rows = append(rows, st.Section.Render(sec.title))
		}
		for _, l := range sec.lines {
			value := st.Value
			switch l.tone {
			case 1:
				value = st.Good
			case -1:
				value = st.Bad
			}
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, st.Label.Render(l.label), value.Render(l.value)))
		}
		blocks = append(blocks, lipgloss.JoinVertical(lipgloss.Left, rows...))
	}
	return st.Box.Render(strings.Join(blocks, "\n\n"))
}
