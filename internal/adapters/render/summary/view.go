package summary

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/brdocs/docket/internal/domain"
)

const defaultWidth = 100

type RenderOptions struct {
	Width int
}

func renderView(report domain.BatchReport, opts RenderOptions, s styles) string {
	width := opts.Width
	if width <= 0 {
		width = defaultWidth
	}

	lines := []string{
		s.title.Render("Batch Retrieval Summary"),
		s.header.Render(headerLine(report)),
	}

	if !report.StartedAt.IsZero() {
		lines = append(lines, s.header.Render(timingLine(report)))
	}

	lines = append(lines,
		s.detail.Render(fmt.Sprintf("submitted: %d  (direct %d, deferred %d)", report.Counts.Submitted, report.Counts.Direct, report.Counts.Deferred)),
		outcomeLine(report.Counts, s),
	)

	if report.Destination != "" {
		lines = append(lines, s.detail.Render("artifacts: "+report.Destination))
	}

	if report.AllDownloaded() {
		lines = append(lines, s.section.Render(s.success.Render("Every bundle came home.")))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	if attention := attentionLines(report, width, s); len(attention) > 0 {
		block := append([]string{s.title.Render("Needs attention")}, attention...)
		lines = append(lines, s.section.Render(lipgloss.JoinVertical(lipgloss.Left, block...)))
	}

	if len(report.Results) == 0 {
		lines = append(lines, s.empty.Render("No cases were submitted."))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func headerLine(report domain.BatchReport) string {
	parts := []string{"batch " + report.BatchID}
	if report.Queue != "" {
		parts = append(parts, "queue "+report.Queue)
	}
	if report.Context != "" {
		parts = append(parts, report.Context)
	}

	return strings.Join(parts, "  |  ")
}

func timingLine(report domain.BatchReport) string {
	elapsed := report.FinishedAt.Sub(report.StartedAt).Truncate(time.Second)
	if elapsed < 0 {
		elapsed = 0
	}

	return fmt.Sprintf("started %s, took %s", report.StartedAt.Format("15:04:05"), elapsed)
}

func outcomeLine(counts domain.BatchCounts, s styles) string {
	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.downloaded.Render(fmt.Sprintf("downloaded %d", counts.Downloaded)),
		s.detail.Render("  "),
		s.notFound.Render(fmt.Sprintf("not found %d", counts.NotFound)),
		s.detail.Render("  "),
		s.rejected.Render(fmt.Sprintf("rejected %d", counts.Rejected)),
		s.detail.Render("  "),
		s.failed.Render(fmt.Sprintf("fetch failed %d", counts.FetchFailed)),
	)
}

func attentionLines(report domain.BatchReport, width int, s styles) []string {
	var lines []string
	for _, res := range report.Results {
		if res.State == domain.StateDownloaded {
			continue
		}

		line := lipgloss.JoinHorizontal(
			lipgloss.Top,
			stateStyle(res.State, s).Render(stateLabel(res.State)),
			" ",
			s.caseNumber.Render(res.Case.Number),
		)

		if detail := attentionDetail(res); detail != "" {
			line += " " + s.reason.Render(truncate(detail, width-len(stateLabel(res.State))-len(res.Case.Number)-2))
		}

		lines = append(lines, line)
	}

	return lines
}

func attentionDetail(res domain.CaseResult) string {
	switch {
	case res.Reason != "":
		return res.Reason
	case res.State == domain.StateFetchFailed && res.Attempt > 1:
		return fmt.Sprintf("after %d attempts", res.Attempt)
	default:
		return ""
	}
}

func stateLabel(state domain.OutcomeState) string {
	switch state {
	case domain.StateNotFound:
		return "not found"
	case domain.StateRejected:
		return "rejected"
	case domain.StateFetchFailed:
		return "fetch failed"
	default:
		return strings.ToLower(string(state))
	}
}

func stateStyle(state domain.OutcomeState, s styles) lipgloss.Style {
	switch state {
	case domain.StateDownloaded:
		return s.downloaded
	case domain.StateNotFound:
		return s.notFound
	case domain.StateRejected:
		return s.rejected
	case domain.StateFetchFailed:
		return s.failed
	default:
		return s.detail
	}
}

func truncate(v string, max int) string {
	if max < 8 {
		max = 8
	}
	if len(v) <= max {
		return v
	}

	return v[:max-3] + "..."
}
