package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/lox/maverick/analysis"
	"github.com/lox/maverick/classification"
	"github.com/lox/maverick/decision"
	"github.com/lox/maverick/poker"
)

type styles struct {
	header   lipgloss.Style
	label    lipgloss.Style
	hand     lipgloss.Style
	win      lipgloss.Style
	tie      lipgloss.Style
	loss     lipgloss.Style
	category lipgloss.Style
	action   map[decision.Action]lipgloss.Style

	bar progress.Model
}

func newStyles(noColor bool) styles {
	barOpts := []progress.Option{
		progress.WithWidth(24),
		progress.WithoutPercentage(),
		progress.WithSolidFill("10"),
	}
	if noColor {
		barOpts = append(barOpts, progress.WithColorProfile(termenv.Ascii))
	}

	return styles{
		header: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")),
		label: lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")),
		hand: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("14")),
		win: lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")),
		tie: lipgloss.NewStyle().
			Foreground(lipgloss.Color("11")),
		loss: lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")),
		category: lipgloss.NewStyle().
			Foreground(lipgloss.Color("12")),
		action: map[decision.Action]lipgloss.Style{
			decision.Fold:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
			decision.Check: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11")),
			decision.Call:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11")),
			decision.Raise: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10")),
			decision.AllIn: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13")),
		},
		bar: progress.New(barOpts...),
	}
}

func pct(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}

func (s styles) renderSpot(w io.Writer, hero, board []poker.Card, opponents int) {
	fmt.Fprintf(w, "%s %s\n", s.label.Render("hand "), s.hand.Render(poker.FormatCards(hero)))
	if len(board) > 0 {
		fmt.Fprintf(w, "%s %s\n", s.label.Render("board"), s.hand.Render(poker.FormatCards(board)))
	}
	if opponents > 0 {
		fmt.Fprintf(w, "%s %d opponent(s)\n", s.label.Render("vs   "), opponents)
	}
	fmt.Fprintln(w)
}

func (s styles) renderEquity(w io.Writer, r analysis.Result) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
		s.header.Render("win"),
		s.header.Render("tie"),
		s.header.Render("lose"),
		s.header.Render("equity"))
	fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
		s.win.Render(pct(r.WinRate())),
		s.tie.Render(pct(r.TieRate())),
		s.loss.Render(pct(r.LossRate())),
		s.header.Render(pct(r.Equity())))
	tw.Flush()

	lo, hi := r.ConfidenceInterval()
	fmt.Fprintf(w, "%s %s\n", s.bar.ViewAs(r.Equity()), s.label.Render(fmt.Sprintf("95%% CI %s-%s", pct(lo), pct(hi))))

	footer := fmt.Sprintf("%d trials in %v", r.Trials, r.Elapsed.Round(time.Microsecond))
	if r.Partial {
		footer += " (stopped early)"
	}
	if r.Fallbacks > 0 {
		footer += fmt.Sprintf(", %d range fallbacks", r.Fallbacks)
	}
	fmt.Fprintln(w, s.label.Render(footer))
}

func (s styles) renderOuts(w io.Writer, outs classification.OutsResult) {
	fmt.Fprintf(w, "%s %s, %s board\n",
		s.label.Render("made "), s.category.Render(outs.Current.String()), outs.Texture)

	if outs.Total() == 0 {
		fmt.Fprintln(w, s.label.Render("no outs"))
		return
	}

	byDraw := outs.ByDrawType()
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\t%s\n", s.header.Render("draw"), s.header.Render("outs"), s.header.Render("cards"))
	for _, d := range outs.Draws() {
		cards := byDraw[d]
		fmt.Fprintf(tw, "%s\t%d\t%s\n", s.category.Render(d.String()), len(cards), poker.FormatCards(cards))
	}
	tw.Flush()

	if len(outs.Combos) > 0 {
		tags := make([]string, len(outs.Combos))
		for i, c := range outs.Combos {
			tags[i] = c.String()
		}
		fmt.Fprintf(w, "%s %s\n", s.label.Render("also "), strings.Join(tags, ", "))
	}
	fmt.Fprintf(w, "%d outs, %s to hit with %d card(s) to come\n", outs.Total(), pct(outs.HitProbability()), outs.ToCome)
}

func (s styles) renderDecision(w io.Writer, d decision.Decision) {
	action := s.action[d.Action].Render(d.Action.String())
	if d.Action == decision.Raise || d.Action == decision.AllIn {
		action += fmt.Sprintf(" %.0f", d.Size)
	}
	fmt.Fprintf(w, "%s %s\n", s.label.Render("action"), action)
	fmt.Fprintf(w, "%s %s needed, %s margin at %s\n",
		s.label.Render("odds  "), pct(d.RequiredEquity), pct(d.Margin), d.Position)
	fmt.Fprintf(w, "%s %+.1f\n", s.label.Render("ev    "), d.EV)
	fmt.Fprintln(w, s.label.Render(d.Reasoning))
}
