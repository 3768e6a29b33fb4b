package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/programme-lv/contest-portal/admin"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#3498db"))
	liveStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#2ecc71"))
	idleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#95a5a6"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#e74c3c"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#f39c12"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#7f8c8d"))
	selectStyle  = lipgloss.NewStyle().Background(lipgloss.Color("#34495e"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
	statBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 2)
	modalStyle   = lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).Padding(0, 1)
	confirmStyle = lipgloss.NewStyle().Border(lipgloss.ThickBorder()).BorderForeground(lipgloss.Color("#f39c12")).Padding(0, 1)
)

func (m model) View() string {
	switch m.state {
	case stateLogin:
		return m.loginView()
	case stateModal:
		return m.modalView()
	}
	s := m.dashboardView()
	if m.state == stateConfirm && m.pending != nil {
		s += "\n" + confirmStyle.Render(m.pending.prompt+"  [y/n]") + "\n"
	}
	return s
}

func (m model) loginView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Mission Control") + "\n\n")
	b.WriteString("Password: " + m.password.View() + "\n\n")
	switch {
	case m.login.Busy:
		b.WriteString(m.spinner.View() + " Logging in...\n")
	case m.login.Error != "":
		b.WriteString(errorStyle.Render(m.login.Error) + "\n")
	}
	b.WriteString(mutedStyle.Render("enter: log in • esc: quit") + "\n")
	return b.String()
}

func (m model) dashboardView() string {
	var b strings.Builder
	sc := m.screen

	status := idleStyle.Render("● " + sc.Status.Text)
	if sc.Status.Live {
		status = liveStyle.Render("● " + sc.Status.Text)
	}
	if !m.loaded {
		status = m.spinner.View() + " Loading..."
	}
	b.WriteString(titleStyle.Render("Mission Control") + "  " + status)
	if sc.Status.Started != "" {
		b.WriteString(mutedStyle.Render("  started " + sc.Status.Started))
	}
	if m.busy {
		b.WriteString("  " + m.spinner.View())
	}
	b.WriteString("\n\n")

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		statBox("Participants", fmt.Sprint(sc.Stats.Total)),
		statBox("Submitted", fmt.Sprint(sc.Stats.Submitted)),
		statBox("Active", fmt.Sprint(sc.Stats.Active)),
		statBox("Avg solved", sc.Stats.AvgSolved),
	) + "\n\n")

	b.WriteString(headerStyle.Render("Participants") + "\n")
	b.WriteString(participantsTable(sc, m.selected))
	b.WriteString("\n" + headerStyle.Render("Leaderboard") + "\n")
	b.WriteString(leaderboardTable(sc))

	if m.alert != "" {
		b.WriteString("\n" + warnStyle.Render(m.alert) + "\n")
	}
	b.WriteString("\n" + mutedStyle.Render("↑/↓ select • v view code • e end test • s start • x stop • r refresh • q quit") + "\n")
	return b.String()
}

func statBox(label, value string) string {
	return statBoxStyle.Render(lipgloss.NewStyle().Bold(true).Render(value) + "\n" + mutedStyle.Render(label))
}

func participantsTable(sc admin.Screen, selected int) string {
	if sc.ParticipantsEmpty != "" {
		return mutedStyle.Render(sc.ParticipantsEmpty) + "\n"
	}
	var b strings.Builder
	b.WriteString(mutedStyle.Render(fmt.Sprintf("%-4s %-22s %-18s %-10s %-14s %-6s %s", "#", "Name", "College", "System", "Phone", "Solved", "State")) + "\n")
	for i, row := range sc.Participants {
		state := liveStyle.Render("Active")
		if row.Submitted {
			state = warnStyle.Render("Submitted")
		}
		line := fmt.Sprintf("%-4d %-22s %-18s %-10s %-14s %-6s ", row.Number, clip(row.Name, 22), clip(row.College, 18), clip(row.SystemNumber, 10), clip(row.Phone, 14), row.Solved)
		if i == selected {
			line = selectStyle.Render(line)
		}
		b.WriteString(line + state + "\n")
	}
	return b.String()
}

func leaderboardTable(sc admin.Screen) string {
	if sc.LeaderboardEmpty != "" {
		return mutedStyle.Render(sc.LeaderboardEmpty) + "\n"
	}
	var b strings.Builder
	b.WriteString(mutedStyle.Render(fmt.Sprintf("%-5s %-22s %-18s %-6s %-10s %s", "Rank", "Name", "College", "Solved", "Time", "Wrong")) + "\n")
	for _, row := range sc.Leaderboard {
		wrong := row.Wrong
		if row.HasWrong {
			wrong = warnStyle.Render(wrong)
		}
		b.WriteString(fmt.Sprintf("%-5s %-22s %-18s %-6s %-10s %s\n", row.Symbol, clip(row.Name, 22), clip(row.College, 18), row.Solved, row.Time, wrong))
	}
	return b.String()
}

func (m model) modalView() string {
	md := m.screen.Modal
	var b strings.Builder
	b.WriteString(titleStyle.Render(md.Title) + "\n\n")
	if md.Loading {
		b.WriteString(m.spinner.View() + " ")
	}
	if md.Message != "" {
		b.WriteString(md.Message + "\n")
	}
	for _, c := range md.Cards {
		solved := errorStyle.Render(c.SolvedText)
		if c.Solved {
			solved = liveStyle.Render(c.SolvedText)
		}
		head := fmt.Sprintf("%s  [%s]  %s", lipgloss.NewStyle().Bold(true).Render(c.ProblemName), c.Language, solved)
		stats := mutedStyle.Render(fmt.Sprintf("time %s • wrong %d • attempts %d • saved %s", c.TimeTaken, c.WrongAttempts, c.TotalAttempts, c.LastSaved))
		b.WriteString(modalStyle.Render(head+"\n"+stats+"\n\n"+c.Code) + "\n")
	}
	b.WriteString("\n" + mutedStyle.Render("esc: close") + "\n")
	return b.String()
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
