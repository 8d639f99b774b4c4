package main

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Zachkp/portfolio/internal/carousel"
	"github.com/Zachkp/portfolio/internal/content"
)

// snapshotMsg carries a controller snapshot into the program. Timer
// driven transitions arrive this way.
type snapshotMsg carousel.Snapshot

type model struct {
	site    *content.Site
	ctrl    *carousel.Controller
	project int
	snap    carousel.Snapshot
	styles  styles
	width   int
}

func newModel(site *content.Site) *model {
	return &model{site: site, styles: newStyles()}
}

// attach binds the controller once the program exists to receive its
// snapshots.
func (m *model) attach(ctrl *carousel.Controller) {
	m.ctrl = ctrl
	m.snap = ctrl.Snapshot()
}

func (m *model) Init() tea.Cmd { return nil }

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case snapshotMsg:
		// Listener sends race each other; keep the newest.
		if msg.Version > m.snap.Version {
			m.snap = carousel.Snapshot(msg)
		}
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}
	return m, nil
}

func (m *model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if m.ctrl == nil {
		return nil
	}
	key := msg.String()
	switch key {
	case "q", "ctrl+c", "esc":
		m.ctrl.Close()
		return tea.Quit
	case "left", "h":
		m.ctrl.Previous()
	case "right":
		m.ctrl.Next()
	case "f":
		m.ctrl.ToggleFullscreen()
	case "a":
		m.ctrl.ToggleAutoAdvance()
	case "tab":
		m.project = (m.project + 1) % len(m.site.Projects)
		m.ctrl.SelectProject(&m.site.Projects[m.project])
	case "shift+tab":
		m.project = (m.project - 1 + len(m.site.Projects)) % len(m.site.Projects)
		m.ctrl.SelectProject(&m.site.Projects[m.project])
	case "x":
		m.ctrl.ReportLoadError(m.snap.Index)
	case "l":
		m.ctrl.ReportLoadSuccess()
	default:
		if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
			m.ctrl.JumpTo(int(key[0] - '1'))
		}
	}
	m.refresh()
	return nil
}

func (m *model) refresh() {
	if s := m.ctrl.Snapshot(); s.Version >= m.snap.Version {
		m.snap = s
	}
}

func (m *model) View() string {
	if m.ctrl == nil || m.snap.Project == nil {
		return "loading…\n"
	}
	s := m.styles
	snap := m.snap

	var b strings.Builder
	b.WriteString(m.tabs())
	b.WriteString("\n")
	b.WriteString(s.title.Render(snap.ProjectTitle))
	b.WriteString("\n")
	if !snap.Fullscreen {
		b.WriteString(s.description.Render(snap.Project.Description))
		b.WriteString("\n\n")
	}

	frame := s.frame
	if snap.Fullscreen {
		frame = s.frameFullscreen
	}
	b.WriteString(frame.Render(m.item()))
	b.WriteString("\n")
	b.WriteString(m.indicators())
	b.WriteString("\n")
	b.WriteString(m.status())
	b.WriteString("\n")
	b.WriteString(s.help.Render("←/→ navigate · 1-9 jump · tab project · f fullscreen · a slideshow · l loaded · x fail · q quit"))
	b.WriteString("\n")
	return s.app.Render(b.String())
}

func (m *model) tabs() string {
	parts := make([]string, len(m.site.Projects))
	for i, p := range m.site.Projects {
		style := m.styles.tabInactive
		if p.ID == m.snap.ProjectID {
			style = m.styles.tabActive
		}
		parts[i] = style.Render(p.Title)
	}
	return m.styles.tabsRow.Render(lipgloss.JoinHorizontal(lipgloss.Top, parts...))
}

func (m *model) item() string {
	s := m.styles
	it := m.snap.Item
	kind := "image"
	if it.IsVideo() {
		kind = "video"
	}
	lines := []string{
		s.caption.Render(it.Caption),
		s.source.Render(fmt.Sprintf("%s · %s", kind, it.SourceRef)),
	}
	if url := it.EmbedURL(); url != "" {
		lines = append(lines, s.source.Render(url))
	}
	switch m.snap.Phase {
	case carousel.PhaseLoading:
		lines = append(lines, s.source.Render("loading…"))
	case carousel.PhaseError:
		lines = append(lines, s.errorText.Render("failed to load, showing placeholder"))
	}
	return strings.Join(lines, "\n")
}

func (m *model) indicators() string {
	s := m.styles
	dots := make([]string, len(m.snap.Indicators))
	for i, ind := range m.snap.Indicators {
		switch {
		case ind.Failed && ind.Active:
			dots[i] = s.dotFailed.Render("◉")
		case ind.Failed:
			dots[i] = s.dotFailed.Render("✗")
		case ind.Active:
			dots[i] = s.dotActive.Render("●")
		default:
			dots[i] = s.dotIdle.Render("○")
		}
	}
	return strings.Join(dots, " ") + "  " + m.snap.Position
}

func (m *model) status() string {
	flag := func(label string, on bool) string {
		if on {
			return m.styles.statusOn.Render(label)
		}
		return m.styles.statusOff.Render(label)
	}
	return m.styles.statusBar.Render(lipgloss.JoinHorizontal(lipgloss.Top,
		flag("slideshow", m.snap.AutoAdvance),
		flag("fullscreen", m.snap.Fullscreen),
		flag("settling", m.snap.Transitioning),
		m.styles.statusOff.Render(m.snap.Phase.String()),
	))
}
