// Package tui provides the Bubble Tea typing test interface.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/verte-zerg/typecheck/internal/certificate"
	"github.com/verte-zerg/typecheck/internal/clock"
	"github.com/verte-zerg/typecheck/internal/model"
	"github.com/verte-zerg/typecheck/internal/scoring"
	"github.com/verte-zerg/typecheck/internal/session"
)

const persistTimeout = 10 * time.Second

// ResultStore persists finalized scores.
type ResultStore interface {
	SaveResult(ctx context.Context, identityKey string, score model.ScoreResult, meta model.ResultMeta) (model.TestResultRecord, error)
}

// Deps bundles the collaborators of the typing screen.
type Deps struct {
	Session  *session.Session
	Gate     *certificate.Gate
	Results  ResultStore
	Identity session.IdentityProvider
	Logger   *zap.Logger
}

type tickMsg struct {
	generation uint64
}

type saveDoneMsg struct {
	generation uint64
	record     model.TestResultRecord
	err        error
}

type certDoneMsg struct {
	ticket certificate.Ticket
	err    error
}

type saveError struct {
	err error
}

func (e saveError) Error() string       { return "save result: " + e.err.Error() }
func (e saveError) Unwrap() error       { return e.err }
func (e saveError) UserMessage() string { return "Could not save your result. Press s to try again." }

// Model implements the Bubble Tea typing UI.
type Model struct {
	config   model.Config
	session  *session.Session
	gate     *certificate.Gate
	results  ResultStore
	identity session.IdentityProvider
	logger   *zap.Logger

	keys   keyMap
	help   help.Model
	ticker *clock.Ticker

	width  int
	height int

	status string
	saving bool
	saved  bool
	cert   *model.CertificateRecord
}

var (
	correctStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	incorrectStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	pendingStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	currentWordStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	typedStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
	headerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	footerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	statusStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	cardStyle        = lipgloss.NewStyle().
				Padding(1, 3).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	cardValueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
)

// NewModel constructs a typing TUI model.
func NewModel(cfg model.Config, deps Deps) *Model {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	m := &Model{
		config:   cfg,
		session:  deps.Session,
		gate:     deps.Gate,
		results:  deps.Results,
		identity: deps.Identity,
		logger:   deps.Logger,
		keys:     newKeyMap(),
		help:     help.New(),
	}
	m.keys.setPhase(m.session.Phase())
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	defer func() { m.keys.setPhase(m.session.Phase()) }()
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil
	case tickMsg:
		return m, m.handleTick(msg)
	case saveDoneMsg:
		m.handleSaveDone(msg)
		return m, nil
	case certDoneMsg:
		m.handleCertDone(msg)
		return m, nil
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	default:
		return m, nil
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.ForceQuit), key.Matches(msg, m.keys.Quit):
		m.stopTicker()
		return tea.Quit
	case key.Matches(msg, m.keys.Reset):
		m.reset()
		return nil
	case key.Matches(msg, m.keys.End):
		return m.end()
	case key.Matches(msg, m.keys.Erase):
		m.session.Erase()
		return nil
	case key.Matches(msg, m.keys.Save):
		return m.saveResult()
	case key.Matches(msg, m.keys.Certificate):
		return m.issueCertificate()
	}
	switch msg.Type {
	case tea.KeySpace:
		return m.handleRunes([]rune{' '})
	case tea.KeyRunes:
		return m.handleRunes(msg.Runes)
	}
	return nil
}

func (m *Model) handleRunes(runes []rune) tea.Cmd {
	wasIdle := m.session.Phase() == model.PhaseIdle
	for _, r := range runes {
		if !m.session.Type(r) {
			return nil
		}
	}
	if wasIdle && m.session.Phase() == model.PhaseActive {
		m.status = ""
		return m.startTicker()
	}
	return nil
}

func (m *Model) startTicker() tea.Cmd {
	m.stopTicker()
	m.ticker = clock.NewTicker(context.Background(), time.Second)
	return waitForTick(m.ticker, m.session.Generation())
}

func (m *Model) stopTicker() {
	if m.ticker != nil {
		m.ticker.Stop()
		m.ticker = nil
	}
}

func waitForTick(t *clock.Ticker, generation uint64) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-t.C; !ok {
			return nil
		}
		return tickMsg{generation: generation}
	}
}

func (m *Model) handleTick(msg tickMsg) tea.Cmd {
	if msg.generation != m.session.Generation() || m.ticker == nil {
		return nil
	}
	if m.session.Tick() {
		m.stopTicker()
		m.status = ""
		return nil
	}
	return waitForTick(m.ticker, msg.generation)
}

func (m *Model) end() tea.Cmd {
	done, err := m.session.End()
	if err != nil {
		m.status = session.Message(err)
		return nil
	}
	if done {
		m.stopTicker()
		m.status = ""
		return nil
	}
	m.status = "Finishing after the first second..."
	return nil
}

func (m *Model) reset() {
	m.stopTicker()
	m.session.Reset()
	m.status = ""
	m.saving = false
	m.saved = false
	m.cert = nil
}

func (m *Model) currentIdentity() *model.Identity {
	if m.identity == nil {
		return nil
	}
	return m.identity.CurrentIdentity()
}

func (m *Model) saveResult() tea.Cmd {
	if m.saving {
		return nil
	}
	if m.saved {
		m.status = "Result already saved."
		return nil
	}
	res, ok := m.session.Result()
	if !ok || m.results == nil {
		return nil
	}
	identityKey := ""
	if id := m.currentIdentity(); id != nil {
		identityKey = id.Key
	}
	meta := model.ResultMeta{
		Lang:            m.config.Lang,
		ExamName:        m.config.ExamName,
		DurationSeconds: m.session.DurationSeconds(),
		CompletedAt:     time.Now(),
	}
	m.saving = true
	m.status = "Saving result..."
	gen := m.session.Generation()
	store := m.results
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		rec, err := store.SaveResult(ctx, identityKey, res, meta)
		return saveDoneMsg{generation: gen, record: rec, err: err}
	}
}

func (m *Model) handleSaveDone(msg saveDoneMsg) {
	if msg.generation != m.session.Generation() {
		return
	}
	m.saving = false
	if msg.err != nil {
		m.logger.Warn("result save failed", zap.Error(msg.err))
		m.status = session.Message(saveError{err: msg.err})
		return
	}
	m.saved = true
	m.logger.Info("result saved", zap.String("id", msg.record.ID))
	m.status = "Result saved."
}

func (m *Model) issueCertificate() tea.Cmd {
	if m.gate == nil {
		return nil
	}
	ticket, err := m.gate.Prepare(m.session, m.currentIdentity())
	if err != nil {
		m.status = session.Message(err)
		return nil
	}
	m.status = "Issuing certificate..."
	gate := m.gate
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		return certDoneMsg{ticket: ticket, err: gate.Persist(ctx, ticket)}
	}
}

func (m *Model) handleCertDone(msg certDoneMsg) {
	err := m.gate.Settle(m.session, msg.ticket, msg.err)
	if errors.Is(err, certificate.ErrStale) {
		return
	}
	if err != nil && msg.ticket.Generation != m.session.Generation() {
		return
	}
	if err != nil {
		m.status = session.Message(err)
		return
	}
	rec := msg.ticket.Record
	m.cert = &rec
	m.status = fmt.Sprintf("Certificate %s issued. Verify with: typecheck verify %s", rec.Number, rec.Number)
}

// View implements tea.Model.
func (m *Model) View() string {
	var content string
	if m.session.Phase() == model.PhaseCompleted {
		content = m.renderResult()
	} else {
		content = m.renderTyping()
	}
	footer := m.renderFooter()
	if m.width == 0 || m.height == 0 {
		return content + "\n" + footer
	}
	if m.height < 4 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	footerHeight := lipgloss.Height(footer)
	body := lipgloss.Place(m.width, m.height-footerHeight, lipgloss.Center, lipgloss.Center, content)
	return body + "\n" + lipgloss.PlaceHorizontal(m.width, lipgloss.Center, footer)
}

func (m *Model) contentWidth() int {
	if m.width == 0 {
		return 0
	}
	return max(int(float64(m.width)*0.70), 1)
}

func (m *Model) renderHeader() string {
	segments := []string{fmt.Sprintf("%ds", m.session.Remaining())}
	segments = append(segments, fmt.Sprintf("words %d", scoring.WordsTyped(m.session.Typed())))
	if m.config.ExamName != "" {
		segments = append(segments, m.config.ExamName)
	}
	if id := m.currentIdentity(); id != nil {
		segments = append(segments, id.Email)
	} else {
		segments = append(segments, "guest")
	}
	return headerStyle.Render(strings.Join(segments, "  ·  "))
}

func (m *Model) renderTyping() string {
	width := m.contentWidth()
	styled := buildStyledWords(m.session.Passage().Words(), m.session.WordIndex(), m.session.CurrentWordCorrect())
	passage := wrapStyledRunes(styled, width)
	typed := m.session.Typed()
	if width > 0 {
		typed = tailToWidth(typed, width)
	}
	prompt := typedStyle.Render(typed + "▏")
	if m.session.Phase() == model.PhaseIdle {
		prompt = headerStyle.Render("start typing to begin")
	}
	block := lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), "", passage, "", prompt)
	if width > 0 {
		block = lipgloss.NewStyle().Width(width).Render(block)
	}
	return block
}

func (m *Model) renderResult() string {
	res, _ := m.session.Result()
	rows := []string{
		fmt.Sprintf("Speed     %s", cardValueStyle.Render(fmt.Sprintf("%d WPM", res.WPM))),
		fmt.Sprintf("Accuracy  %s", cardValueStyle.Render(fmt.Sprintf("%.1f%%", scoring.FormatAccuracy(res.AccuracyPercent)))),
		fmt.Sprintf("Words     %s", cardValueStyle.Render(fmt.Sprintf("%d", res.WordsTyped))),
		fmt.Sprintf("Time      %s", cardValueStyle.Render(fmt.Sprintf("%ds", res.ElapsedSeconds))),
	}
	if m.cert != nil {
		rows = append(rows, fmt.Sprintf("Cert      %s", cardValueStyle.Render(m.cert.Number)))
	}
	return cardStyle.Render(strings.Join(rows, "\n"))
}

func (m *Model) renderFooter() string {
	lines := []string{}
	if m.status != "" {
		lines = append(lines, statusStyle.Render(m.status))
	}
	lines = append(lines, footerStyle.Render(m.help.View(m.keys)))
	return strings.Join(lines, "\n")
}
