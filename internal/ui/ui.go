package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/featguess/internal/models"
	"github.com/desertthunder/featguess/internal/shared"
	"github.com/desertthunder/featguess/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	GuessView ViewState = iota
	ResolvingView
	ResultView
	HistoryView
)

const (
	debounceInterval = 250 * time.Millisecond
	historyLimit     = 100
)

// openURL opens track previews; replaced in tests.
var openURL = shared.OpenBrowser

// Guesser resolves a single guess. Satisfied by [tasks.GuessResolver].
type Guesser interface {
	Resolve(ctx context.Context, req tasks.GuessRequest, progress chan<- tasks.ProgressUpdate) tasks.GuessResult
}

// Suggester returns artist suggestions for partial input. Satisfied by [tasks.AutocompleteResolver].
type Suggester interface {
	Suggest(ctx context.Context, input string) ([]*models.Artist, error)
}

// TrackLister lists previously resolved tracks. Satisfied by [repositories.TrackRepository].
type TrackLister interface {
	List(ctx context.Context, limit int) ([]*models.Track, error)
}

// Options holds the dependencies of [NewModel]. History may be nil, which disables the history view.
type Options struct {
	Guesser   Guesser
	Suggester Suggester
	History   TrackLister
	Logger    *log.Logger
}

// Model represents the TUI application state.
type Model struct {
	ctx       context.Context
	view      ViewState
	guesser   Guesser
	suggester Suggester
	history   TrackLister
	logger    *log.Logger

	width  int
	height int

	input       textinput.Model
	spinner     spinner.Model
	historyList list.Model
	help        help.Model
	keys        keyMap

	seq         int // incremented on every edit of the input
	suggestions []*models.Artist
	cursor      int

	progressChan <-chan tasks.ProgressUpdate
	done         <-chan tasks.GuessResult
	progress     tasks.ProgressUpdate
	result       tasks.GuessResult
	status       string
	err          error
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, opts Options) *Model {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	input := textinput.New()
	input.Placeholder = "kanye west, jay z"
	input.Prompt = "› "
	input.CharLimit = 200
	input.Width = 50
	input.Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.selected

	return &Model{
		ctx:       ctx,
		view:      GuessView,
		guesser:   opts.Guesser,
		suggester: opts.Suggester,
		history:   opts.History,
		logger:    opts.Logger,
		input:     input,
		spinner:   s,
		help:      help.New(),
		keys:      newKeyMap(),
	}
}

// Run starts the TUI and blocks until the user quits or ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	p := tea.NewProgram(NewModel(ctx, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}

// Init starts the cursor blinking in the guess input.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.view == HistoryView {
			m.historyList.SetSize(msg.Width-4, msg.Height-6)
		}
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.quit) {
			return m, tea.Quit
		}
		switch m.view {
		case GuessView:
			return m.handleGuessKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		case HistoryView:
			return m.handleHistoryKeys(msg)
		}
		return m, nil

	case spinner.TickMsg:
		if m.view != ResolvingView {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case Msg:
		return m.handleMsg(msg)
	}

	if m.view == GuessView {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgDebounce:
		if msg.data.(int) != m.seq {
			return m, nil
		}
		segment := currentSegment(m.input.Value())
		if segment == "" || m.suggester == nil {
			m.suggestions = nil
			return m, nil
		}
		return m, m.fetchSuggestions(m.seq, segment)

	case MsgSuggestions:
		data := msg.data.(suggestionsData)
		if data.seq != m.seq {
			return m, nil
		}
		if data.err != nil {
			m.logger.Warn("autocomplete failed", "error", data.err)
		}
		m.suggestions = data.artists
		m.cursor = 0
		return m, nil

	case MsgProgressUpdate:
		m.progress = msg.data.(tasks.ProgressUpdate)
		return m, waitForProgress(m.progressChan, m.done)

	case MsgGuessComplete:
		m.result = msg.data.(tasks.GuessResult)
		m.progressChan, m.done = nil, nil
		m.view = ResultView
		return m, nil

	case MsgHistoryFetched:
		data := msg.data.(historyData)
		if data.err != nil {
			m.err = data.err
			m.view = GuessView
			return m, nil
		}
		items := make([]list.Item, len(data.tracks))
		for i, t := range data.tracks {
			items[i] = trackItem{track: t}
		}
		m.historyList = list.New(items, list.NewDefaultDelegate(), m.width-4, m.height-6)
		m.historyList.Title = "Resolved Tracks"
		m.historyList.DisableQuitKeybindings()
		m.view = HistoryView
		return m, nil
	}
	return m, nil
}

func (m *Model) handleGuessKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.enter):
		value := m.input.Value()
		if _, _, err := tasks.SplitGuess(value); err != nil {
			m.err = err
			return m, nil
		}
		m.err = nil
		m.suggestions = nil
		m.progress = tasks.ProgressUpdate{Message: "Checking cache..."}
		m.view = ResolvingView
		return m, tea.Batch(m.spinner.Tick, m.startGuess(value))

	case key.Matches(msg, m.keys.complete):
		if len(m.suggestions) > 0 {
			m.input.SetValue(completeSegment(m.input.Value(), m.suggestions[m.cursor].Name()))
			m.input.CursorEnd()
			m.suggestions = nil
			m.cursor = 0
			m.seq++
		}
		return m, nil

	case key.Matches(msg, m.keys.up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case key.Matches(msg, m.keys.down):
		if m.cursor < len(m.suggestions)-1 {
			m.cursor++
		}
		return m, nil

	case key.Matches(msg, m.keys.history):
		if m.history == nil {
			return m, nil
		}
		return m, m.fetchHistory()

	case key.Matches(msg, m.keys.back):
		m.input.Reset()
		m.suggestions = nil
		m.err = nil
		m.seq++
		return m, nil
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() == before {
		return m, cmd
	}

	m.seq++
	m.err = nil
	return m, tea.Batch(cmd, debounce(m.seq))
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.open):
		if m.result.Track == nil || m.result.Track.PreviewURL() == "" {
			m.status = "no preview available"
			return m, nil
		}
		if err := openURL(m.result.Track.PreviewURL()); err != nil {
			m.logger.Warn("failed to open preview", "url", m.result.Track.PreviewURL(), "error", err)
			m.status = fmt.Sprintf("could not open browser: %v", err)
			return m, nil
		}
		m.status = "opened preview in browser"
		return m, nil

	case key.Matches(msg, m.keys.restart), key.Matches(msg, m.keys.back):
		m.reset()
		return m, textinput.Blink

	case key.Matches(msg, m.keys.history):
		if m.history == nil {
			return m, nil
		}
		return m, m.fetchHistory()
	}
	return m, nil
}

func (m *Model) handleHistoryKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.back) && m.historyList.FilterState() != list.Filtering {
		m.reset()
		return m, textinput.Blink
	}

	var cmd tea.Cmd
	m.historyList, cmd = m.historyList.Update(msg)
	return m, cmd
}

func (m *Model) reset() {
	m.view = GuessView
	m.input.Reset()
	m.input.Focus()
	m.suggestions = nil
	m.cursor = 0
	m.result = tasks.GuessResult{}
	m.progress = tasks.ProgressUpdate{}
	m.status = ""
	m.err = nil
	m.seq++
}

func debounce(seq int) tea.Cmd {
	return tea.Tick(debounceInterval, func(time.Time) tea.Msg {
		return debounceMsg(seq)
	})
}

func (m *Model) fetchSuggestions(seq int, segment string) tea.Cmd {
	return func() tea.Msg {
		artists, err := m.suggester.Suggest(m.ctx, segment)
		return suggestionsMsg(seq, artists, err)
	}
}

func (m *Model) fetchHistory() tea.Cmd {
	return func() tea.Msg {
		tracks, err := m.history.List(m.ctx, historyLimit)
		return historyFetchedMsg(tracks, err)
	}
}

// startGuess resolves input in the background, relaying progress until the result is ready.
func (m *Model) startGuess(input string) tea.Cmd {
	progress := make(chan tasks.ProgressUpdate, 10)
	done := make(chan tasks.GuessResult, 1)

	go func() {
		done <- m.guesser.Resolve(m.ctx, tasks.GuessRequest{Input: input}, progress)
		close(progress)
	}()

	m.progressChan, m.done = progress, done
	return waitForProgress(progress, done)
}

// waitForProgress delivers the next progress update, or the result once the resolution has finished.
func waitForProgress(progress <-chan tasks.ProgressUpdate, done <-chan tasks.GuessResult) tea.Cmd {
	return func() tea.Msg {
		if update, ok := <-progress; ok {
			return progressUpdateMsg(update)
		}
		return guessCompleteMsg(<-done)
	}
}

// currentSegment returns the name being typed: the trimmed text after the last separator.
func currentSegment(input string) string {
	if i := strings.LastIndex(input, tasks.GuessSeparator); i >= 0 {
		input = input[i+len(tasks.GuessSeparator):]
	}
	return strings.TrimSpace(input)
}

// completeSegment replaces the name being typed with name. Completing the first name appends the separator.
func completeSegment(input, name string) string {
	i := strings.LastIndex(input, tasks.GuessSeparator)
	if i < 0 {
		return name + tasks.GuessSeparator + " "
	}
	return input[:i+len(tasks.GuessSeparator)] + " " + name
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case GuessView:
		return m.renderGuess()
	case ResolvingView:
		return m.renderResolving()
	case ResultView:
		return m.renderResult()
	case HistoryView:
		return m.renderHistory()
	default:
		return ""
	}
}

func (m *Model) renderGuess() string {
	var b strings.Builder

	b.WriteString(styles.title.Render("Name two artists who share a track"))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	for i, a := range m.suggestions {
		if i == m.cursor {
			b.WriteString(styles.selected.Render("▸ " + a.Name()))
		} else {
			b.WriteString("  " + a.Name())
		}
		b.WriteString("\n")
	}

	if m.err != nil {
		b.WriteString("\n" + styles.err.Render(m.err.Error()) + "\n")
	}

	helpKeys := []key.Binding{m.keys.enter, m.keys.complete, m.keys.up, m.keys.down}
	if m.history != nil {
		helpKeys = append(helpKeys, m.keys.history)
	}
	helpKeys = append(helpKeys, m.keys.quit)
	b.WriteString("\n" + m.help.ShortHelpView(helpKeys))

	return b.String()
}

func (m *Model) renderResolving() string {
	title := styles.title.Render("Resolving " + m.input.Value())

	phase := m.progress.Message
	if phase == "" {
		phase = m.progress.Phase.String()
	}

	return fmt.Sprintf("%s\n%s %s\n\n%s", title, m.spinner.View(), phase, m.help.ShortHelpView([]key.Binding{m.keys.quit}))
}

func (m *Model) renderResult() string {
	res := m.result
	helpKeys := []key.Binding{m.keys.restart, m.keys.quit}

	var body string
	switch res.Status {
	case tasks.Found:
		track := res.Track
		artists := track.Artists()

		source := "from catalog"
		if res.Cached {
			source = "from cache"
		}

		lines := []string{
			styles.ok.Render("✓ " + track.Name()),
			fmt.Sprintf("%s & %s", artists[0].Name(), artists[1].Name()),
			fmt.Sprintf("Released %s", track.ReleaseDate()),
			styles.help.Render(source),
		}
		if artists[0].ID() == artists[1].ID() {
			lines[1] = artists[0].Name()
		}
		body = styles.card.Render(strings.Join(lines, "\n"))

		if res.Err != nil {
			body += "\n" + styles.warn.Render(fmt.Sprintf("not saved to cache: %v", res.Err))
		}
		if track.PreviewURL() != "" {
			helpKeys = append([]key.Binding{m.keys.open}, helpKeys...)
		}

	case tasks.NotFound:
		body = styles.warn.Render("No track features both artists. Check the spelling and try again.")

	case tasks.Invalid:
		body = styles.err.Render(fmt.Sprintf("Invalid guess: %v", res.Err))

	default:
		body = styles.err.Render(fmt.Sprintf("Lookup failed: %v", res.Err))
	}

	if m.status != "" {
		body += "\n" + styles.help.Render(m.status)
	}
	if m.history != nil {
		helpKeys = append(helpKeys, m.keys.history)
	}

	return fmt.Sprintf("%s\n\n%s", body, m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderHistory() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.back, m.keys.quit})
	return fmt.Sprintf("%s\n\n%s", m.historyList.View(), helpView)
}
