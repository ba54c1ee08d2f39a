// internal/tui/app.go
//
// This is the terminal UI for the idol MBTI picker.
// It uses bubbletea, which follows The Elm Architecture:
//
// 1. Model: the App, wrapping an immutable picker.State snapshot
// 2. Update: key presses become picker messages, the reducer returns the next State
// 3. View: renders the current State to a string
//
// The flow is: Key -> picker.Msg -> Reducer.Apply -> new State -> View -> Screen

package tui

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/kingrea/idolmbti/internal/catalog"
	"github.com/kingrea/idolmbti/internal/config"
	"github.com/kingrea/idolmbti/internal/consensus"
	"github.com/kingrea/idolmbti/internal/logbook"
	"github.com/kingrea/idolmbti/internal/picker"
	"github.com/kingrea/idolmbti/internal/selection"
)

// focusArea is which panel receives navigation keys
type focusArea int

const (
	focusSearch    focusArea = iota // search box + match list
	focusSelection                  // selected idols panel
)

const (
	logTailLines  = 5
	defaultWidth  = 100
	defaultHeight = 30
)

// AppOption customizes App construction for tests and alternate runtimes.
type AppOption func(*App)

// WithCatalog skips catalog loading and uses cat instead.
func WithCatalog(cat *catalog.Catalog) AppOption {
	return func(a *App) {
		if cat != nil {
			a.catalog = cat
		}
	}
}

// WithEngine overrides the consensus engine (tests pass a seeded one).
func WithEngine(engine *consensus.Engine) AppOption {
	return func(a *App) {
		if engine != nil {
			a.engine = engine
		}
	}
}

// WithLogbook overrides the session logbook.
func WithLogbook(lb *logbook.Logbook) AppOption {
	return func(a *App) {
		a.logbook = lb
	}
}

// App is the main application model. In bubbletea, this holds ALL your state.
type App struct {
	config  *config.Config
	catalog *catalog.Catalog
	engine  *consensus.Engine
	reducer *picker.Reducer
	logbook *logbook.Logbook

	// state is replaced wholesale on every picker event
	state picker.State

	// UI components
	search    textinput.Model
	matches   list.Model
	focus     focusArea
	selCursor int
	statusMsg string

	// Window size (we get this from bubbletea)
	width  int
	height int
}

// idolItem implements list.Item for catalog records
type idolItem struct {
	idol     *catalog.IdolRecord
	selected bool
}

func (i idolItem) Title() string {
	if i.selected {
		return "✓ " + i.idol.NameGroup
	}
	return i.idol.NameGroup
}

func (i idolItem) Description() string {
	if i.idol.Valid() {
		return i.idol.Personality
	}
	return "type unknown"
}

func (i idolItem) FilterValue() string { return i.idol.NameGroup }

// NewApp creates a new App. Without options it loads the catalog named by
// cfg (or the bundled one), seeds the engine from cfg and opens the logbook.
func NewApp(cfg *config.Config, opts ...AppOption) (*App, error) {
	app := &App{config: cfg, focus: focusSearch}
	for _, opt := range opts {
		if opt != nil {
			opt(app)
		}
	}
	if app.catalog == nil {
		cat, err := loadCatalog(cfg)
		if err != nil {
			return nil, err
		}
		app.catalog = cat
	}
	if app.engine == nil {
		var seed int64
		if cfg != nil {
			seed = cfg.Seed()
		}
		app.engine = consensus.NewSeededEngine(seed)
	}
	app.reducer = picker.NewReducer(app.catalog, app.engine)

	search := textinput.New()
	search.Placeholder = "Search idols or group"
	search.Prompt = "🔍 "
	search.CharLimit = 64
	search.Focus()
	app.search = search

	matches := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	matches.Title = "Matches"
	matches.SetShowStatusBar(false)
	matches.SetFilteringEnabled(false)
	matches.SetShowHelp(false)
	app.matches = matches
	app.resize(defaultWidth, defaultHeight)
	app.refreshMatches(true)

	app.logInfo("Session opened · catalog %s (%d idols)", app.catalog.Source(), app.catalog.Len())
	return app, nil
}

func loadCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	if cfg == nil || cfg.CatalogPath() == "" {
		return catalog.Default()
	}
	return catalog.Load(cfg.CatalogPath())
}

// State returns the current picker snapshot.
func (a *App) State() picker.State {
	return a.state
}

func (a *App) logInfo(format string, args ...any) {
	if a.logbook == nil {
		return
	}
	a.logbook.Info(format, args...)
}

func (a *App) logWarn(format string, args ...any) {
	if a.logbook == nil {
		return
	}
	a.logbook.Warn(format, args...)
}

// Init is called once when the program starts.
func (a *App) Init() tea.Cmd {
	return textinput.Blink
}

// Update is called when a message is received.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.resize(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			a.logInfo("Session closed")
			return a, tea.Quit
		case "esc":
			if a.search.Value() != "" {
				a.search.SetValue("")
				a.dispatch(picker.SearchMsg{Query: ""})
				return a, nil
			}
			a.logInfo("Session closed")
			return a, tea.Quit
		case "tab", "shift+tab":
			a.toggleFocus()
			return a, nil
		case "ctrl+r":
			a.computeConsensus()
			return a, nil
		case "ctrl+x":
			a.dispatch(picker.ResetMsg{})
			a.search.SetValue("")
			a.selCursor = 0
			a.statusMsg = "Selection cleared"
			return a, nil
		case "up":
			a.moveCursor(-1)
			return a, nil
		case "down":
			a.moveCursor(1)
			return a, nil
		case "enter":
			if a.focus == focusSelection {
				a.removeAtCursor()
			} else {
				a.addHighlighted()
			}
			return a, nil
		case "x", "delete", "backspace":
			if a.focus == focusSelection {
				a.removeAtCursor()
				return a, nil
			}
		}

		if a.focus == focusSearch {
			return a, a.updateSearch(msg)
		}
		return a, nil
	}

	if a.focus == focusSearch {
		var cmd tea.Cmd
		a.search, cmd = a.search.Update(msg)
		return a, cmd
	}
	return a, nil
}

// dispatch runs one picker event through the reducer and syncs the widgets.
func (a *App) dispatch(msg picker.Msg) {
	prevQuery := a.state.Query
	a.state = a.reducer.Apply(a.state, msg)
	if a.state.Warning != "" {
		a.statusMsg = a.state.Warning
		a.logWarn("%s", a.state.Warning)
	}
	if a.search.Value() != a.state.Query {
		a.search.SetValue(a.state.Query)
	}
	if n := a.state.Selection.Len(); a.selCursor >= n {
		a.selCursor = max(0, n-1)
	}
	a.refreshMatches(prevQuery != a.state.Query)
}

func (a *App) updateSearch(msg tea.KeyMsg) tea.Cmd {
	before := a.search.Value()
	var cmd tea.Cmd
	a.search, cmd = a.search.Update(msg)
	if after := a.search.Value(); after != before {
		a.dispatch(picker.SearchMsg{Query: after})
	}
	return cmd
}

func (a *App) addHighlighted() {
	item, ok := a.matches.SelectedItem().(idolItem)
	if !ok {
		a.statusMsg = "No matching idol to add"
		return
	}
	name := item.idol.NameGroup
	before := a.state.Selection.Len()
	a.dispatch(picker.AddMsg{NameGroup: name})
	switch {
	case a.state.Selection.Len() > before:
		a.statusMsg = fmt.Sprintf("Added %s (%d/%d)", name, a.state.Selection.Len(), selection.MaxSize)
		a.logInfo("Selection · added %s (%d/%d)", name, a.state.Selection.Len(), selection.MaxSize)
	case a.state.Warning == "":
		a.statusMsg = fmt.Sprintf("%s is already selected", name)
	}
}

func (a *App) removeAtCursor() {
	idol := a.state.Selection.At(a.selCursor)
	if idol == nil {
		a.statusMsg = "Nothing selected to remove"
		return
	}
	a.dispatch(picker.RemoveMsg{NameGroup: idol.NameGroup})
	a.statusMsg = fmt.Sprintf("Removed %s", idol.NameGroup)
	a.logInfo("Selection · removed %s (%d/%d)", idol.NameGroup, a.state.Selection.Len(), selection.MaxSize)
	if a.state.Selection.Empty() {
		a.setFocus(focusSearch)
	}
}

func (a *App) computeConsensus() {
	if !a.state.CanCompute() {
		a.statusMsg = "Select at least one idol first"
		return
	}
	a.dispatch(picker.ComputeMsg{})
	if a.state.Err != nil {
		a.logWarn("Consensus · %v", a.state.Err)
		return
	}
	res := a.state.Result
	a.statusMsg = fmt.Sprintf("Consensus: %s", res.Code)
	a.logInfo("Consensus · %s from %s (%d matches, %d sampled)",
		res.Code, strings.Join(a.state.Selection.Names(), ", "), res.Matches, len(res.Sample))
}

func (a *App) toggleFocus() {
	if a.focus == focusSearch && !a.state.Selection.Empty() {
		a.setFocus(focusSelection)
		return
	}
	a.setFocus(focusSearch)
}

func (a *App) setFocus(f focusArea) {
	a.focus = f
	if f == focusSearch {
		a.search.Focus()
	} else {
		a.search.Blur()
	}
}

func (a *App) moveCursor(delta int) {
	if a.focus == focusSelection {
		n := a.state.Selection.Len()
		if n == 0 {
			return
		}
		a.selCursor = min(max(0, a.selCursor+delta), n-1)
		return
	}
	if delta < 0 {
		a.matches.CursorUp()
	} else {
		a.matches.CursorDown()
	}
}

func (a *App) refreshMatches(resetCursor bool) {
	records := a.reducer.Matches(a.state)
	items := make([]list.Item, len(records))
	for i, rec := range records {
		items[i] = idolItem{idol: rec, selected: a.state.Selection.Contains(rec.NameGroup)}
	}
	idx := a.matches.Index()
	a.matches.SetItems(items)
	if resetCursor || idx >= len(items) {
		a.matches.ResetSelected()
	} else {
		a.matches.Select(idx)
	}
}

func (a *App) resize(width, height int) {
	a.width = width
	a.height = height
	left, _ := a.columnWidths()
	a.search.Width = max(10, left-8)
	a.matches.SetSize(max(20, left-4), max(6, height-16))
}

func (a *App) columnWidths() (int, int) {
	width := a.width
	if width <= 0 {
		width = defaultWidth
	}
	right := max(32, width/2-2)
	left := width - right - 4
	if left < 30 {
		return width - 4, 0
	}
	return left, right
}

// View renders the current state to a string.
func (a *App) View() string {
	leftWidth, rightWidth := a.columnWidths()
	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FF6B6B")).
		Render("⬡ K-POP IDOL MBTI CONSENSUS")
	intro := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888888")).
		MarginBottom(1).
		Render(fmt.Sprintf("Select up to %d idols. Odd numbers work better to break ties.", selection.MaxSize))

	left := lipgloss.JoinVertical(lipgloss.Left, a.search.View(), "", a.matches.View())
	leftBox := a.panel(left, leftWidth, a.focus == focusSearch)
	var body string
	if rightWidth > 0 {
		rightBox := a.panel(a.renderSelectionPanel(rightWidth-4), rightWidth, a.focus == focusSelection)
		body = lipgloss.JoinHorizontal(lipgloss.Top, leftBox, rightBox)
	} else {
		body = lipgloss.JoinVertical(lipgloss.Left, leftBox, a.panel(a.renderSelectionPanel(leftWidth-4), leftWidth, a.focus == focusSelection))
	}

	sections := []string{header, intro, body}
	if a.state.Result != nil {
		sections = append(sections, a.panel(a.renderResult(leftWidth+rightWidth), leftWidth+rightWidth, false))
	}
	if logPanel := a.renderLogPanel(); logPanel != "" {
		sections = append(sections, logPanel)
	}
	footer := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888888")).
		MarginTop(1).
		Render(a.statusMsg)
	sections = append(sections, footer, a.renderHints())
	return strings.Join(sections, "\n")
}

func (a *App) panel(content string, width int, focused bool) string {
	border := lipgloss.Color("#444444")
	if focused {
		border = lipgloss.Color("#5B8DEF")
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1).
		Width(max(20, width)).
		Render(content)
}

func (a *App) renderSelectionPanel(width int) string {
	sel := a.state.Selection
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#5B8DEF")).
		Render(fmt.Sprintf("Selected (%d/%d)", sel.Len(), selection.MaxSize))
	lines := []string{title}
	if a.state.MaxReached {
		lines = append(lines, lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFB347")).
			Render("⚠ "+picker.MaxReachedNotice))
	}
	if sel.Empty() {
		lines = append(lines, lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Render("No idols selected yet. Search and press Enter to add."))
		return lipgloss.NewStyle().Width(max(20, width)).Render(strings.Join(lines, "\n"))
	}
	for i, idol := range sel.Items() {
		row := idol.String()
		style := lipgloss.NewStyle()
		if a.focus == focusSelection && i == a.selCursor {
			row = "› " + row
			style = style.Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
		} else {
			row = "  " + row
		}
		lines = append(lines, style.Render(row))
	}
	return lipgloss.NewStyle().Width(max(20, width)).Render(strings.Join(lines, "\n"))
}

func (a *App) renderResult(width int) string {
	res := a.state.Result
	code := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FF6B6B")).
		Render(fmt.Sprintf("Consensus MBTI: %s", res.Code))
	lines := []string{code, "Winning: " + formatWinning(res), "Others: " + formatOthers(res)}
	if res.Counted < res.Total {
		lines = append(lines, fmt.Sprintf("%d of %d selected idols had a known type", res.Counted, res.Total))
	}
	if len(res.Sample) == 0 {
		lines = append(lines, fmt.Sprintf("No idols in the catalog are %s", res.Code))
	} else {
		names := make([]string, len(res.Sample))
		for i, idol := range res.Sample {
			names[i] = idol.NameGroup
		}
		lines = append(lines,
			fmt.Sprintf("Idols with the same MBTI (%d of %d):", len(res.Sample), res.Matches),
			strings.Join(names, ", "),
		)
	}
	if errors.Is(a.state.Err, consensus.ErrNoKnownTypes) {
		lines = append(lines, "(previous result; the current selection has no known types)")
	}
	return lipgloss.NewStyle().Width(max(20, width-4)).Render(strings.Join(lines, "\n"))
}

// formatWinning lists the winning letters in axis order.
func formatWinning(res *consensus.Result) string {
	parts := make([]string, 0, len(res.Axes))
	for _, axis := range res.Axes {
		parts = append(parts, fmt.Sprintf("%s %s", axis.Winner, consensus.FormatShare(res.WinningShare[axis.Winner])))
	}
	return strings.Join(parts, " · ")
}

// formatOthers lists the non-winning letters in axis order, once each.
func formatOthers(res *consensus.Result) string {
	if len(res.OtherShare) == 0 {
		return "none"
	}
	seen := map[string]bool{}
	var parts []string
	for _, axis := range res.Axes {
		for _, lc := range axis.Counts {
			share, ok := res.OtherShare[lc.Letter]
			if !ok || lc.Letter == axis.Winner || seen[lc.Letter] {
				continue
			}
			seen[lc.Letter] = true
			parts = append(parts, fmt.Sprintf("%s %s", lc.Letter, consensus.FormatShare(share)))
		}
	}
	return strings.Join(parts, " · ")
}

func (a *App) renderLogPanel() string {
	if a.logbook == nil {
		return ""
	}
	lines, _ := a.logbook.Tail(logTailLines)
	if len(lines) == 0 {
		return ""
	}
	fileName := filepath.Base(a.logbook.Path())
	if fileName == "." || fileName == "" {
		fileName = "log"
	}
	head := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#5B8DEF")).
		Render(fmt.Sprintf("LOG · %s", fileName))
	body := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#AAAAAA")).
		Render(strings.Join(lines, "\n"))
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444444")).
		Padding(0, 1).
		Render(fmt.Sprintf("%s\n%s", head, body))
}

func (a *App) renderHints() string {
	compute := "Ctrl+R → compute"
	if !a.state.CanCompute() {
		compute = "Ctrl+R → compute (select an idol first)"
	}
	hints := []string{"Enter → add/remove", "Tab → switch panel", compute, "Ctrl+X → reset", "Esc → quit"}
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("#AAAAAA")).
		Render(strings.Join(hints, "    "))
}
