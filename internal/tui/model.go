// Package tui is a terminal browser over the note catalog: cascading
// folder/subfolder panes, fuzzy search and prev/next navigation.
package tui

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/starford/notedeck/internal/catalog"
	"github.com/starford/notedeck/internal/models"
	"github.com/starford/notedeck/internal/navigation"
	"github.com/starford/notedeck/internal/search"
	"github.com/starford/notedeck/internal/selection"
)

// Source is what the browser reads notes from.
type Source interface {
	Catalog() *catalog.Catalog
	Search(query string) []search.Result
	Nav(path string) catalog.Nav
}

type pane int

const (
	paneFolders pane = iota
	paneSubfolders
	paneNotes
	paneCount
)

// Model is the bubbletea model of the browser.
type Model struct {
	src   Source
	sel   *selection.Manager
	lists *Lists
	nav   *navigation.Controller

	input   textinput.Model
	help    help.Model
	results []search.Result
	result  int

	focus   pane
	cursors [paneCount]int
	folders []string

	open      string
	baseURL   string
	copyText  func(string) error
	status    string
	statusErr bool

	width  int
	height int
}

// Option configures a Model.
type Option func(*Model)

// WithBaseURL sets the server URL copied links are prefixed with.
func WithBaseURL(u string) Option {
	return func(m *Model) { m.baseURL = strings.TrimSuffix(u, "/") }
}

// WithClipboard replaces the system clipboard writer.
func WithClipboard(fn func(string) error) Option {
	return func(m *Model) { m.copyText = fn }
}

// New builds the browser and restores the persisted selection. lists must be
// the renderer sel was created with.
func New(src Source, sel *selection.Manager, lists *Lists, opts ...Option) *Model {
	input := textinput.New()
	input.Placeholder = "Search notes..."
	input.Prompt = "/ "

	m := &Model{
		src:      src,
		sel:      sel,
		lists:    lists,
		input:    input,
		help:     help.New(),
		copyText: clipboard.WriteAll,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.nav = navigation.NewController(m, m.openHref)

	m.folders = src.Catalog().Folders()
	current := sel.LoadPersisted()
	m.cursors[paneFolders] = indexOf(m.folders, current.Folder) + 1
	subfolders, _ := lists.snapshot()
	m.cursors[paneSubfolders] = indexOf(subfolders, current.Subfolder) + 1
	return m
}

// Run starts the program on the terminal.
func Run(m *Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Prev implements navigation.LinkSource for the open note.
func (m *Model) Prev() *models.Link {
	if m.open == "" {
		return nil
	}
	return m.src.Nav(m.open).PrevLink()
}

// Next implements navigation.LinkSource for the open note.
func (m *Model) Next() *models.Link {
	if m.open == "" {
		return nil
	}
	return m.src.Nav(m.open).NextLink()
}

// Open returns the path of the open note.
func (m *Model) Open() string {
	return m.open
}

func (m *Model) openHref(href string) {
	m.open = strings.TrimPrefix(href, models.NotePrefix)
	m.setStatus("opened "+m.open, false)
}

func (m *Model) setStatus(msg string, isErr bool) {
	m.status = msg
	m.statusErr = isErr
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		if m.input.Focused() {
			return m.updateSearch(msg)
		}
		return m.updateBrowse(msg)
	}
	return m, nil
}

func (m *Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Cancel):
		m.input.Blur()
		m.input.SetValue("")
		m.results = nil
		return m, nil
	case msg.Type == tea.KeyUp:
		if m.result > 0 {
			m.result--
		}
		return m, nil
	case msg.Type == tea.KeyDown:
		if m.result < len(m.results)-1 {
			m.result++
		}
		return m, nil
	case key.Matches(msg, keys.Select):
		if m.result < len(m.results) {
			m.openHref(m.results[m.result].Link.Href)
			m.input.Blur()
		}
		return m, nil
	case key.Matches(msg, keys.Prev):
		m.nav.HandleKey(navigation.KeyPrev, navigation.Focus{Editable: true})
	case key.Matches(msg, keys.Next):
		m.nav.HandleKey(navigation.KeyNext, navigation.Focus{Editable: true})
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.results = m.src.Search(m.input.Value())
	if m.result >= len(m.results) {
		m.result = 0
	}
	return m, cmd
}

func (m *Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, keys.Search):
		m.result = 0
		return m, m.input.Focus()
	case key.Matches(msg, keys.NextPane):
		m.focus = (m.focus + 1) % paneCount
	case key.Matches(msg, keys.PrevPane):
		m.focus = (m.focus + paneCount - 1) % paneCount
	case key.Matches(msg, keys.Up):
		if m.cursors[m.focus] > 0 {
			m.cursors[m.focus]--
		}
	case key.Matches(msg, keys.Down):
		if m.cursors[m.focus] < m.paneLen(m.focus)-1 {
			m.cursors[m.focus]++
		}
	case key.Matches(msg, keys.Select):
		m.choose()
	case key.Matches(msg, keys.Prev):
		m.nav.HandleKey(navigation.KeyPrev, navigation.Focus{})
	case key.Matches(msg, keys.Next):
		m.nav.HandleKey(navigation.KeyNext, navigation.Focus{})
	case key.Matches(msg, keys.Copy):
		m.copyLink()
	}
	return m, nil
}

// paneLen counts entries including the leading "all" entry of the two
// filter panes.
func (m *Model) paneLen(p pane) int {
	subfolders, notes := m.lists.snapshot()
	switch p {
	case paneFolders:
		return len(m.folders) + 1
	case paneSubfolders:
		return len(subfolders) + 1
	default:
		return len(notes)
	}
}

func (m *Model) choose() {
	subfolders, notes := m.lists.snapshot()
	switch m.focus {
	case paneFolders:
		folder := ""
		if c := m.cursors[paneFolders]; c > 0 && c <= len(m.folders) {
			folder = m.folders[c-1]
		}
		m.sel.SetFolder(folder)
		m.cursors[paneSubfolders] = 0
		m.cursors[paneNotes] = 0
	case paneSubfolders:
		subfolder := ""
		if c := m.cursors[paneSubfolders]; c > 0 && c <= len(subfolders) {
			subfolder = subfolders[c-1]
		}
		m.sel.SetSubfolder(subfolder)
		m.cursors[paneNotes] = 0
	case paneNotes:
		if c := m.cursors[paneNotes]; c < len(notes) {
			m.openHref(notes[c].Href)
		}
	}
}

func (m *Model) copyLink() {
	href := ""
	if m.open != "" {
		href = models.NotePrefix + m.open
	} else if _, notes := m.lists.snapshot(); m.focus == paneNotes && m.cursors[paneNotes] < len(notes) {
		href = notes[m.cursors[paneNotes]].Href
	}
	if href == "" {
		m.setStatus("nothing to copy", true)
		return
	}
	link := m.baseURL + href
	if err := m.copyText(link); err != nil {
		m.setStatus("copy failed: "+err.Error(), true)
		return
	}
	m.setStatus("copied "+link, false)
}

// View implements tea.Model.
func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("notedeck"))
	b.WriteString("\n\n")

	if m.input.Focused() {
		b.WriteString(inputFocusedStyle.Render(m.input.View()))
	} else {
		b.WriteString(inputStyle.Render(m.input.View()))
	}
	b.WriteString("\n")

	if m.input.Focused() {
		b.WriteString(m.renderResults())
	} else {
		b.WriteString(m.renderPanes())
	}
	b.WriteString("\n")
	b.WriteString(m.renderOpen())

	if m.status != "" {
		b.WriteString("\n")
		if m.statusErr {
			b.WriteString(errorStyle.Render(m.status))
		} else {
			b.WriteString(statusStyle.Render(m.status))
		}
	}
	b.WriteString("\n")
	b.WriteString(m.help.ShortHelpView(keys.help()))
	return appStyle.Render(b.String())
}

func (m *Model) renderPanes() string {
	current := m.sel.Current()
	subfolders, notes := m.lists.snapshot()

	folders := m.renderPane(paneFolders, "Folders", append([]string{"All folders"}, m.folders...), current.Folder, "All folders")
	subs := m.renderPane(paneSubfolders, "Subfolders", append([]string{"All subfolders"}, subfolders...), current.Subfolder, "All subfolders")
	labels := make([]string, len(notes))
	for i, n := range notes {
		labels[i] = n.Label
	}
	openLabel := ""
	if rec, ok := m.src.Catalog().Get(m.open); ok {
		openLabel = rec.DisplayTitle()
	}
	noteCol := m.renderPane(paneNotes, fmt.Sprintf("Notes (%d)", len(notes)), labels, openLabel, "")
	return lipgloss.JoinHorizontal(lipgloss.Top, folders, subs, noteCol)
}

func (m *Model) renderPane(p pane, title string, items []string, checked, allLabel string) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(title))
	b.WriteString("\n")
	if len(items) == 0 {
		b.WriteString(mutedStyle.Render("-- nothing here --"))
	}
	for i, item := range items {
		line := item
		switch {
		case i == m.cursors[p] && m.focus == p:
			line = cursorStyle.Render(item)
		case item == checked || (checked == "" && allLabel != "" && item == allLabel):
			line = checkedStyle.Render(item)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	style := paneStyle
	if m.focus == p {
		style = paneActiveStyle
	}
	return style.Render(strings.TrimSuffix(b.String(), "\n"))
}

func (m *Model) renderResults() string {
	if strings.TrimSpace(m.input.Value()) == "" {
		return mutedStyle.Render("Type to search titles and paths")
	}
	if len(m.results) == 0 {
		return mutedStyle.Render("No results found")
	}
	var b strings.Builder
	for i, r := range m.results {
		label := highlight(r.Link.Label, r.Highlights)
		if i == m.result {
			b.WriteString(cursorStyle.Render("> "))
		} else {
			b.WriteString("  ")
		}
		b.WriteString(label)
		b.WriteString(mutedStyle.Render("  " + r.Record.Path))
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Model) renderOpen() string {
	if m.open == "" {
		return mutedStyle.Render("No note open")
	}
	rec, _ := m.src.Catalog().Get(m.open)
	parts := []string{titleStyle.Render(rec.DisplayTitle())}
	if prev := m.Prev(); prev != nil {
		parts = append([]string{mutedStyle.Render("← " + prev.Label)}, parts...)
	}
	if next := m.Next(); next != nil {
		parts = append(parts, mutedStyle.Render(next.Label+" →"))
	}
	return strings.Join(parts, "  ")
}

// highlight emphasises the bytes of label at the given offsets.
func highlight(label string, offsets []int) string {
	if len(offsets) == 0 {
		return label
	}
	marked := make(map[int]bool, len(offsets))
	for _, o := range offsets {
		marked[o] = true
	}
	var b strings.Builder
	for i, r := range label {
		if marked[i] {
			b.WriteString(matchStyle.Render(string(r)))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func indexOf(values []string, v string) int {
	if v == "" {
		return -1
	}
	for i, s := range values {
		if s == v {
			return i
		}
	}
	return -1
}
