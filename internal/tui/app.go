package tui

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/user/bookmarks/internal/db"
	"github.com/user/bookmarks/internal/manager"
)

type viewMode int

const (
	viewTree viewMode = iota
	viewFavorites
	viewSearch
)

type model struct {
	ctx         context.Context
	mgr         *manager.Manager
	searchInput textinput.Model
	list        list.Model
	path        []db.Folder // Open folders, root first
	mode        viewMode
	width       int
	height      int
	searching   bool
	status      string
	err         error
}

type nodeItem struct {
	node db.Node
}

func (n nodeItem) Title() string {
	switch node := n.node.(type) {
	case db.Folder:
		return "[+] " + node.Title
	case db.Bookmark:
		if node.IsFavorite {
			return "[*] " + node.Title
		}
		return "    " + node.Title
	}
	return ""
}

func (n nodeItem) Description() string {
	switch node := n.node.(type) {
	case db.Folder:
		return fmt.Sprintf("    %d items", len(node.Children))
	case db.Bookmark:
		return "    " + node.URL
	}
	return ""
}

func (n nodeItem) FilterValue() string {
	if b, ok := n.node.(db.Bookmark); ok {
		return b.Title + " " + b.URL
	}
	return n.node.NodeTitle()
}

func initialModel(ctx context.Context, mgr *manager.Manager) model {
	ti := textinput.New()
	ti.Placeholder = "Search bookmarks..."
	ti.CharLimit = 256
	ti.Width = 50

	delegate := list.NewDefaultDelegate()
	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = "Bookmarks"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)

	return model{
		ctx:         ctx,
		mgr:         mgr,
		searchInput: ti,
		list:        l,
	}
}

// loadedMsg reports that the manager list was refreshed.
type loadedMsg struct {
	err error
}

// changedMsg reports a finished mutation. status is shown in the footer.
type changedMsg struct {
	status string
	err    error
}

type searchMsg struct {
	bookmarks []db.Bookmark
	err       error
}

func (m model) Init() tea.Cmd {
	return m.load
}

func (m model) load() tea.Msg {
	return loadedMsg{err: m.mgr.LoadBookmarks(m.ctx)}
}

func (m model) doSearch(query string) tea.Cmd {
	return func() tea.Msg {
		bookmarks, err := m.mgr.Search(m.ctx, query, 50)
		return searchMsg{bookmarks: bookmarks, err: err}
	}
}

func (m model) change(status string, fn func() error) tea.Cmd {
	return func() tea.Msg {
		return changedMsg{status: status, err: fn()}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.searching {
			switch msg.String() {
			case "esc":
				m.searching = false
				m.searchInput.Blur()
				return m, nil
			case "enter":
				m.searching = false
				m.searchInput.Blur()
				m.mode = viewSearch
				return m, m.doSearch(m.searchInput.Value())
			}
			break
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "/":
			m.searching = true
			m.searchInput.Focus()
			return m, textinput.Blink
		case "esc":
			if m.mode != viewTree {
				m.mode = viewTree
				m.searchInput.SetValue("")
				m.refresh()
			}
			return m, nil
		case "tab":
			if m.mode == viewFavorites {
				m.mode = viewTree
			} else {
				m.mode = viewFavorites
			}
			m.refresh()
			return m, nil
		case "enter":
			cmd := m.open()
			return m, cmd
		case "backspace", "h", "left":
			if m.mode == viewTree && len(m.path) > 0 {
				m.path = m.path[:len(m.path)-1]
				m.refresh()
				m.list.Select(0)
			}
			return m, nil
		case "o":
			if b, ok := m.selectedBookmark(); ok {
				openBrowser(b.URL)
			}
			return m, nil
		case "f":
			if b, ok := m.selectedBookmark(); ok {
				return m, m.change("favorite toggled: "+b.Title, func() error {
					_, err := m.mgr.ToggleFavorite(m.ctx, b.ID)
					return err
				})
			}
			return m, nil
		case "d":
			if n, ok := m.selected(); ok {
				return m, m.change("deleted: "+n.NodeTitle(), func() error {
					return m.mgr.Remove(m.ctx, []string{n.NodeID()})
				})
			}
			return m, nil
		case "J", "shift+down":
			cmd := m.moveSelected(1)
			return m, cmd
		case "K", "shift+up":
			cmd := m.moveSelected(-1)
			return m, cmd
		case "j", "down":
			m.list.CursorDown()
			return m, nil
		case "k", "up":
			m.list.CursorUp()
			return m, nil
		case "g":
			m.list.Select(0)
			return m, nil
		case "G":
			if items := m.list.Items(); len(items) > 0 {
				m.list.Select(len(items) - 1)
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width, msg.Height-6)
		m.searchInput.Width = msg.Width - 20

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.refresh()

	case changedMsg:
		if msg.err != nil {
			m.status = "error: " + msg.err.Error()
		} else {
			m.status = msg.status
		}
		if m.mode == viewSearch {
			return m, m.doSearch(m.searchInput.Value())
		}
		m.refresh()

	case searchMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		items := make([]list.Item, 0, len(msg.bookmarks))
		for _, b := range msg.bookmarks {
			items = append(items, nodeItem{node: b})
		}
		m.list.Title = fmt.Sprintf("Search: %s", m.searchInput.Value())
		m.list.SetItems(items)
	}

	if m.searching {
		var cmd tea.Cmd
		m.searchInput, cmd = m.searchInput.Update(msg)
		cmds = append(cmds, cmd)
	} else {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// refresh rebuilds the items of the current view from the manager list. Open
// folders that no longer exist are closed.
func (m *model) refresh() {
	snapshot := m.mgr.List()
	if snapshot == nil {
		m.list.SetItems(nil)
		return
	}

	if m.mode == viewFavorites {
		m.list.Title = "Favorites"
		m.list.SetItems(toItems(snapshot.Favorites))
		return
	}

	for len(m.path) > 0 {
		current := m.path[len(m.path)-1]
		n, ok := snapshot.Node(current.ID)
		if f, isFolder := n.(db.Folder); ok && isFolder {
			m.path[len(m.path)-1] = f
			break
		}
		m.path = m.path[:len(m.path)-1]
	}

	if len(m.path) == 0 {
		m.list.Title = "Bookmarks"
		m.list.SetItems(toItems(snapshot.TopLevel))
		return
	}

	titles := make([]string, 0, len(m.path))
	for _, f := range m.path {
		titles = append(titles, f.Title)
	}
	m.list.Title = "Bookmarks / " + strings.Join(titles, " / ")
	m.list.SetItems(toItems(m.path[len(m.path)-1].Children))
}

func toItems(nodes []db.Node) []list.Item {
	items := make([]list.Item, 0, len(nodes))
	for _, n := range nodes {
		items = append(items, nodeItem{node: n})
	}
	return items
}

func (m *model) selected() (db.Node, bool) {
	item, ok := m.list.SelectedItem().(nodeItem)
	if !ok {
		return nil, false
	}
	return item.node, true
}

func (m *model) selectedBookmark() (db.Bookmark, bool) {
	n, ok := m.selected()
	if !ok {
		return db.Bookmark{}, false
	}
	b, ok := n.(db.Bookmark)
	return b, ok
}

// open enters the selected folder, or opens the selected bookmark.
func (m *model) open() tea.Cmd {
	n, ok := m.selected()
	if !ok {
		return nil
	}
	switch n := n.(type) {
	case db.Folder:
		if m.mode != viewTree {
			return nil
		}
		m.path = append(m.path, n)
		m.refresh()
		m.list.Select(0)
	case db.Bookmark:
		openBrowser(n.URL)
	}
	return nil
}

// moveSelected shifts the selected item by delta places in its folder, or in
// the favorites when those are shown.
func (m *model) moveSelected(delta int) tea.Cmd {
	n, ok := m.selected()
	if !ok || m.mode == viewSearch {
		return nil
	}
	i := m.list.Index()
	target := i + delta
	if target < 0 || target >= len(m.list.Items()) {
		return nil
	}
	// The index names the slot before which the item lands, counted in the
	// list as it was before the move.
	index := target
	if delta > 0 {
		index = target + 1
	}
	m.list.Select(target)

	if m.mode == viewFavorites {
		return m.change("moved: "+n.NodeTitle(), func() error {
			return m.mgr.MoveFavorites(m.ctx, []string{n.NodeID()}, &index)
		})
	}
	parent := ""
	if len(m.path) > 0 {
		parent = m.path[len(m.path)-1].ID
	}
	return m.change("moved: "+n.NodeTitle(), func() error {
		return m.mgr.Move(m.ctx, []string{n.NodeID()}, &index, parent)
	})
}

func (m model) View() string {
	if m.err != nil {
		return fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err)
	}

	var b strings.Builder

	searchStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("62")).
		Padding(0, 1)

	activeTab := lipgloss.NewStyle().
		Foreground(lipgloss.Color("86")).
		Bold(true)

	inactiveTab := lipgloss.NewStyle().
		Foreground(lipgloss.Color("240"))

	tabs := []string{}
	for _, t := range []struct {
		mode  viewMode
		label string
	}{
		{viewTree, "[Tree]"},
		{viewFavorites, "[Favorites]"},
		{viewSearch, "[Search]"},
	} {
		if m.mode == t.mode {
			tabs = append(tabs, activeTab.Render(t.label))
		} else {
			tabs = append(tabs, inactiveTab.Render(t.label))
		}
	}

	searchBox := searchStyle.Render(m.searchInput.View())
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, searchBox, "  ", strings.Join(tabs, " ")))
	b.WriteString("\n\n")

	b.WriteString(m.list.View())

	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		MarginTop(1)

	if m.status != "" {
		b.WriteString("\n" + m.status)
	}
	help := "[j/k]nav [Enter]open [Bksp]up [J/K]move [f]avorite [d]elete [o]pen [/]search [Tab]favorites [q]uit"
	b.WriteString(helpStyle.Render(help))

	return b.String()
}

func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	}
	if cmd != nil {
		cmd.Start()
	}
}

// Run starts the TUI application
func Run(ctx context.Context, mgr *manager.Manager) error {
	p := tea.NewProgram(initialModel(ctx, mgr), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
