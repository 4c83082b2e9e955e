package tui

import (
	"bytes"
	"fmt"
	"image"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"photosort/internal/codec"
	"photosort/internal/imageinfo"
	"photosort/internal/triage"
)

// Options configures the sorter UI. MaxWidth and MaxHeight cap the preview in
// pixels; CropFill is the share of the window used while cropping.
type Options struct {
	Codec     codec.Codec
	Logger    *slog.Logger
	MaxWidth  int
	MaxHeight int
	CropFill  float64
}

type mode int

const (
	modeBrowse mode = iota
	modeCrop
	modeNewFolder
)

const (
	folderPaneWidth = 32
	chromeRows      = 8
	defaultCropFill = 0.9
)

// Model drives one triage session. Filesystem work runs in tea.Cmds; while
// one is in flight every key except ctrl+c is ignored.
type Model struct {
	session *triage.Session
	codec   codec.Codec
	log     *slog.Logger
	opts    Options

	keys  keyMap
	help  help.Model
	input textinput.Model
	crop  cropModel
	mode  mode

	width  int
	height int

	state    sessionState
	selected int

	preview     image.Image
	previewPath string
	previewErr  error
	info        imageinfo.Info
	rendered    string

	status      string
	statusErr   bool
	busy        bool
	quitPending bool
}

// sessionState is a copy of what the view needs, taken after each command.
type sessionState struct {
	folder     string
	root       string
	folders    []string
	current    string
	hasCurrent bool
	remaining  int
	cropped    bool
}

type resultMsg struct {
	state  sessionState
	note   string
	err    error
	reload bool
}

type previewMsg struct {
	path string
	img  image.Image
	info imageinfo.Info
	err  error
}

type cropReadyMsg struct {
	req *triage.CropRequest
	err error
}

func NewModel(session *triage.Session, opts Options) Model {
	if opts.Codec == nil {
		opts.Codec = codec.Standard{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.CropFill <= 0 || opts.CropFill > 1 {
		opts.CropFill = defaultCropFill
	}

	input := textinput.New()
	input.Placeholder = "folder name"
	input.Prompt = "New folder: "
	input.CharLimit = 128

	return Model{
		session: session,
		codec:   opts.Codec,
		log:     opts.Logger,
		opts:    opts,
		keys:    defaultKeyMap(),
		help:    help.New(),
		input:   input,
		width:   100,
		height:  40,
	}
}

func (m Model) Init() tea.Cmd {
	return m.exec("load", false, func(*triage.Session) (string, error) { return "", nil })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.rerender()
		return m, nil
	case resultMsg:
		return m.applyResult(msg)
	case previewMsg:
		if msg.path != m.state.current {
			return m, nil
		}
		m.preview = msg.img
		m.previewPath = msg.path
		m.previewErr = msg.err
		m.info = msg.info
		m.rerender()
		return m, nil
	case cropReadyMsg:
		m.busy = false
		if m.quitPending {
			return m, tea.Quit
		}
		if msg.err != nil {
			m.setStatus("", msg.err)
			return m, nil
		}
		boxW, boxH := m.cropBox()
		m.crop = newCropModel(msg.req, boxW, boxH)
		m.mode = modeCrop
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.mode == modeNewFolder {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) applyResult(msg resultMsg) (tea.Model, tea.Cmd) {
	m.busy = false
	if m.quitPending {
		return m, tea.Quit
	}

	if msg.state.folder != m.state.folder {
		m.selected = 0
	}
	m.state = msg.state
	m.selected = min(m.selected, max(len(m.state.folders)-1, 0))
	m.setStatus(msg.note, msg.err)

	if !m.state.hasCurrent {
		m.preview = nil
		m.previewPath = ""
		m.previewErr = nil
		m.rendered = ""
		return m, nil
	}
	if msg.reload || m.state.current != m.previewPath {
		return m, m.loadPreview()
	}
	m.info.Cropped = m.state.cropped
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		if m.busy {
			m.quitPending = true
			return m, nil
		}
		return m, tea.Quit
	}
	if m.busy {
		return m, nil
	}

	switch m.mode {
	case modeCrop:
		return m.handleCropKey(msg)
	case modeNewFolder:
		return m.handleInputKey(msg)
	}
	return m.handleBrowseKey(msg)
}

func (m Model) handleBrowseKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.rerender()
	case key.Matches(msg, m.keys.Up):
		if m.selected > 0 {
			m.selected--
		}
	case key.Matches(msg, m.keys.Down):
		if m.selected < len(m.state.folders)-1 {
			m.selected++
		}
	case key.Matches(msg, m.keys.Select):
		folder, ok := m.highlighted()
		if !ok {
			return m, nil
		}
		return m.run("select", false, func(s *triage.Session) (string, error) {
			moved, err := s.SelectFolder(folder)
			if err != nil || !moved {
				return "", err
			}
			return "Moved to " + relFolder(s.DestRoot(), folder), nil
		})
	case key.Matches(msg, m.keys.Open):
		folder, ok := m.highlighted()
		if !ok {
			return m, nil
		}
		return m.run("open", false, func(s *triage.Session) (string, error) {
			return "", s.Enter(folder)
		})
	case key.Matches(msg, m.keys.Back):
		return m.run("back", false, func(s *triage.Session) (string, error) {
			return "", s.Up()
		})
	case key.Matches(msg, m.keys.MoveHere):
		return m.run("move", false, func(s *triage.Session) (string, error) {
			folder := s.Folder()
			if err := s.MoveHere(); err != nil {
				return "", err
			}
			return "Moved to " + relFolder(s.DestRoot(), folder), nil
		})
	case key.Matches(msg, m.keys.Delete):
		return m.run("delete", false, func(s *triage.Session) (string, error) {
			name := currentName(s)
			if err := s.Delete(); err != nil {
				return "", err
			}
			return "Deleted " + name, nil
		})
	case key.Matches(msg, m.keys.Skip):
		return m.run("skip", false, func(s *triage.Session) (string, error) {
			name := currentName(s)
			if err := s.Skip(); err != nil {
				return "", err
			}
			return "Skipped " + name, nil
		})
	case key.Matches(msg, m.keys.Undo):
		return m.run("undo", true, func(s *triage.Session) (string, error) {
			if err := s.Undo(); err != nil {
				return "", err
			}
			return "Undid last action", nil
		})
	case key.Matches(msg, m.keys.Crop):
		m.busy = true
		return m, m.prepareCrop()
	case key.Matches(msg, m.keys.UndoCrop):
		return m.run("undo crop", true, func(s *triage.Session) (string, error) {
			if err := s.UndoCrop(); err != nil {
				return "", err
			}
			return "Crop undone", nil
		})
	case key.Matches(msg, m.keys.NewFolder):
		m.mode = modeNewFolder
		m.input.Reset()
		return m, m.input.Focus()
	}
	return m, nil
}

func (m Model) handleCropKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var decision cropDecision
	m.crop, decision = m.crop.update(msg)

	switch decision {
	case cropCancelled:
		m.mode = modeBrowse
		m.setStatus("Crop cancelled", nil)
	case cropConfirmed:
		m.mode = modeBrowse
		rect, ok := m.crop.result()
		if !ok {
			m.setStatus("Empty selection, nothing cropped", nil)
			return m, nil
		}
		req := m.crop.req
		return m.run("crop", true, func(s *triage.Session) (string, error) {
			changed, err := s.ApplyCrop(req, rect)
			if err != nil || !changed {
				return "", err
			}
			return fmt.Sprintf("Cropped to %d×%d", rect.Width, rect.Height), nil
		})
	}
	return m, nil
}

func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = modeBrowse
		m.input.Blur()
		return m, nil
	case tea.KeyEnter:
		name := m.input.Value()
		m.mode = modeBrowse
		m.input.Blur()
		return m.run("create folder", false, func(s *triage.Session) (string, error) {
			path, err := s.CreateFolder(name)
			if err != nil {
				return "", err
			}
			return "Created " + filepath.Base(path), nil
		})
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// run marks the model busy and executes fn off the update loop.
func (m Model) run(op string, reload bool, fn func(*triage.Session) (string, error)) (tea.Model, tea.Cmd) {
	m.busy = true
	return m, m.exec(op, reload, fn)
}

func (m Model) exec(op string, reload bool, fn func(*triage.Session) (string, error)) tea.Cmd {
	session, log := m.session, m.log
	return func() tea.Msg {
		note, err := fn(session)
		if err != nil {
			log.Warn("command failed", "op", op, "error", err)
		}
		return resultMsg{state: capture(session), note: note, err: err, reload: reload}
	}
}

func (m Model) prepareCrop() tea.Cmd {
	session := m.session
	return func() tea.Msg {
		req, err := session.PrepareCrop()
		return cropReadyMsg{req: req, err: err}
	}
}

func (m Model) loadPreview() tea.Cmd {
	session, dec := m.session, m.codec
	want, cropped := m.state.current, m.state.cropped
	return func() tea.Msg {
		path, data, err := session.ReadCurrent()
		if path == "" {
			path = want
		}
		if err != nil {
			return previewMsg{path: path, err: err}
		}
		img, err := dec.Decode(bytes.NewReader(data))
		info := imageinfo.InspectReader(path, bytes.NewReader(data), int64(len(data)), dec)
		info.Cropped = cropped
		return previewMsg{path: path, img: img, info: info, err: err}
	}
}

func capture(s *triage.Session) sessionState {
	st := sessionState{
		folder:    s.Folder(),
		root:      s.DestRoot(),
		remaining: s.Remaining(),
		cropped:   s.IsCurrentCropped(),
	}
	st.current, st.hasCurrent = s.Current()
	st.folders, _ = s.NavigableFolders(st.folder)
	return st
}

func currentName(s *triage.Session) string {
	path, _ := s.Current()
	return filepath.Base(path)
}

func relFolder(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return "/"
	}
	return rel
}

func (m Model) highlighted() (string, bool) {
	if m.selected < 0 || m.selected >= len(m.state.folders) {
		return "", false
	}
	return m.state.folders[m.selected], true
}

func (m *Model) setStatus(note string, err error) {
	if err != nil {
		m.status = err.Error()
		m.statusErr = true
		return
	}
	m.status = note
	m.statusErr = false
}

func (m Model) previewBox() (int, int) {
	helpRows := 1
	if m.help.ShowAll {
		helpRows = 5
	}
	cols := m.width - folderPaneWidth - 2
	rows := m.height - chromeRows - helpRows
	return max(cols, 1), max(rows, 1)
}

func (m Model) cropBox() (int, int) {
	w := int(float64(m.width-2) * m.opts.CropFill)
	h := int(float64(m.height-chromeRows) * m.opts.CropFill)
	return max(w, 1), max(h, 1) * 2
}

func (m *Model) rerender() {
	if m.preview == nil {
		m.rendered = ""
		return
	}
	cols, rows := m.previewBox()
	scaled, _ := fitPreview(m.preview, cols, rows, m.opts.MaxWidth, m.opts.MaxHeight)
	m.rendered = renderBlocks(scaled, nil)
}

func (m Model) View() string {
	sections := []string{m.headerView()}

	switch m.mode {
	case modeCrop:
		sections = append(sections, m.crop.view(), m.cropStatusView(), m.help.View(m.crop.keys))
		return strings.Join(sections, "\n")
	default:
		body := lipgloss.JoinHorizontal(lipgloss.Top, m.previewView(), "  ", m.folderView())
		sections = append(sections, body)
	}

	sections = append(sections, m.statusView(), m.help.View(m.keys))
	return strings.Join(sections, "\n")
}

func (m Model) headerView() string {
	if !m.state.hasCurrent {
		return titleStyle.Render("photosort") + dimStyle.Render("  ·  all photos sorted")
	}

	title := titleStyle.Render("photosort") +
		labelStyle.Render(fmt.Sprintf("  ·  %d photos left  ·  %s", m.state.remaining, filepath.Base(m.state.current)))
	if m.state.cropped {
		title += " " + croppedStyle.Render("[CROPPED]")
	}

	details := []string{"Folder: " + relFolder(m.state.root, m.state.folder)}
	if m.info.Path == m.state.current {
		details = append(details, m.info.HumanSize(), m.info.Dimensions())
		if m.info.Taken != "" {
			details = append(details, m.info.Taken)
		}
		if m.info.Camera != "" {
			details = append(details, m.info.Camera)
		}
	}
	return title + "\n" + dimStyle.Render(strings.Join(details, "  ·  "))
}

func (m Model) previewView() string {
	cols, _ := m.previewBox()
	switch {
	case !m.state.hasCurrent:
		return lipgloss.NewStyle().Width(cols).Render(okStyle.Render("Nothing left to sort. Press x to undo or q to quit."))
	case m.previewErr != nil:
		return lipgloss.NewStyle().Width(cols).Render(errStyle.Render("Preview unavailable: " + m.previewErr.Error()))
	case m.rendered == "":
		return lipgloss.NewStyle().Width(cols).Render(dimStyle.Render("Loading preview…"))
	}
	return lipgloss.NewStyle().Width(cols).Render(m.rendered)
}

func (m Model) folderView() string {
	_, rows := m.previewBox()
	visible := max(rows-3, 1)

	lines := []string{titleStyle.Render(relFolder(m.state.root, m.state.folder))}
	if len(m.state.folders) == 0 {
		lines = append(lines, dimStyle.Render("(no subfolders)"))
	}

	start := 0
	if m.selected >= visible {
		start = m.selected - visible + 1
	}
	end := min(start+visible, len(m.state.folders))
	for i := start; i < end; i++ {
		name := filepath.Base(m.state.folders[i])
		if i == m.selected {
			lines = append(lines, selectedStyle.Render("> "+name))
			continue
		}
		lines = append(lines, labelStyle.Render("  "+name))
	}

	if m.mode == modeNewFolder {
		lines = append(lines, "", m.input.View())
	}

	return paneStyle.Width(folderPaneWidth - 2).Render(strings.Join(lines, "\n"))
}

func (m Model) cropStatusView() string {
	if m.crop.anchor == nil {
		return dimStyle.Render("Move to a corner and press space.")
	}
	rect, ok := m.crop.result()
	if !ok {
		return dimStyle.Render("Selection is empty.")
	}
	return labelStyle.Render(fmt.Sprintf("Selection %d×%d at %d,%d", rect.Width, rect.Height, rect.X, rect.Y))
}

func (m Model) statusView() string {
	switch {
	case m.busy:
		return dimStyle.Render("Working…")
	case m.status == "":
		return ""
	case m.statusErr:
		return errStyle.Render(m.status)
	}
	return okStyle.Render(m.status)
}
