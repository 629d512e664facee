package cli

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/memeforge/pkg/config"
	"github.com/matzehuels/memeforge/pkg/editor"
	"github.com/matzehuels/memeforge/pkg/errors"
	"github.com/matzehuels/memeforge/pkg/geometry"
	mfio "github.com/matzehuels/memeforge/pkg/io"
	"github.com/matzehuels/memeforge/pkg/layout"
	"github.com/matzehuels/memeforge/pkg/scene"
)

// Editor key constants.
const (
	nudgeStep  = 10.0 // pixels per arrow key press
	growFactor = 1.1  // scale change per +/- press
	fontStep   = 4.0  // font size change per +/- press
	rotateStep = 15.0 // degrees per r/R press
	cropInset  = 0.1  // share cut from every side by C
)

var (
	inputPromptStyle = lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
	dirtyStyle       = lipgloss.NewStyle().Foreground(colorYellow)
	helpKeyStyle     = lipgloss.NewStyle().Foreground(colorGray)
)

// inputMode is what a line of typed input is for.
type inputMode int

const (
	modeNormal inputMode = iota
	modeAddImage
	modeAddText
	modeEditText
)

var modePrompts = map[inputMode]string{
	modeAddImage: "Image path",
	modeAddText:  "Caption",
	modeEditText: "Edit caption",
}

// =============================================================================
// Messages
// =============================================================================

// repaintMsg is sent by the editor's renderer after every change.
type repaintMsg struct{}

// opDoneMsg reports the end of an editor operation run off the UI loop.
type opDoneMsg struct {
	err error
}

// arrangedMsg reports a finished arrangement.
type arrangedMsg struct {
	seed uint64
	err  error
}

// exportedMsg reports a written PNG.
type exportedMsg struct {
	path string
	err  error
}

// =============================================================================
// editModel - Interactive scene editor
// =============================================================================

// editModel is the bubbletea model driving an [editor.Editor].
type editModel struct {
	ctx  context.Context
	sess *editSession

	width, height int

	mode   inputMode
	input  []rune
	editID string

	status   editor.Notification
	busy     string
	saved    time.Time     // timestamp of the history snapshot last saved
	canvas   geometry.Size // canvas size last saved
	confirm  bool          // a second q quits with unsaved changes
	showHelp bool
}

// newEditModel creates a model over sess. The scene as loaded counts as
// saved.
func newEditModel(ctx context.Context, sess *editSession) editModel {
	return editModel{
		ctx:    ctx,
		sess:   sess,
		width:  80,
		height: 40,
		saved:  sess.ed.History().Current().Timestamp,
		canvas: sess.ed.Canvas(),
		status: editor.Notification{Message: "Press ? for help", Level: editor.LevelInfo},
	}
}

func (m editModel) Init() tea.Cmd {
	return nil
}

func (m editModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case tea.KeyMsg:
		if m.mode != modeNormal {
			m, cmd = m.updateInput(msg)
		} else {
			var quit bool
			m, cmd, quit = m.updateNormal(msg)
			if quit {
				return m, tea.Quit
			}
		}
	case opDoneMsg:
		m.busy = ""
		m.reportErr(msg.err)
	case arrangedMsg:
		m.busy = ""
		if msg.err == nil {
			m.sess.seed = msg.seed
		}
		m.reportErr(msg.err)
	case exportedMsg:
		m.busy = ""
		if msg.err == nil {
			m.status = editor.Notification{Message: "Exported " + msg.path, Level: editor.LevelSuccess}
		} else {
			m.reportErr(msg.err)
		}
	case repaintMsg:
	}
	m.drainNotes()
	return m, cmd
}

// updateNormal handles a key press outside of text input. quit is set
// when the program should exit.
func (m editModel) updateNormal(msg tea.KeyMsg) (_ editModel, _ tea.Cmd, quit bool) {
	ed := m.sess.ed
	sel := ed.Selection()
	key := msg.String()
	if key != "q" && key != "ctrl+c" {
		m.confirm = false
	}

	switch key {
	case "q", "ctrl+c":
		if m.dirty() && !m.confirm {
			m.confirm = true
			m.status = editor.Notification{Message: "Unsaved changes: press q again to quit, s to save", Level: editor.LevelWarning}
			return m, nil, false
		}
		return m, nil, true
	case "?":
		m.showHelp = !m.showHelp
	case "tab":
		m.cycleSelection(1)
	case "shift+tab":
		m.cycleSelection(-1)
	case "esc":
		ed.Deselect()
	case "left", "h":
		m.reportErr(m.nudge(-nudgeStep, 0))
	case "right", "l":
		m.reportErr(m.nudge(nudgeStep, 0))
	case "up", "k":
		m.reportErr(m.nudge(0, -nudgeStep))
	case "down", "j":
		m.reportErr(m.nudge(0, nudgeStep))
	case "+", "=":
		m.reportErr(m.grow(growFactor, fontStep))
	case "-", "_":
		m.reportErr(m.grow(1/growFactor, -fontStep))
	case "r":
		m.reportErr(m.onImage(sel, func(id string) error { return ed.Rotate(id, rotateStep) }))
	case "R":
		m.reportErr(m.onImage(sel, func(id string) error { return ed.Rotate(id, -rotateStep) }))
	case "C":
		m.reportErr(m.onImage(sel, m.cropInset))
	case "0":
		m.reportErr(m.onImage(sel, ed.ResetTransform))
	case "p":
		m.reportErr(m.cycleAnchor(sel))
	case "]":
		m.reportErr(m.onSelection(sel, ed.BringToFront))
	case "[":
		m.reportErr(m.onSelection(sel, ed.SendToBack))
	case "d":
		m.reportErr(m.onSelection(sel, func(id string) error {
			_, err := ed.Duplicate(id)
			return err
		}))
	case "x", "delete", "backspace":
		m.reportErr(m.onSelection(sel, ed.Delete))
	case "i":
		m.mode, m.input = modeAddImage, nil
	case "t":
		m.mode, m.input = modeAddText, nil
	case "enter":
		if sel.Kind == scene.KindText {
			s := ed.Scene()
			if i := s.TextIndex(sel.ID); i >= 0 {
				m.mode, m.editID, m.input = modeEditText, sel.ID, []rune(s.Texts[i].Content)
			}
		}
	case "a":
		m.busy = "Arranging..."
		return m, m.arrangeCmd(), false
	case "c":
		m.busy = "Resizing canvas..."
		return m, m.nextAspectCmd(), false
	case "u", "ctrl+z":
		ed.Undo()
	case "U", "ctrl+y", "ctrl+r":
		ed.Redo()
	case "s", "ctrl+s":
		m.save()
	case "e":
		m.busy = "Exporting..."
		return m, m.exportCmd(), false
	case "ctrl+n":
		ed.Reset()
		m.sess.seed = 0
	}
	return m, nil, false
}

// updateInput handles a key press while a line of input is being typed.
// Caption edits are applied live; the editor records one history entry
// once typing pauses.
func (m editModel) updateInput(msg tea.KeyMsg) (editModel, tea.Cmd) {
	ed := m.sess.ed
	switch msg.Type {
	case tea.KeyEsc, tea.KeyCtrlC:
		if m.mode == modeEditText {
			ed.Flush()
		}
		m.mode, m.input = modeNormal, nil
		return m, nil
	case tea.KeyEnter:
		return m.submitInput()
	case tea.KeyBackspace:
		if len(m.input) > 0 {
			m.input = m.input[:len(m.input)-1]
		}
	case tea.KeySpace:
		m.input = append(m.input, ' ')
	case tea.KeyRunes:
		m.input = append(m.input, msg.Runes...)
	default:
		return m, nil
	}
	if m.mode == modeEditText {
		m.reportErr(ed.UpdateText(m.editID, string(m.input)))
	}
	return m, nil
}

func (m editModel) submitInput() (editModel, tea.Cmd) {
	ed := m.sess.ed
	text := strings.TrimSpace(string(m.input))
	mode := m.mode
	m.mode, m.input = modeNormal, nil

	switch mode {
	case modeAddImage:
		if text == "" {
			return m, nil
		}
		srcs, err := sceneSources([]string{text}, filepath.Dir(m.sess.path))
		if err != nil {
			m.reportErr(err)
			return m, nil
		}
		m.busy = "Decoding " + text + "..."
		ctx := m.ctx
		return m, func() tea.Msg {
			_, err := ed.AddImage(ctx, srcs[0])
			return opDoneMsg{err: err}
		}
	case modeAddText:
		if text == "" {
			return m, nil
		}
		_, err := ed.AddText(text)
		m.reportErr(err)
	case modeEditText:
		ed.Flush()
	}
	return m, nil
}

// =============================================================================
// Operations
// =============================================================================

// cycleSelection selects the next element in paint order, images first.
func (m *editModel) cycleSelection(step int) {
	ed := m.sess.ed
	ids := elementIDs(ed.Scene())
	if len(ids) == 0 {
		return
	}
	cur := -1
	for i, id := range ids {
		if id == ed.Selection().ID {
			cur = i
		}
	}
	next := 0
	if cur >= 0 {
		next = (cur + step + len(ids)) % len(ids)
	} else if step < 0 {
		next = len(ids) - 1
	}
	m.reportErr(ed.Select(ids[next]))
}

// nudge moves the selection by (dx, dy) without drag snapping.
func (m *editModel) nudge(dx, dy float64) error {
	ed := m.sess.ed
	sel := ed.Selection()
	s := ed.Scene()
	switch sel.Kind {
	case scene.KindImage:
		if i := s.ImageIndex(sel.ID); i >= 0 {
			return ed.MoveTo(sel.ID, s.Images[i].X+dx, s.Images[i].Y+dy)
		}
	case scene.KindText:
		if i := s.TextIndex(sel.ID); i >= 0 {
			return ed.MoveTo(sel.ID, s.Texts[i].X+dx, s.Texts[i].Y+dy)
		}
	}
	return nil
}

// grow scales an image by factor or changes a caption's font size by step.
func (m *editModel) grow(factor, step float64) error {
	ed := m.sess.ed
	sel := ed.Selection()
	s := ed.Scene()
	switch sel.Kind {
	case scene.KindImage:
		if i := s.ImageIndex(sel.ID); i >= 0 {
			return ed.SetImageScale(sel.ID, s.Images[i].ScaleFactor*factor)
		}
	case scene.KindText:
		if i := s.TextIndex(sel.ID); i >= 0 {
			return ed.SetFontSize(sel.ID, math.Max(s.Texts[i].FontSize+step, fontStep))
		}
	}
	return nil
}

// cropInset cuts cropInset of the image's width and height off every side.
func (m *editModel) cropInset(id string) error {
	s := m.sess.ed.Scene()
	i := s.ImageIndex(id)
	if i < 0 {
		return nil
	}
	img := s.Images[i]
	dx, dy := img.Width*cropInset, img.Height*cropInset
	return m.sess.ed.Crop(id, geometry.NewRect(dx, dy, img.Width-2*dx, img.Height-2*dy))
}

// cycleAnchor moves a caption to the next band: top, middle, bottom.
func (m *editModel) cycleAnchor(sel scene.Selection) error {
	if sel.Kind != scene.KindText {
		return nil
	}
	ed := m.sess.ed
	s := ed.Scene()
	i := s.TextIndex(sel.ID)
	if i < 0 {
		return nil
	}
	next := (layout.AnchorOf(s.Texts[i].Y, ed.Canvas().Height) + 1) % (layout.AnchorBottom + 1)
	return ed.PositionText(sel.ID, next)
}

func (m *editModel) onImage(sel scene.Selection, fn func(id string) error) error {
	if sel.Kind != scene.KindImage {
		return nil
	}
	return fn(sel.ID)
}

func (m *editModel) onSelection(sel scene.Selection, fn func(id string) error) error {
	if sel.IsZero() {
		return nil
	}
	return fn(sel.ID)
}

func (m editModel) arrangeCmd() tea.Cmd {
	ed, ctx := m.sess.ed, m.ctx
	return func() tea.Msg {
		res, err := ed.Arrange(ctx)
		return arrangedMsg{seed: res.Seed, err: err}
	}
}

// nextAspectCmd switches the canvas to the preset after the current one.
func (m editModel) nextAspectCmd() tea.Cmd {
	ed, ctx := m.sess.ed, m.ctx
	next := config.Presets[(presetIndex(ed.Canvas(), m.sess.base)+1)%len(config.Presets)]
	size, err := config.CanvasFor(next, m.sess.base)
	return func() tea.Msg {
		if err != nil {
			return opDoneMsg{err: err}
		}
		return opDoneMsg{err: ed.SetCanvas(ctx, size)}
	}
}

func (m editModel) exportCmd() tea.Cmd {
	ed, ctx := m.sess.ed, m.ctx
	path := basePath("", m.sess.path) + ".png"
	return func() tea.Msg {
		data, err := ed.Export(ctx)
		if err != nil {
			return exportedMsg{err: err}
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return exportedMsg{err: errors.Wrap(errors.ErrCodeInternal, err, "write %s", path)}
		}
		return exportedMsg{path: path}
	}
}

func (m *editModel) save() {
	if err := mfio.ExportJSON(m.sess.document(), m.sess.path); err != nil {
		m.reportErr(err)
		return
	}
	m.saved = m.sess.ed.History().Current().Timestamp
	m.canvas = m.sess.ed.Canvas()
	m.status = editor.Notification{Message: "Saved " + m.sess.path, Level: editor.LevelSuccess}
}

// dirty reports whether the scene differs from the saved document.
func (m editModel) dirty() bool {
	ed := m.sess.ed
	return ed.Pending() || ed.Canvas() != m.canvas || !ed.History().Current().Timestamp.Equal(m.saved)
}

// reportErr shows a failed operation in the status line. Operations that
// notify on their own are left to their notification.
func (m *editModel) reportErr(err error) {
	if err == nil {
		return
	}
	m.status = editor.Notification{Message: errors.UserMessage(err), Level: editor.LevelError}
}

// drainNotes shows the newest editor notification.
func (m *editModel) drainNotes() {
	if notes := m.sess.notes.Drain(); len(notes) > 0 {
		m.status = notes[len(notes)-1]
	}
}

// =============================================================================
// View
// =============================================================================

func (m editModel) View() string {
	ed := m.sess.ed
	s := ed.Scene()
	sel := ed.Selection()
	canvas := ed.Canvas()

	var b strings.Builder

	title := StyleTitle.Render(appName) + StyleDim.Render(" · ") + StyleValue.Render(m.sess.path) +
		StyleDim.Render(fmt.Sprintf(" · %.0f×%.0f", canvas.Width, canvas.Height))
	if m.dirty() {
		title += " " + dirtyStyle.Render("●")
	}
	b.WriteString(title + "\n")

	cols, rows := previewSize(m.width, m.height, canvas)
	b.WriteString(previewBox(s, canvas, cols, rows, sel.ID))
	b.WriteString("\n")

	if !s.IsEmpty() {
		b.WriteString(elementTable(s, sel.ID))
		b.WriteString("\n")
	}

	if m.busy != "" {
		b.WriteString(styleIconSpinner.Render("⠿") + " " + StyleDim.Render(m.busy))
	} else {
		b.WriteString(renderNotification(m.status))
	}
	b.WriteString("\n")

	st := ed.History().State()
	hist := fmt.Sprintf("history %d/%d", st.Cursor+1, st.Len)
	if ed.Pending() {
		hist += " · editing"
	}
	b.WriteString(StyleDim.Render(hist) + "\n")

	if m.mode != modeNormal {
		b.WriteString(inputPromptStyle.Render(modePrompts[m.mode]+": ") + string(m.input) + "█\n")
		b.WriteString(StyleDim.Render("⏎ confirm  esc cancel"))
		return b.String()
	}

	if m.showHelp {
		b.WriteString(helpText())
	} else {
		b.WriteString(StyleDim.Render("tab select  ←↑↓→ move  +/- size  a arrange  u/U undo/redo  s save  e export  ? help  q quit"))
	}
	return b.String()
}

// previewSize fits the character preview into a terminal of the given
// size. Terminal cells are about twice as tall as wide.
func previewSize(width, height int, canvas geometry.Size) (cols, rows int) {
	cols = max(min(width-2, 100), 16)
	rows = int(math.Round(float64(cols) * canvas.Height / canvas.Width / 2))
	if limit := max(height-20, 6); rows > limit {
		rows = limit
		cols = max(int(math.Round(float64(rows)*2*canvas.Width/canvas.Height)), 8)
	}
	return cols, max(rows, 1)
}

// presetIndex returns the index of the aspect preset matching canvas, or
// -1.
func presetIndex(canvas geometry.Size, base float64) int {
	for i, p := range config.Presets {
		size, err := config.CanvasFor(p, base)
		if err == nil && math.Abs(size.Width-canvas.Width) < 0.5 && math.Abs(size.Height-canvas.Height) < 0.5 {
			return i
		}
	}
	return -1
}

// elementIDs lists every element id, images first, in paint order.
func elementIDs(s scene.Scene) []string {
	ids := make([]string, 0, len(s.Images)+len(s.Texts))
	for _, img := range s.Images {
		ids = append(ids, img.ID)
	}
	for _, t := range s.Texts {
		ids = append(ids, t.ID)
	}
	return ids
}

func helpText() string {
	keys := [][2]string{
		{"tab", "select"}, {"←↑↓→", "move"}, {"+/-", "size"}, {"r/R", "rotate"},
		{"C", "crop"}, {"0", "reset"}, {"p", "caption band"}, {"]/[", "front/back"},
		{"d", "duplicate"}, {"x", "delete"}, {"i", "add image"}, {"t", "add caption"},
		{"⏎", "edit caption"}, {"a", "arrange"}, {"c", "aspect"}, {"u/U", "undo/redo"},
		{"s", "save"}, {"e", "export"}, {"ctrl+n", "clear"}, {"q", "quit"},
	}
	var parts []string
	for _, k := range keys {
		parts = append(parts, helpKeyStyle.Render(k[0])+" "+StyleDim.Render(k[1]))
	}
	var lines []string
	for i := 0; i < len(parts); i += 6 {
		lines = append(lines, strings.Join(parts[i:min(i+6, len(parts))], "  "))
	}
	return strings.Join(lines, "\n")
}
