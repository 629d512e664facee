package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/memeforge/pkg/config"
	"github.com/matzehuels/memeforge/pkg/editor"
	"github.com/matzehuels/memeforge/pkg/errors"
	"github.com/matzehuels/memeforge/pkg/history"
	mfio "github.com/matzehuels/memeforge/pkg/io"
	"github.com/matzehuels/memeforge/pkg/render"
	"github.com/matzehuels/memeforge/pkg/scene"
)

// editCommand creates the edit command for the interactive editor.
func (c *CLI) editCommand() *cobra.Command {
	var aspect, logFile string

	cmd := &cobra.Command{
		Use:   "edit [scene.json]",
		Short: "Edit a scene interactively in the terminal",
		Long: `Edit a scene interactively in the terminal.

The canvas is drawn as a character preview: images show their paint-order
number, captions their text, and the selected element is outlined with '#'.
A missing scene file is created on the first save.

Keys:
  tab / shift+tab   select next / previous element
  arrows, hjkl      move the selection by 10px
  + / -             grow / shrink the selection
  r / R             rotate the image by +15° / -15°
  C                 crop 10% off every side of the image
  0                 reset the image's rotation and size
  p                 cycle the caption between top, middle and bottom
  ] / [             bring to front / send to back
  x                 delete the selection
  i / t             add an image / a caption
  enter             edit the selected caption
  a                 arrange all images
  c                 cycle the canvas aspect ratio
  u / U             undo / redo
  s                 save the scene
  e                 export a PNG next to the scene
  ctrl+n            clear the canvas
  q                 quit`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeScenes,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runEdit(cmd.Context(), args[0], aspect, logFile)
		},
	}

	cmd.Flags().StringVar(&aspect, "aspect", "", "canvas aspect ratio for a new scene (default from config)")
	cmd.Flags().StringVar(&logFile, "log-file", "", "write editor logs to this file")
	registerAspectCompletion(cmd, "aspect")

	return cmd
}

// runEdit opens the scene at path (or a blank one) and runs the editor
// until the user quits.
func (c *CLI) runEdit(ctx context.Context, path, aspect, logFile string) error {
	doc, err := mfio.ImportJSON(path)
	switch {
	case errors.Is(err, errors.ErrCodeFileNotFound):
		if aspect == "" {
			aspect = c.Config.Canvas.Aspect
		}
		canvas, err := config.CanvasFor(aspect, c.Config.Canvas.BaseWidth)
		if err != nil {
			return err
		}
		doc = mfio.Document{Version: mfio.Version, Canvas: canvas}
	case err != nil:
		return fmt.Errorf("load scene %s: %w", path, err)
	}

	logger := log.New(io.Discard)
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "open %s", logFile)
		}
		defer f.Close()
		logger = newLogger(f, c.Logger.GetLevel())
	}

	sess, err := c.newEditSession(path, doc, logger)
	if err != nil {
		return err
	}
	defer sess.ed.Close()

	p := tea.NewProgram(newEditModel(ctx, sess), tea.WithAltScreen(), tea.WithContext(ctx))
	sess.setSend(p.Send)
	final, err := p.Run()
	if err != nil {
		return err
	}

	if m, ok := final.(editModel); ok && m.dirty() {
		printWarning("Unsaved changes in %s were discarded", path)
	}
	return nil
}

// =============================================================================
// Edit Session
// =============================================================================

// editSession is the state shared between the editor's callbacks and the
// terminal model.
type editSession struct {
	ed    *editor.Editor
	notes *editor.Recorder
	path  string
	seed  uint64
	base  float64 // canvas base width for aspect presets

	mu   sync.Mutex
	send func(tea.Msg)
}

// newEditSession creates an editor over doc configured from c.Config.
func (c *CLI) newEditSession(path string, doc mfio.Document, logger *log.Logger) (*editSession, error) {
	cfg := c.Config
	sess := &editSession{
		notes: editor.NewRecorder(16),
		path:  path,
		seed:  doc.Seed,
		base:  cfg.Canvas.BaseWidth,
	}

	decoder := sceneDecoder(path)
	bg, err := render.ParseColor(cfg.Render.Background)
	if err != nil {
		return nil, err
	}
	raster := render.NewPNGRasterizer(decoder, render.WithPNGBackground(bg), render.WithScale(cfg.Render.Scale))

	ed, err := editor.New(scene.NewMemoryStore(doc.Scene), doc.Canvas,
		editor.WithDecoder(decoder),
		editor.WithRasterizer(raster),
		editor.WithNotifier(sess.notes),
		editor.WithRenderer(editor.RendererFunc(sess.repaint)),
		editor.WithLogger(logger),
		editor.WithDebounce(cfg.Editor.Debounce),
		editor.WithLayout(cfg.LayoutOptions()),
		editor.WithHistory(history.WithMaxStates(cfg.History.MaxStates)),
	)
	if err != nil {
		return nil, err
	}
	sess.ed = ed
	return sess, nil
}

func (s *editSession) setSend(send func(tea.Msg)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.send = send
}

// repaint asks the program to redraw. The editor calls it with its lock
// held, so the message is sent from another goroutine.
func (s *editSession) repaint([]scene.ImageElement, []scene.TextElement) {
	s.mu.Lock()
	send := s.send
	s.mu.Unlock()
	if send != nil {
		go send(repaintMsg{})
	}
}

// document returns the current scene as a document ready to save.
func (s *editSession) document() mfio.Document {
	s.ed.Flush()
	return mfio.Document{
		Version: mfio.Version,
		Canvas:  s.ed.Canvas(),
		Scene:   s.ed.Scene(),
		Seed:    s.seed,
	}
}
