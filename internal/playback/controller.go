// Package playback reads a document aloud paragraph by paragraph.
//
// The Controller is a two-state machine (Idle, Speaking). Every play, stop
// and navigation starts a new session; a completion from an older session is
// dropped, so speech that finishes after the user pressed stop never
// advances the reading position.
package playback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/metcalfc/hark/internal/document"
	"github.com/metcalfc/hark/internal/settings"
	"github.com/metcalfc/hark/internal/speech"
)

var (
	// ErrDocumentNotFound is returned when the document to play is unknown.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrNoParagraphs is returned when playing a document without content.
	ErrNoParagraphs = errors.New("document has no paragraphs")
)

// State is the playback state reported in Status.
type State int

const (
	Idle State = iota
	Speaking
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Speaking:
		return "speaking"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Status is a snapshot of the controller.
type Status struct {
	State      State
	DocumentID string
	// Paragraph is the paragraph being spoken, or the last one spoken.
	Paragraph int
	Session   uint64
}

// Documents is the part of the document store the controller needs.
type Documents interface {
	Get(id string) (document.Document, bool)
	SetCurrentParagraph(id string, paragraph int) error
}

// Preferences supplies the settings read at the start of every paragraph.
type Preferences interface {
	Snapshot() settings.Settings
}

// Controller reads one document paragraph at a time through a speech engine.
// At most one paragraph is spoken at once.
type Controller struct {
	engine speech.Engine
	docs   Documents
	prefs  Preferences
	logger *slog.Logger

	mu      sync.Mutex
	state   State
	session uint64
	docID   string
	cursor  int
	cancel  context.CancelFunc

	listeners []func(Status)
	wg        sync.WaitGroup
}

// New returns an idle Controller.
func New(engine speech.Engine, docs Documents, prefs Preferences, logger *slog.Logger) *Controller {
	return &Controller{
		engine: engine,
		docs:   docs,
		prefs:  prefs,
		logger: logger,
	}
}

// OnChange registers fn to be called after every state or position change.
// fn runs on the goroutine that caused the change and must not block.
func (c *Controller) OnChange(fn func(Status)) {
	c.mu.Lock()
	c.listeners = append(c.listeners, fn)
	c.mu.Unlock()
}

// Status returns the current state.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.statusLocked()
}

func (c *Controller) statusLocked() Status {
	return Status{State: c.state, DocumentID: c.docID, Paragraph: c.cursor, Session: c.session}
}

// Speaking reports whether document id is being read.
func (c *Controller) Speaking(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == Speaking && c.docID == id
}

// Play starts reading document id at its current paragraph. Any session in
// progress is stopped first.
func (c *Controller) Play(id string) error {
	doc, ok := c.docs.Get(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrDocumentNotFound, id)
	}
	if doc.Len() == 0 {
		return ErrNoParagraphs
	}

	c.mu.Lock()
	c.stopLocked()
	c.session++
	c.state = Speaking
	c.docID = doc.ID
	c.cursor = doc.CurrentParagraph
	c.speakLocked(doc.Content[c.cursor])
	status := c.statusLocked()
	c.mu.Unlock()

	c.logger.Info("playback started", "document", id, "paragraph", status.Paragraph, "session", status.Session)
	c.notify(status)
	return nil
}

// Toggle stops reading document id if it is being read and starts it
// otherwise.
func (c *Controller) Toggle(id string) error {
	if c.Speaking(id) {
		c.Stop()
		return nil
	}
	return c.Play(id)
}

// Stop cancels speech in progress. It is a no-op when idle.
func (c *Controller) Stop() {
	c.mu.Lock()
	if c.state != Speaking {
		c.mu.Unlock()
		return
	}
	c.stopLocked()
	status := c.statusLocked()
	c.mu.Unlock()

	c.logger.Info("playback stopped", "document", status.DocumentID, "paragraph", status.Paragraph)
	c.notify(status)
}

// stopLocked ends the current session. A completion still in flight carries
// the old session and is ignored.
func (c *Controller) stopLocked() {
	if c.state != Speaking {
		return
	}
	c.session++
	c.state = Idle
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

// Next stops playback and moves document id forward one paragraph. It does
// nothing at the last paragraph.
func (c *Controller) Next(id string) error {
	return c.step(id, 1)
}

// Previous stops playback and moves document id back one paragraph. It does
// nothing at the first paragraph.
func (c *Controller) Previous(id string) error {
	return c.step(id, -1)
}

func (c *Controller) step(id string, delta int) error {
	doc, ok := c.docs.Get(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrDocumentNotFound, id)
	}
	target := doc.CurrentParagraph + delta
	if target < 0 || target >= doc.Len() {
		return nil
	}
	return c.JumpTo(id, target)
}

// JumpTo stops playback and sets the reading position of document id.
func (c *Controller) JumpTo(id string, paragraph int) error {
	c.Stop()

	if err := c.docs.SetCurrentParagraph(id, paragraph); err != nil {
		if errors.Is(err, document.ErrDocumentNotFound) {
			return fmt.Errorf("%w: %s", ErrDocumentNotFound, id)
		}
		return err
	}

	c.mu.Lock()
	c.docID = id
	c.cursor = paragraph
	status := c.statusLocked()
	c.mu.Unlock()

	c.notify(status)
	return nil
}

// Wait blocks until no speech goroutine is running.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// Close stops playback and waits for the engine to return.
func (c *Controller) Close() {
	c.Stop()
	c.Wait()
}

// speakLocked hands text to the engine on a new goroutine, tagged with the
// current session.
func (c *Controller) speakLocked(text string) {
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel

	u := c.utterance(text)
	token := c.session
	paragraph := c.cursor

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer cancel()

		err := c.engine.Speak(ctx, u)
		c.complete(token, paragraph, err)
	}()
}

func (c *Controller) utterance(text string) speech.Utterance {
	prefs := c.prefs.Snapshot()
	u := speech.Utterance{
		Text:  text,
		Voice: prefs.SelectedVoice,
		Rate:  prefs.Rate,
		Pitch: prefs.Pitch,
	}
	if u.Voice == "" {
		if lang, ok := speech.DetectLanguage(text); ok {
			u.Language = lang
		}
	}
	return u
}

// complete advances to the next paragraph when the finished utterance
// belongs to the live session and auto-advance allows it.
func (c *Controller) complete(token uint64, paragraph int, err error) {
	c.mu.Lock()

	if token != c.session || c.state != Speaking {
		c.mu.Unlock()
		c.logger.Debug("ignoring stale completion", "session", token, "paragraph", paragraph)
		return
	}

	if err != nil {
		c.state = Idle
		c.cancel = nil
		status := c.statusLocked()
		c.mu.Unlock()

		c.logger.Error("speech failed", "document", status.DocumentID, "paragraph", paragraph, "error", err)
		c.notify(status)
		return
	}

	doc, ok := c.docs.Get(c.docID)
	auto := c.prefs.Snapshot().AutoAdvance
	if !ok || !auto || c.cursor >= doc.Len()-1 {
		c.state = Idle
		c.cancel = nil
		status := c.statusLocked()
		c.mu.Unlock()

		c.logger.Info("playback finished", "document", status.DocumentID, "paragraph", status.Paragraph)
		c.notify(status)
		return
	}

	c.cursor++
	if err := c.docs.SetCurrentParagraph(c.docID, c.cursor); err != nil {
		c.logger.Error("failed to save reading position", "document", c.docID, "paragraph", c.cursor, "error", err)
	}
	c.speakLocked(doc.Content[c.cursor])
	status := c.statusLocked()
	c.mu.Unlock()

	c.notify(status)
}

func (c *Controller) notify(status Status) {
	c.mu.Lock()
	listeners := slices.Clone(c.listeners)
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(status)
	}
}
