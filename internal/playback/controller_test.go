package playback

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/metcalfc/hark/internal/document"
	"github.com/metcalfc/hark/internal/settings"
	"github.com/metcalfc/hark/internal/speech"
	"github.com/metcalfc/hark/internal/storage"
)

// request is one Speak call seen by fakeEngine. The test finishes it by
// sending on done.
type request struct {
	utterance speech.Utterance
	done      chan error
}

// fakeEngine hands every utterance to the test and blocks until the test
// completes it. With ignoreCancel set it keeps blocking after cancellation,
// like an engine whose completion callback still fires after stop.
type fakeEngine struct {
	requests     chan request
	ignoreCancel bool
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{requests: make(chan request, 16)}
}

func (f *fakeEngine) Name() string { return "fake" }

func (f *fakeEngine) Voices(context.Context) ([]speech.Voice, error) { return nil, nil }

func (f *fakeEngine) Speak(ctx context.Context, u speech.Utterance) error {
	r := request{utterance: u, done: make(chan error, 1)}
	f.requests <- r

	if f.ignoreCancel {
		return <-r.done
	}
	select {
	case err := <-r.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *fakeEngine) next(t *testing.T) request {
	t.Helper()
	select {
	case r := <-f.requests:
		return r
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a speak request")
		return request{}
	}
}

func (f *fakeEngine) expectNone(t *testing.T) {
	t.Helper()
	select {
	case r := <-f.requests:
		t.Fatalf("unexpected speak request for %q", r.utterance.Text)
	default:
	}
}

type fixture struct {
	engine *fakeEngine
	docs   *document.Store
	prefs  *settings.Store
	ctrl   *Controller
	doc    document.Document
}

func newFixture(t *testing.T, paragraphs ...string) *fixture {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	docs := document.NewStore(storage.NewMemory(), logger)
	t.Cleanup(func() { docs.Close() })

	doc, err := docs.Add("doc", paragraphs)
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	prefs := settings.NewStore("", logger)
	engine := newFakeEngine()

	return &fixture{
		engine: engine,
		docs:   docs,
		prefs:  prefs,
		ctrl:   New(engine, docs, prefs, logger),
		doc:    doc,
	}
}

func (f *fixture) position(t *testing.T) int {
	t.Helper()
	d, ok := f.docs.Get(f.doc.ID)
	if !ok {
		t.Fatal("document vanished")
	}
	return d.CurrentParagraph
}

func TestAutoAdvanceThroughDocument(t *testing.T) {
	f := newFixture(t, "First.", "Second.", "Third.")
	f.prefs.SetAutoAdvance(true)

	if err := f.ctrl.Play(f.doc.ID); err != nil {
		t.Fatalf("Play failed: %v", err)
	}

	for i, want := range []string{"First.", "Second.", "Third."} {
		r := f.engine.next(t)
		if r.utterance.Text != want {
			t.Fatalf("request %d text = %q, want %q", i, r.utterance.Text, want)
		}
		if got := f.position(t); got != i {
			t.Errorf("stored position while speaking %d = %d", i, got)
		}
		if st := f.ctrl.Status(); st.State != Speaking || st.Paragraph != i {
			t.Errorf("status while speaking %d = %+v", i, st)
		}
		r.done <- nil
	}

	f.ctrl.Wait()
	f.engine.expectNone(t)

	if st := f.ctrl.Status(); st.State != Idle {
		t.Errorf("state after last paragraph = %v, want idle", st.State)
	}
	if got := f.position(t); got != 2 {
		t.Errorf("position after last paragraph = %d, want 2", got)
	}
}

func TestStopGatesPendingCompletion(t *testing.T) {
	f := newFixture(t, "First.", "Second.", "Third.")
	f.prefs.SetAutoAdvance(true)
	f.engine.ignoreCancel = true

	if err := f.ctrl.Play(f.doc.ID); err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	r := f.engine.next(t)

	f.ctrl.Stop()
	if st := f.ctrl.Status(); st.State != Idle {
		t.Errorf("state after Stop = %v, want idle", st.State)
	}

	// The completion for paragraph 0 still fires after stop.
	r.done <- nil
	f.ctrl.Wait()

	f.engine.expectNone(t)
	if got := f.position(t); got != 0 {
		t.Errorf("position = %d after stale completion, want 0", got)
	}
	if st := f.ctrl.Status(); st.State != Idle {
		t.Errorf("state = %v after stale completion, want idle", st.State)
	}
}

func TestStaleCompletionAfterRestart(t *testing.T) {
	f := newFixture(t, "First.", "Second.", "Third.")
	f.prefs.SetAutoAdvance(true)
	f.engine.ignoreCancel = true

	f.ctrl.Play(f.doc.ID)
	old := f.engine.next(t)
	f.ctrl.Stop()

	f.ctrl.Play(f.doc.ID)
	current := f.engine.next(t)

	// Finishing the old session must not advance the new one.
	old.done <- nil
	time.Sleep(20 * time.Millisecond)
	f.engine.expectNone(t)
	if st := f.ctrl.Status(); st.State != Speaking || st.Paragraph != 0 {
		t.Errorf("status after stale completion = %+v", st)
	}

	current.done <- nil
	next := f.engine.next(t)
	if next.utterance.Text != "Second." {
		t.Errorf("live session advanced to %q, want Second.", next.utterance.Text)
	}

	f.ctrl.Stop()
	next.done <- nil
	f.ctrl.Wait()
}

func TestNoAutoAdvance(t *testing.T) {
	f := newFixture(t, "First.", "Second.")
	f.prefs.SetAutoAdvance(false)

	f.ctrl.Play(f.doc.ID)
	f.engine.next(t).done <- nil
	f.ctrl.Wait()

	f.engine.expectNone(t)
	if st := f.ctrl.Status(); st.State != Idle {
		t.Errorf("state = %v, want idle", st.State)
	}
	if got := f.position(t); got != 0 {
		t.Errorf("position = %d, want 0", got)
	}
}

func TestPlayStartsAtStoredPosition(t *testing.T) {
	f := newFixture(t, "First.", "Second.", "Third.")
	f.docs.SetCurrentParagraph(f.doc.ID, 1)

	f.ctrl.Play(f.doc.ID)
	r := f.engine.next(t)
	if r.utterance.Text != "Second." {
		t.Errorf("started with %q, want Second.", r.utterance.Text)
	}
	f.ctrl.Close()
}

func TestSpeechErrorReturnsToIdle(t *testing.T) {
	f := newFixture(t, "First.", "Second.")

	var statuses []Status
	f.ctrl.OnChange(func(s Status) { statuses = append(statuses, s) })

	f.ctrl.Play(f.doc.ID)
	f.engine.next(t).done <- errors.New("device busy")
	f.ctrl.Wait()

	f.engine.expectNone(t)
	if st := f.ctrl.Status(); st.State != Idle {
		t.Errorf("state after error = %v, want idle", st.State)
	}
	if got := f.position(t); got != 0 {
		t.Errorf("position after error = %d, want 0", got)
	}
	if n := len(statuses); n != 2 || statuses[0].State != Speaking || statuses[1].State != Idle {
		t.Errorf("notifications = %+v, want speaking then idle", statuses)
	}
}

func TestNavigationStopsPlayback(t *testing.T) {
	f := newFixture(t, "First.", "Second.", "Third.")

	f.ctrl.Play(f.doc.ID)
	f.engine.next(t)

	if err := f.ctrl.Next(f.doc.ID); err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	f.ctrl.Wait()

	if st := f.ctrl.Status(); st.State != Idle || st.Paragraph != 1 {
		t.Errorf("status after Next = %+v, want idle at 1", st)
	}
	if got := f.position(t); got != 1 {
		t.Errorf("position after Next = %d, want 1", got)
	}
	f.engine.expectNone(t)
}

func TestNavigationBounds(t *testing.T) {
	f := newFixture(t, "First.", "Second.")

	if err := f.ctrl.Previous(f.doc.ID); err != nil {
		t.Fatalf("Previous at start failed: %v", err)
	}
	if got := f.position(t); got != 0 {
		t.Errorf("Previous at start moved to %d", got)
	}

	f.ctrl.Next(f.doc.ID)
	f.ctrl.Next(f.doc.ID)
	if got := f.position(t); got != 1 {
		t.Errorf("Next past end moved to %d, want 1", got)
	}

	f.ctrl.Previous(f.doc.ID)
	if got := f.position(t); got != 0 {
		t.Errorf("Previous moved to %d, want 0", got)
	}
}

func TestJumpTo(t *testing.T) {
	f := newFixture(t, "First.", "Second.", "Third.")

	if err := f.ctrl.JumpTo(f.doc.ID, 2); err != nil {
		t.Fatalf("JumpTo failed: %v", err)
	}
	if got := f.position(t); got != 2 {
		t.Errorf("position = %d, want 2", got)
	}
	if err := f.ctrl.JumpTo(f.doc.ID, 5); !errors.Is(err, document.ErrParagraphOutOfRange) {
		t.Errorf("JumpTo(5) = %v, want ErrParagraphOutOfRange", err)
	}
	if err := f.ctrl.JumpTo("missing", 0); !errors.Is(err, ErrDocumentNotFound) {
		t.Errorf("JumpTo(missing) = %v, want ErrDocumentNotFound", err)
	}
}

func TestToggle(t *testing.T) {
	f := newFixture(t, "First.", "Second.")

	f.ctrl.Toggle(f.doc.ID)
	f.engine.next(t)
	if !f.ctrl.Speaking(f.doc.ID) {
		t.Fatal("Toggle from idle should start speaking")
	}

	f.ctrl.Toggle(f.doc.ID)
	f.ctrl.Wait()
	if f.ctrl.Speaking(f.doc.ID) {
		t.Error("Toggle while speaking should stop")
	}
}

func TestPlayErrors(t *testing.T) {
	f := newFixture(t, "First.")

	if err := f.ctrl.Play("missing"); !errors.Is(err, ErrDocumentNotFound) {
		t.Errorf("Play(missing) = %v, want ErrDocumentNotFound", err)
	}

	empty, _ := f.docs.Add("empty", nil)
	if err := f.ctrl.Play(empty.ID); !errors.Is(err, ErrNoParagraphs) {
		t.Errorf("Play(empty) = %v, want ErrNoParagraphs", err)
	}
	if st := f.ctrl.Status(); st.State != Idle {
		t.Errorf("state after failed Play = %v", st.State)
	}
}

func TestUtteranceUsesSettings(t *testing.T) {
	f := newFixture(t, "First.")
	f.prefs.SetSelectedVoice("en-gb")
	f.prefs.SetRate(210)
	f.prefs.SetPitch(60)

	f.ctrl.Play(f.doc.ID)
	r := f.engine.next(t)
	want := speech.Utterance{Text: "First.", Voice: "en-gb", Rate: 210, Pitch: 60}
	if r.utterance != want {
		t.Errorf("utterance = %+v, want %+v", r.utterance, want)
	}
	f.ctrl.Close()
}

func TestStateString(t *testing.T) {
	if Idle.String() != "idle" || Speaking.String() != "speaking" {
		t.Errorf("State strings = %q, %q", Idle, Speaking)
	}
}
