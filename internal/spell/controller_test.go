package spell

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dshills/spellstorm/internal/cache"
)

type ctrlFixture struct {
	*schedFixture
	ctrl      *Controller
	menuClear int
}

func newCtrlFixture(t *testing.T, text string, enabled bool) *ctrlFixture {
	t.Helper()
	f := &ctrlFixture{schedFixture: newSchedFixture(t, text, enabled)}
	service := f.sched.service
	f.ctrl = NewController(f.client, service, f.sched,
		WithMenuClearHook(func() { f.menuClear++ }),
		WithVerification(2, time.Millisecond),
	)
	return f
}

func (f *ctrlFixture) service() *Service { return f.sched.service }

func drainCommits(f *schedFixture) {
	for {
		select {
		case <-f.commits:
		default:
			return
		}
	}
}

func TestControllerDisable(t *testing.T) {
	f := newCtrlFixture(t, "helllo ", true)
	f.client.suggestions["helllo"] = []string{"hello"}
	ctx := context.Background()

	f.sched.Start()
	f.awaitCommit(t)
	f.service().CheckWord(ctx, "en-US", "helllo")
	gen := f.sched.Generation()

	f.ctrl.SetEnabled(false)

	if f.ctrl.Enabled() {
		t.Error("still enabled")
	}
	if f.sched.Generation() == gen {
		t.Error("disable did not bump the generation")
	}
	if f.client.cancelCalls != 1 {
		t.Errorf("CancelAll calls = %d, want 1", f.client.cancelCalls)
	}
	if v := f.service().CachedVerdict("en-US", "helllo"); v != cache.Unknown {
		t.Errorf("cached verdict survived disable: %v", v)
	}
	if f.menuClear != 1 {
		t.Errorf("menu clear hook calls = %d, want 1", f.menuClear)
	}
	st := f.sched.State()
	if len(st.Decorations) != 0 {
		t.Errorf("decorations after disable = %+v, want none", st.Decorations)
	}
}

func TestControllerEnable(t *testing.T) {
	f := newCtrlFixture(t, "helllo ", false)
	f.client.suggestions["helllo"] = []string{"hello"}

	f.ctrl.SetEnabled(true)
	if !f.ctrl.Enabled() {
		t.Fatal("not enabled")
	}

	// The dictionary load is fired in the background and a rescan is
	// requested.
	st := f.awaitCommit(t)
	if len(st.Decorations) != 1 || st.Decorations[0].Word != "helllo" {
		t.Errorf("decorations after enable = %+v", st.Decorations)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		f.client.mu.Lock()
		loads := len(f.client.loads)
		f.client.mu.Unlock()
		if loads == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("enable never loaded the dictionary")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestControllerToggle(t *testing.T) {
	f := newCtrlFixture(t, "word ", true)

	if on := f.ctrl.Toggle(); on {
		t.Error("first toggle should disable")
	}
	if on := f.ctrl.Toggle(); !on {
		t.Error("second toggle should enable")
	}
}

func TestControllerReEnableStartsFresh(t *testing.T) {
	f := newCtrlFixture(t, "word ", true)
	f.client.words["word"] = true
	ctx := context.Background()

	f.service().CheckWord(ctx, "en-US", "word")
	f.ctrl.SetEnabled(false)
	f.ctrl.SetEnabled(true)

	// After disable and re-enable the word must be a fresh miss.
	f.service().CheckWord(ctx, "en-US", "word")
	if check, _, _ := f.client.calls(); check != 2 {
		t.Errorf("check calls = %d, want 2 (cache was cleared)", check)
	}
}

func TestControllerSetLanguage(t *testing.T) {
	f := newCtrlFixture(t, "helllo ", true)
	f.client.suggestions["helllo"] = []string{"hello"}
	ctx := context.Background()

	f.sched.Start()
	f.awaitCommit(t)
	f.service().CheckWord(ctx, "en-US", "helllo")
	drainCommits(f.schedFixture)
	gen := f.sched.Generation()

	if err := f.ctrl.SetLanguage(ctx, "de-DE"); err != nil {
		t.Fatalf("SetLanguage: %v", err)
	}

	if got := f.ctrl.Language(); got != "de-DE" {
		t.Errorf("Language = %q, want de-DE", got)
	}
	if f.sched.Generation() == gen {
		t.Error("language switch did not bump the generation")
	}
	if f.client.cancelCalls != 1 {
		t.Errorf("CancelAll calls = %d, want 1", f.client.cancelCalls)
	}
	f.client.mu.Lock()
	loads := append([]string(nil), f.client.loads...)
	f.client.mu.Unlock()
	if len(loads) != 1 || loads[0] != "de-DE" {
		t.Errorf("loads = %v, want [de-DE]", loads)
	}
	// Old-language cache entries are gone.
	if v := f.service().CachedVerdict("en-US", "helllo"); v != cache.Unknown {
		t.Errorf("en-US verdict survived the switch: %v", v)
	}
	if f.menuClear != 1 {
		t.Errorf("menu clear hook calls = %d, want 1", f.menuClear)
	}

	// An empty set is committed immediately, then the rescan lands with
	// the new language.
	first := f.awaitCommit(t)
	if len(first.Decorations) != 0 {
		t.Errorf("immediate commit decorations = %+v, want none", first.Decorations)
	}
	second := f.awaitCommit(t)
	if len(second.Decorations) != 1 {
		t.Errorf("rescan decorations = %+v", second.Decorations)
	}
}

func TestControllerSetLanguageNormalizesTag(t *testing.T) {
	f := newCtrlFixture(t, "word ", false)

	if err := f.ctrl.SetLanguage(context.Background(), "en-us"); err != nil {
		t.Fatalf("SetLanguage: %v", err)
	}
	if got := f.ctrl.Language(); got != "en-US" {
		t.Errorf("Language = %q, want normalized en-US", got)
	}
}

func TestControllerSetLanguageInvalidTag(t *testing.T) {
	f := newCtrlFixture(t, "word ", true)

	err := f.ctrl.SetLanguage(context.Background(), "not a tag!")
	if err == nil {
		t.Fatal("invalid tag accepted")
	}
	if got := f.ctrl.Language(); got != "en-US" {
		t.Errorf("Language = %q after failed switch, want en-US", got)
	}
}

func TestControllerSetLanguageLoadFailure(t *testing.T) {
	f := newCtrlFixture(t, "word ", true)
	f.client.loadErr = errors.New("no such dictionary")

	err := f.ctrl.SetLanguage(context.Background(), "de-DE")
	if err == nil {
		t.Fatal("failed load reported success")
	}
	if got := f.ctrl.Language(); got != "en-US" {
		t.Errorf("Language = %q after failed load, want en-US", got)
	}
}

func TestControllerSetLanguageSuperseded(t *testing.T) {
	f := newCtrlFixture(t, "word ", true)
	f.client.loadBlock = make(chan struct{})

	done := make(chan error, 1)
	go func() {
		done <- f.ctrl.SetLanguage(context.Background(), "de-DE")
	}()

	// Let the switch reach the blocked load, then invalidate it.
	time.Sleep(10 * time.Millisecond)
	f.sched.Invalidate()
	close(f.client.loadBlock)

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("SetLanguage: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("SetLanguage never returned")
	}

	// The superseded switch must not update the language.
	if got := f.ctrl.Language(); got != "en-US" {
		t.Errorf("Language = %q, want en-US (switch was superseded)", got)
	}
}

func TestControllerVerificationOptimistic(t *testing.T) {
	f := newCtrlFixture(t, "word ", false)

	// The engine keeps reporting the old language even after a
	// successful load; once the retries are exhausted the controller
	// proceeds optimistically.
	f.client.language = "en-US"
	f.client.pinLanguage = true

	if err := f.ctrl.SetLanguage(context.Background(), "de-DE"); err != nil {
		t.Fatalf("SetLanguage: %v", err)
	}
	if got := f.ctrl.Language(); got != "de-DE" {
		t.Errorf("Language = %q, want optimistic de-DE", got)
	}
}
