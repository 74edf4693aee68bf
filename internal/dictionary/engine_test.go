package dictionary

import (
	"errors"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeChecker is a scriptable Checker for engine and client tests.
type fakeChecker struct {
	language    string
	words       map[string]bool
	suggestions map[string][]string
	loadErr     error
	panicOn     string
	block       chan struct{}
}

func (c *fakeChecker) Load(language string, _ DictionaryFiles) error {
	if c.loadErr != nil {
		return c.loadErr
	}
	c.language = language
	return nil
}

func (c *fakeChecker) Language() string { return c.language }

func (c *fakeChecker) Check(word string) bool {
	if c.block != nil {
		<-c.block
	}
	if c.panicOn != "" && word == c.panicOn {
		panic("checker exploded")
	}
	return c.words[word]
}

func (c *fakeChecker) Suggest(word string) []string { return c.suggestions[word] }

func testProvider() StaticProvider {
	return StaticProvider{
		"en-US": {Words: []byte("hello\nworld\n")},
		"de-DE": {Words: []byte("hallo\nwelt\n")},
	}
}

func awaitResponse(t *testing.T, e *Engine) Response {
	t.Helper()
	select {
	case resp := <-e.Responses():
		return resp
	case <-time.After(2 * time.Second):
		t.Fatal("no engine response")
		return Response{}
	}
}

func TestEngineRoundTrips(t *testing.T) {
	checker := &fakeChecker{
		words:       map[string]bool{"hello": true},
		suggestions: map[string][]string{"helllo": {"hello"}},
	}
	e := NewEngine(checker, testProvider())
	defer e.Stop()

	if err := e.Send(Request{Kind: KindLoadDictionary, ID: "1", Language: "en-US"}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	resp := awaitResponse(t, e)
	if resp.ID != "1" || resp.Status != StatusSuccess || resp.Language != "en-US" {
		t.Fatalf("load response = %+v", resp)
	}

	if err := e.Send(Request{Kind: KindCheckWord, ID: "2", Word: "hello"}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	resp = awaitResponse(t, e)
	if resp.ID != "2" || !resp.Correct {
		t.Errorf("check response = %+v", resp)
	}

	if err := e.Send(Request{Kind: KindCheckWords, ID: "3", Words: []string{"hello", "nope"}}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	resp = awaitResponse(t, e)
	if !resp.Results["hello"] || resp.Results["nope"] {
		t.Errorf("batch response = %+v", resp)
	}

	if err := e.Send(Request{Kind: KindGetSuggestions, ID: "4", Word: "helllo"}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	resp = awaitResponse(t, e)
	if len(resp.Suggestions) != 1 || resp.Suggestions[0] != "hello" {
		t.Errorf("suggest response = %+v", resp)
	}

	if err := e.Send(Request{Kind: KindGetCurrentLanguage, ID: "5"}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	resp = awaitResponse(t, e)
	if resp.Language != "en-US" {
		t.Errorf("language response = %+v", resp)
	}
}

func TestEngineCheckBeforeLoad(t *testing.T) {
	e := NewEngine(&fakeChecker{}, testProvider())
	defer e.Stop()

	if err := e.Send(Request{Kind: KindCheckWord, ID: "1", Word: "hello"}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	resp := awaitResponse(t, e)
	if resp.Status != StatusError {
		t.Errorf("response = %+v, want error status", resp)
	}
}

func TestEngineLoadFailure(t *testing.T) {
	e := NewEngine(&fakeChecker{}, testProvider())
	defer e.Stop()

	if err := e.Send(Request{Kind: KindLoadDictionary, ID: "1", Language: "xx-XX"}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	resp := awaitResponse(t, e)
	if resp.Status != StatusError || resp.Err == "" {
		t.Errorf("response = %+v, want provider error", resp)
	}
}

func TestEnginePanicIsFatal(t *testing.T) {
	e := NewEngine(&fakeChecker{language: "en-US", panicOn: "boom"}, testProvider())

	if err := e.Send(Request{Kind: KindCheckWord, ID: "1", Word: "boom"}); err != nil {
		t.Fatalf("Send: %v", err)
	}

	select {
	case <-e.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("engine did not exit after panic")
	}
	if e.Err() == nil {
		t.Error("Err = nil after panic")
	}
	if err := e.Send(Request{Kind: KindCheckWord, ID: "2", Word: "hello"}); !errors.Is(err, ErrWorkerCrash) {
		t.Errorf("Send after crash = %v, want ErrWorkerCrash", err)
	}
}

func TestEngineStopIsClean(t *testing.T) {
	e := NewEngine(&fakeChecker{}, testProvider())
	e.Stop()

	select {
	case <-e.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("engine did not exit after Stop")
	}
	if e.Err() != nil {
		t.Errorf("Err after clean stop = %v", e.Err())
	}
	if err := e.Send(Request{Kind: KindCheckWord, ID: "1", Word: "hello"}); !errors.Is(err, ErrNotReady) {
		t.Errorf("Send after stop = %v, want ErrNotReady", err)
	}
}
