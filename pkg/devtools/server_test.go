package devtools

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/statekit-dev/statekit/pkg/state"
)

type appState struct {
	Count   int    `json:"count"`
	Payload string `json:"payload,omitempty"`
}

func newTestServer(t *testing.T) (*Server, *state.Store[appState], *httptest.Server) {
	t.Helper()
	store := state.New(appState{Count: 1}, state.WithName[appState]("app"))
	srv := NewServer()
	if err := Attach(srv, "app", store); err != nil {
		t.Fatalf("Attach() error: %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, store, ts
}

func getJSON(t *testing.T, url string, into any) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s error: %v", url, err)
	}
	defer resp.Body.Close()
	if into != nil && resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(into); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp
}

func TestServerListsStores(t *testing.T) {
	_, _, ts := newTestServer(t)

	var body struct {
		Stores []string `json:"stores"`
	}
	resp := getJSON(t, ts.URL+"/stores", &body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if len(body.Stores) != 1 || body.Stores[0] != "app" {
		t.Errorf("stores = %v, want [app]", body.Stores)
	}
}

func TestServerSnapshot(t *testing.T) {
	_, store, ts := newTestServer(t)
	store.Update(func(s *appState) { s.Count = 5 })

	var frame struct {
		Store string   `json:"store"`
		State appState `json:"state"`
	}
	resp := getJSON(t, ts.URL+"/stores/app", &frame)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if frame.Store != "app" || frame.State.Count != 5 {
		t.Errorf("snapshot = %+v", frame)
	}
}

func TestServerUnknownStore(t *testing.T) {
	_, _, ts := newTestServer(t)

	if resp := getJSON(t, ts.URL+"/stores/nope", nil); resp.StatusCode != http.StatusNotFound {
		t.Errorf("snapshot status = %d, want 404", resp.StatusCode)
	}
}

func TestAttachDuplicateName(t *testing.T) {
	srv, store, _ := newTestServer(t)
	if err := Attach(srv, "app", store); err == nil {
		t.Error("expected duplicate attach to fail")
	}
}

func TestDetachRemovesStore(t *testing.T) {
	srv, _, ts := newTestServer(t)
	srv.Detach("app")
	srv.Detach("app") // unknown name is a no-op

	if resp := getJSON(t, ts.URL+"/stores/app", nil); resp.StatusCode != http.StatusNotFound {
		t.Errorf("snapshot status after detach = %d, want 404", resp.StatusCode)
	}
}

func TestLiveStream(t *testing.T) {
	_, store, ts := newTestServer(t)

	wsURL := strings.Replace(ts.URL, "http://", "ws://", 1) + "/stores/app/live"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("websocket dial error: %v", err)
	}
	defer conn.Close()

	readFrame := func() StateFrame {
		t.Helper()
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var frame struct {
			Store   string   `json:"store"`
			Initial bool     `json:"initial"`
			State   appState `json:"state"`
		}
		if err := conn.ReadJSON(&frame); err != nil {
			t.Fatalf("read frame: %v", err)
		}
		return StateFrame{Store: frame.Store, Initial: frame.Initial, State: frame.State}
	}

	first := readFrame()
	if !first.Initial {
		t.Error("first frame should carry the initial snapshot")
	}
	if got := first.State.(appState); got.Count != 1 {
		t.Errorf("initial frame state = %+v", got)
	}

	store.Update(func(s *appState) { s.Count = 2 })

	second := readFrame()
	if second.Initial {
		t.Error("delta frame marked initial")
	}
	if got := second.State.(appState); got.Count != 2 {
		t.Errorf("delta frame state = %+v", got)
	}
}

func TestLiveStreamStalledClientDoesNotBlockUpdates(t *testing.T) {
	_, store, ts := newTestServer(t)

	// Connect but never read, so the client's buffers fill and every
	// relay write to it eventually stalls.
	wsURL := strings.Replace(ts.URL, "http://", "ws://", 1) + "/stores/app/live"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("websocket dial error: %v", err)
	}
	defer conn.Close()

	payload := strings.Repeat("x", 1<<20)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 64; i++ {
			n := i
			store.Update(func(s *appState) {
				s.Count = n
				s.Payload = payload
			})
		}
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("store updates stalled behind a live-stream client that never reads")
	}

	store.Update(func(s *appState) { s.Count = 1000; s.Payload = "" })
	if got := store.Read().Count; got != 1000 {
		t.Errorf("Count after stalled client = %d, want 1000", got)
	}
}
