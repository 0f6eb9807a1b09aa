package api

import (
	"context"
	"encoding/json"
	"image"
	"image/color"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"influencemap/engine"
	"influencemap/gazetteer"
	"influencemap/raster"
	"influencemap/segment"
)

// lockedDispatcher serialises access to the map across handler goroutines.
type lockedDispatcher struct {
	mu sync.Mutex
	m  *engine.Map
}

func (d *lockedDispatcher) Do(fn func(*engine.Map)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fn(d.m)
}

// newTestServer builds a 4x2 map with a red territory at x < 2 and water elsewhere.
func newTestServer(t *testing.T) (*API, *httptest.Server) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 4, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 4; x++ {
			c := color.NRGBA{20, 30, 160, 255}
			if x < 2 {
				c = color.NRGBA{220, 40, 40, 255}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	// Centroid (0.5,0.5) normalises to (0.125,0.25) -> key "0.13,0.25".
	g, err := gazetteer.New([]gazetteer.Entry{{X: 0.13, Y: 0.25, Name: "Redland", Population: 4}}, 2)
	if err != nil {
		t.Fatalf("gazetteer: %v", err)
	}
	cfg := engine.DefaultConfig()
	cfg.Segment = segment.Params{Tolerance: 15, MinRegionSize: 1}
	cfg.Gazetteer = g
	m, err := engine.New(raster.FromImage(img), cfg)
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}

	a := NewAPI(&lockedDispatcher{m: m})
	srv := httptest.NewServer(a.Handler())
	t.Cleanup(func() {
		srv.Close()
		a.Shutdown(context.Background())
		m.Close()
	})
	return a, srv
}

func getJSON(t *testing.T, url string, target interface{}) int {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if target != nil {
		if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp.StatusCode
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	ack := readMessage(t, conn)
	if ack.Type != MessageTypeAck {
		t.Fatalf("first message %q, want ack", ack.Type)
	}
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) WSMessage {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg WSMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	return msg
}

// readUntil skips messages until one of type typ with the given request id arrives.
func readUntil(t *testing.T, conn *websocket.Conn, typ MessageType, requestID string) WSMessage {
	t.Helper()
	for i := 0; i < 10; i++ {
		msg := readMessage(t, conn)
		if msg.Type == typ && msg.RequestID == requestID {
			return msg
		}
	}
	t.Fatalf("no %s message for %q", typ, requestID)
	return WSMessage{}
}

func TestRESTRegionsAndTerritories(t *testing.T) {
	_, srv := newTestServer(t)

	var regions []struct {
		Name       string `json:"name"`
		PixelCount int    `json:"pixel_count"`
	}
	if code := getJSON(t, srv.URL+"/regions", &regions); code != http.StatusOK {
		t.Fatalf("status %d", code)
	}
	if len(regions) != 1 || regions[0].Name != "Redland" || regions[0].PixelCount != 4 {
		t.Fatalf("regions = %+v", regions)
	}

	var territory struct {
		Name       string  `json:"name"`
		Population float64 `json:"population"`
	}
	if code := getJSON(t, srv.URL+"/territories/Redland", &territory); code != http.StatusOK {
		t.Fatalf("status %d", code)
	}
	if territory.Population != 4 {
		t.Fatalf("territory = %+v", territory)
	}
	if code := getJSON(t, srv.URL+"/territories/Nowhere", nil); code != http.StatusNotFound {
		t.Fatalf("unknown territory status %d", code)
	}
}

func TestRESTQuery(t *testing.T) {
	_, srv := newTestServer(t)

	if code := getJSON(t, srv.URL+"/query?x=abc&y=1", nil); code != http.StatusBadRequest {
		t.Fatalf("bad x status %d", code)
	}

	// At zoom 1 the 4x2 map is stretched over 800x480; screen x < 400 is land.
	var res QueryResult
	getJSON(t, srv.URL+"/query?x=150&y=240", &res)
	if !res.Found || res.Region == nil || res.Region.Name != "Redland" {
		t.Fatalf("land query = %+v", res)
	}
	res = QueryResult{}
	getJSON(t, srv.URL+"/query?x=700&y=240", &res)
	if res.Found {
		t.Fatalf("water query = %+v", res)
	}
}

func TestRESTStatus(t *testing.T) {
	_, srv := newTestServer(t)
	var status StatusData
	if code := getJSON(t, srv.URL+"/status", &status); code != http.StatusOK {
		t.Fatalf("status %d", code)
	}
	if status.Territories != 1 || status.MapWidth != 4 || status.MapHeight != 2 {
		t.Fatalf("status = %+v", status)
	}
}

func TestWebSocketApplyInfluenceBroadcasts(t *testing.T) {
	_, srv := newTestServer(t)
	actor := dial(t, srv)
	watcher := dial(t, srv)

	err := actor.WriteJSON(WSMessage{
		Type:      MessageTypeApplyInfluence,
		RequestID: "r1",
		Data:      ApplyInfluenceData{Territory: "Redland", Delta: 25},
	})
	if err != nil {
		t.Fatalf("write: %v", err)
	}

	reply := readUntil(t, actor, MessageTypeApplyInfluence, "r1")
	data, _ := reply.Data.(map[string]interface{})
	if data["influence"] != 25.0 {
		t.Fatalf("reply = %+v", reply)
	}

	frame := readUntil(t, watcher, MessageTypeFrame, "")
	fd, _ := frame.Data.(map[string]interface{})
	if fd["global_influence"] != 25.0 {
		t.Fatalf("frame = %+v", frame)
	}

	var influence InfluenceData
	getJSON(t, srv.URL+"/influence", &influence)
	if influence.Territories["Redland"] != 25 || influence.Global != 25 {
		t.Fatalf("influence = %+v", influence)
	}
}

func TestWebSocketErrors(t *testing.T) {
	_, srv := newTestServer(t)
	conn := dial(t, srv)

	conn.WriteJSON(WSMessage{Type: "bogus", RequestID: "r1"})
	if msg := readUntil(t, conn, MessageTypeError, "r1"); !strings.Contains(msg.Error, "unknown message type") {
		t.Fatalf("error = %q", msg.Error)
	}

	conn.WriteJSON(WSMessage{
		Type:      MessageTypeApplyInfluence,
		RequestID: "r2",
		Data:      ApplyInfluenceData{Territory: "Atlantis", Delta: 5},
	})
	if msg := readUntil(t, conn, MessageTypeError, "r2"); msg.Error == "" {
		t.Fatal("expected error for unknown territory")
	}
}

func TestWebSocketViewControl(t *testing.T) {
	_, srv := newTestServer(t)
	conn := dial(t, srv)

	conn.WriteJSON(WSMessage{Type: MessageTypeSetZoom, RequestID: "z", Data: SetZoomData{Zoom: 100}})
	msg := readUntil(t, conn, MessageTypeSetZoom, "z")
	data, _ := msg.Data.(map[string]interface{})
	if data["zoom"] != 4.0 {
		t.Fatalf("zoom not clamped: %+v", data)
	}

	conn.WriteJSON(WSMessage{Type: MessageTypeZoomAt, RequestID: "bad", Data: ZoomAtData{Factor: 0}})
	readUntil(t, conn, MessageTypeError, "bad")
}

func TestWebSocketRateLimit(t *testing.T) {
	a, srv := newTestServer(t)
	a.SetRateLimit(0, 1)
	conn := dial(t, srv)

	conn.WriteJSON(WSMessage{Type: MessageTypeGetInfluence, RequestID: "first"})
	readUntil(t, conn, MessageTypeGetInfluence, "first")

	conn.WriteJSON(WSMessage{Type: MessageTypeGetInfluence, RequestID: "second"})
	if msg := readUntil(t, conn, MessageTypeError, "second"); msg.Error != ErrRateLimited.Error() {
		t.Fatalf("error = %q", msg.Error)
	}
}

func TestSetRateLimitWhileClientsConnect(t *testing.T) {
	a, srv := newTestServer(t)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			a.SetRateLimit(float64(10+i), 20+i)
		}
	}()
	for i := 0; i < 3; i++ {
		dial(t, srv)
	}
	wg.Wait()

	a.SetRateLimit(0, 1)
	conn := dial(t, srv)
	conn.WriteJSON(WSMessage{Type: MessageTypeGetInfluence, RequestID: "a"})
	readUntil(t, conn, MessageTypeGetInfluence, "a")
	conn.WriteJSON(WSMessage{Type: MessageTypeGetInfluence, RequestID: "b"})
	readUntil(t, conn, MessageTypeError, "b")
}
