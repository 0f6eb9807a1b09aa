package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"influencemap/engine"
)

var (
	ErrRateLimited = errors.New("rate limit exceeded")
	ErrUnavailable = errors.New("map is not available")
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// The API binds to loopback by default
		return true
	},
}

// NewAPI creates a new API instance serving the map behind d. The hub starts
// immediately; Shutdown stops it.
func NewAPI(d engine.Dispatcher) *API {
	api := &API{
		d:          d,
		clients:    make(map[*WSClient]bool),
		broadcast:  make(chan WSMessage, 256),
		register:   make(chan *WSClient),
		unregister: make(chan *WSClient),
		clientsReq: make(chan chan int),
		quit:       make(chan struct{}),
		handlers:   make(map[MessageType]MessageHandler),
		limit:      rate.Limit(20),
		burst:      40,
		started:    time.Now(),
	}

	api.registerHandlers()
	go api.run()

	return api
}

// SetRateLimit changes the per-client message rate for clients connecting afterwards.
func (api *API) SetRateLimit(perSecond float64, burst int) {
	api.limitMu.Lock()
	defer api.limitMu.Unlock()
	api.limit = rate.Limit(perSecond)
	api.burst = burst
}

// newLimiter returns a limiter for a new client at the current rate.
func (api *API) newLimiter() *rate.Limiter {
	api.limitMu.RLock()
	defer api.limitMu.RUnlock()
	return rate.NewLimiter(api.limit, api.burst)
}

// Start serves the API on addr until Shutdown is called.
func (api *API) Start(addr string) error {
	api.server = &http.Server{
		Addr:              addr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Printf("[API] Server starting on %s", addr)
	if err := api.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("api server failed: %w", err)
	}
	return nil
}

// Shutdown stops the HTTP server, if any, and the hub.
func (api *API) Shutdown(ctx context.Context) error {
	var err error
	if api.server != nil {
		err = api.server.Shutdown(ctx)
	}
	select {
	case <-api.quit:
	default:
		close(api.quit)
	}
	return err
}

// run handles the main WebSocket hub logic
func (api *API) run() {
	for {
		select {
		case <-api.quit:
			for client := range api.clients {
				delete(api.clients, client)
				close(client.send)
			}
			return

		case client := <-api.register:
			api.clients[client] = true

			ackMsg := WSMessage{
				Type:      MessageTypeAck,
				Data:      map[string]string{"client_id": client.id},
				Timestamp: time.Now(),
			}
			select {
			case client.send <- ackMsg:
			default:
				close(client.send)
				delete(api.clients, client)
			}

			log.Printf("[API] Client %s connected", client.id)

		case client := <-api.unregister:
			if _, ok := api.clients[client]; ok {
				delete(api.clients, client)
				close(client.send)
				log.Printf("[API] Client %s disconnected", client.id)
			}

		case reply := <-api.clientsReq:
			reply <- len(api.clients)

		case message := <-api.broadcast:
			for client := range api.clients {
				select {
				case client.send <- message:
				default:
					close(client.send)
					delete(api.clients, client)
				}
			}
		}
	}
}

// clientCount asks the hub how many clients are connected.
func (api *API) clientCount() int {
	reply := make(chan int, 1)
	select {
	case api.clientsReq <- reply:
		return <-reply
	case <-api.quit:
		return 0
	}
}

// handleWebSocket handles WebSocket connections
func (api *API) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[API] WebSocket upgrade failed: %v", err)
		return
	}

	client := &WSClient{
		conn:    conn,
		send:    make(chan WSMessage, 256),
		api:     api,
		id:      uuid.NewString(),
		limiter: api.newLimiter(),
	}

	select {
	case api.register <- client:
	case <-api.quit:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// writePump pumps messages from the hub to the websocket connection
func (c *WSClient) writePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				return
			}

			if err := c.conn.WriteJSON(message); err != nil {
				log.Printf("[API] Error writing message to client %s: %v", c.id, err)
				return
			}

		case <-ticker.C:
			if err := c.conn.WriteJSON(WSMessage{
				Type:      MessageTypePing,
				Timestamp: time.Now(),
			}); err != nil {
				return
			}
		}
	}
}

// readPump pumps messages from the websocket connection to the hub
func (c *WSClient) readPump() {
	defer func() {
		select {
		case c.api.unregister <- c:
		case <-c.api.quit:
		}
		c.conn.Close()
	}()

	for {
		var message WSMessage
		if err := c.conn.ReadJSON(&message); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[API] WebSocket error: %v", err)
			}
			return
		}

		if message.Timestamp.IsZero() {
			message.Timestamp = time.Now()
		}

		err := ErrRateLimited
		if c.limiter.Allow() {
			err = c.handleMessage(message)
		}
		if err != nil {
			if !c.reply(WSMessage{
				Type:      MessageTypeError,
				RequestID: message.RequestID,
				Error:     err.Error(),
				Timestamp: time.Now(),
			}) {
				return
			}
		}
	}
}

// handleMessage processes incoming messages from clients
func (c *WSClient) handleMessage(message WSMessage) error {
	handler, exists := c.api.handlers[message.Type]
	if !exists {
		return fmt.Errorf("unknown message type: %s", message.Type)
	}

	return handler(c, message)
}

// reply queues msg for this client only. It reports false once the client
// can no longer receive.
func (c *WSClient) reply(msg WSMessage) (ok bool) {
	defer func() {
		// send is closed by the hub when the client is dropped
		if recover() != nil {
			ok = false
		}
	}()
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// registerHandlers registers all message handlers
func (api *API) registerHandlers() {
	api.handlers[MessageTypeGetRegions] = api.handleGetRegions
	api.handlers[MessageTypeGetTerritories] = api.handleGetTerritories
	api.handlers[MessageTypeGetInfluence] = api.handleGetInfluence
	api.handlers[MessageTypeQueryAt] = api.handleQueryAt

	api.handlers[MessageTypeApplyInfluence] = api.handleApplyInfluence
	api.handlers[MessageTypeSetZoom] = api.handleSetZoom
	api.handlers[MessageTypeZoomAt] = api.handleZoomAt
	api.handlers[MessageTypePan] = api.handlePan
}

// Message handlers

func (api *API) handleGetRegions(client *WSClient, message WSMessage) error {
	return client.respond(message, api.regions())
}

func (api *API) handleGetTerritories(client *WSClient, message WSMessage) error {
	return client.respond(message, api.territories())
}

func (api *API) handleGetInfluence(client *WSClient, message WSMessage) error {
	return client.respond(message, api.influence())
}

func (api *API) handleQueryAt(client *WSClient, message WSMessage) error {
	var data QueryAtData
	if err := api.parseMessageData(message.Data, &data); err != nil {
		return err
	}
	return client.respond(message, api.queryAt(data.X, data.Y))
}

func (api *API) handleApplyInfluence(client *WSClient, message WSMessage) error {
	var data ApplyInfluenceData
	if err := api.parseMessageData(message.Data, &data); err != nil {
		return err
	}
	if data.Territory == "" {
		return fmt.Errorf("territory is required")
	}

	var (
		value float64
		err   error
		frame *FrameData
		ran   bool
	)
	api.d.Do(func(m *engine.Map) {
		ran = true
		value, err = m.ApplyInfluence(data.Territory, data.Delta)
		if err == nil {
			frame = frameOf(m)
			if v, ok := m.Territory(data.Territory); ok {
				frame.Changed = &v
			}
		}
	})
	if !ran {
		return ErrUnavailable
	}
	if err != nil {
		return err
	}

	api.Broadcast(frame)
	return client.respond(message, map[string]interface{}{
		"territory": data.Territory,
		"influence": value,
	})
}

func (api *API) handleSetZoom(client *WSClient, message WSMessage) error {
	var data SetZoomData
	if err := api.parseMessageData(message.Data, &data); err != nil {
		return err
	}
	return api.mutateView(client, message, func(m *engine.Map) { m.SetZoom(data.Zoom) })
}

func (api *API) handleZoomAt(client *WSClient, message WSMessage) error {
	var data ZoomAtData
	if err := api.parseMessageData(message.Data, &data); err != nil {
		return err
	}
	if data.Factor <= 0 {
		return fmt.Errorf("factor must be positive, got %v", data.Factor)
	}
	return api.mutateView(client, message, func(m *engine.Map) { m.OnZoomAt(data.X, data.Y, data.Factor) })
}

func (api *API) handlePan(client *WSClient, message WSMessage) error {
	var data PanData
	if err := api.parseMessageData(message.Data, &data); err != nil {
		return err
	}
	return api.mutateView(client, message, func(m *engine.Map) { m.OnPan(data.DX, data.DY) })
}

// mutateView applies fn, broadcasts the resulting frame and answers with it.
func (api *API) mutateView(client *WSClient, message WSMessage, fn func(*engine.Map)) error {
	var frame *FrameData
	api.d.Do(func(m *engine.Map) {
		fn(m)
		frame = frameOf(m)
	})
	if frame == nil {
		return ErrUnavailable
	}
	api.Broadcast(frame)
	return client.respond(message, frame)
}

// Broadcast sends a frame to every connected client. It drops the frame when
// the hub is saturated.
func (api *API) Broadcast(frame *FrameData) {
	msg := WSMessage{Type: MessageTypeFrame, Data: frame, Timestamp: time.Now()}
	select {
	case api.broadcast <- msg:
	default:
	}
}

func (c *WSClient) respond(request WSMessage, data interface{}) error {
	c.reply(WSMessage{
		Type:      request.Type,
		RequestID: request.RequestID,
		Data:      data,
		Timestamp: time.Now(),
	})
	return nil
}

func frameOf(m *engine.Map) *FrameData {
	px, py := m.Viewport().Pan()
	f := &FrameData{
		GlobalInfluence: m.GlobalInfluence(),
		Zoom:            m.Viewport().Zoom(),
		PanX:            px,
		PanY:            py,
	}
	if t := m.Selected(); t != nil {
		f.Selected = t.Name
	}
	return f
}

// parseMessageData parses message data into the specified struct
func (api *API) parseMessageData(data interface{}, target interface{}) error {
	// Convert to JSON and back to ensure proper type conversion
	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}

	if err := json.Unmarshal(jsonData, target); err != nil {
		return fmt.Errorf("failed to unmarshal data: %w", err)
	}

	return nil
}
