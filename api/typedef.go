package api

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"influencemap/engine"
	"influencemap/typedef"
)

// WebSocket message types
type MessageType string

const (
	// Outgoing message types (server to client)
	MessageTypeFrame MessageType = "frame"
	MessageTypeError MessageType = "error"
	MessageTypeAck   MessageType = "ack"
	MessageTypePing  MessageType = "ping"

	// Query message types
	MessageTypeGetRegions     MessageType = "get_regions"
	MessageTypeGetTerritories MessageType = "get_territories"
	MessageTypeGetInfluence   MessageType = "get_influence"
	MessageTypeQueryAt        MessageType = "query_at"

	// Mutating message types
	MessageTypeApplyInfluence MessageType = "apply_influence"
	MessageTypeSetZoom        MessageType = "set_zoom"
	MessageTypeZoomAt         MessageType = "zoom_at"
	MessageTypePan            MessageType = "pan"
)

// Base WebSocket message structure
type WSMessage struct {
	Type      MessageType `json:"type"`
	RequestID string      `json:"request_id,omitempty"` // For correlating responses
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// Outgoing message data structures

// FrameData is broadcast after every applied mutation.
type FrameData struct {
	GlobalInfluence float64                `json:"global_influence"`
	Zoom            float64                `json:"zoom"`
	PanX            float64                `json:"pan_x"`
	PanY            float64                `json:"pan_y"`
	Selected        string                 `json:"selected,omitempty"`
	Changed         *typedef.TerritoryView `json:"changed,omitempty"`
}

type InfluenceData struct {
	Global      float64            `json:"global"`
	Territories map[string]float64 `json:"territories"`
}

type QueryResult struct {
	Found  bool                `json:"found"`
	Region *typedef.RegionView `json:"region,omitempty"`
}

type StatusData struct {
	Clients      int     `json:"clients"`
	Territories  int     `json:"territories"`
	MapWidth     int     `json:"map_width"`
	MapHeight    int     `json:"map_height"`
	RSSBytes     uint64  `json:"rss_bytes"`
	CPUPercent   float64 `json:"cpu_percent"`
	SystemMemory float64 `json:"system_memory_used_percent"`
	Uptime       string  `json:"uptime"`
}

// Incoming message data structures

type QueryAtData struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type ApplyInfluenceData struct {
	Territory string  `json:"territory"`
	Delta     float64 `json:"delta"`
}

type SetZoomData struct {
	Zoom float64 `json:"zoom"`
}

type ZoomAtData struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Factor float64 `json:"factor"`
}

type PanData struct {
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

// API serves the HTTP routes and the WebSocket hub for one map.
type API struct {
	d          engine.Dispatcher
	clients    map[*WSClient]bool
	broadcast  chan WSMessage
	register   chan *WSClient
	unregister chan *WSClient
	clientsReq chan chan int
	quit       chan struct{}
	handlers   map[MessageType]MessageHandler
	limitMu    sync.RWMutex
	limit      rate.Limit
	burst      int
	started    time.Time
	server     *http.Server
}

// WebSocket client representation
type WSClient struct {
	conn    WSConnection
	send    chan WSMessage
	api     *API
	id      string
	limiter *rate.Limiter
}

// Interface for WebSocket connection (for easier testing)
type WSConnection interface {
	ReadJSON(v interface{}) error
	WriteJSON(v interface{}) error
	Close() error
}

// Message handler function type
type MessageHandler func(*WSClient, WSMessage) error
