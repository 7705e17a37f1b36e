package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/wallpaperio/wallpaperio/pkg/wallpaper"
	"github.com/wallpaperio/wallpaperio/util/log"
)

// Controls is the part of the wallpaper controller exposed over HTTP.
type Controls interface {
	Fetch()
	RandomPhoto()
	Dislike()
	Current() string
}

// Catalog is the read-only view of the catalog exposed over HTTP.
type Catalog interface {
	Root() string
	List() ([]wallpaper.CatalogEntry, error)
}

// Server represents the local REST/WebSocket control server.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	upgrader   websocket.Upgrader
	controls   Controls
	catalog    Catalog

	// WebSocket management
	clients   map[*client]bool
	clientsMu sync.Mutex
}

const (
	// writeWait bounds a single websocket write.
	writeWait = 5 * time.Second
	// sendBuffer is the number of events queued per client before it is dropped.
	sendBuffer = 16
)

// client is one websocket connection with its outgoing event queue.
type client struct {
	conn *websocket.Conn
	send chan WallpaperChanged
}

// NewServer creates a new API server.
func NewServer(controls Controls, catalog Catalog) *Server {
	s := &Server{
		router: chi.NewRouter(),
		upgrader: websocket.Upgrader{
			// Only pages served from the loopback interface may connect.
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || isLoopbackOrigin(origin)
			},
		},
		controls: controls,
		catalog:  catalog,
		clients:  make(map[*client]bool),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.NoCache)

	s.router.Get("/health", s.handleHealth)
	s.router.Get("/ws", s.handleWebSocket)

	s.router.Route("/wallpaper", func(r chi.Router) {
		r.Get("/current", s.handleCurrent)
		r.Post("/fetch", s.handleCommand(s.controls.Fetch))
		r.Post("/random", s.handleCommand(s.controls.RandomPhoto))
		r.Post("/dislike", s.handleCommand(s.controls.Dislike))
	})

	s.router.Route("/catalog", func(r chi.Router) {
		r.Get("/", s.handleCatalogListing)
		r.Get("/{name}", s.handleCatalogAsset)
	})
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the server on addr. It blocks until the server stops.
func (s *Server) Start(addr string) error {
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Printf("Control API listening on %s", addr)
	return s.httpServer.ListenAndServe()
}

// Stop stops the server and disconnects WebSocket clients.
func (s *Server) Stop(ctx context.Context) error {
	s.clientsMu.Lock()
	for c := range s.clients {
		s.removeLocked(c)
	}
	s.clientsMu.Unlock()

	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// WallpaperChanged is the event sent to WebSocket clients after every apply.
type WallpaperChanged struct {
	Type string `json:"type"`
	Path string `json:"path"`
}

// BroadcastWallpaper queues a wallpaper_changed event for all connected
// clients. It never blocks: a client whose queue is full is disconnected.
func (s *Server) BroadcastWallpaper(path string) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()

	msg := WallpaperChanged{Type: "wallpaper_changed", Path: path}
	for c := range s.clients {
		select {
		case c.send <- msg:
		default:
			log.Printf("Dropping websocket client %s: not reading events", c.conn.RemoteAddr())
			s.removeLocked(c)
		}
	}
}

// register adds a connection and starts its writer.
func (s *Server) register(conn *websocket.Conn) *client {
	c := &client{conn: conn, send: make(chan WallpaperChanged, sendBuffer)}
	s.clientsMu.Lock()
	s.clients[c] = true
	s.clientsMu.Unlock()
	go c.writeLoop()
	return c
}

// unregister removes a client if it is still connected.
func (s *Server) unregister(c *client) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	if s.clients[c] {
		s.removeLocked(c)
	}
}

// removeLocked must be called with clientsMu held.
func (s *Server) removeLocked(c *client) {
	delete(s.clients, c)
	close(c.send)
	c.conn.Close()
}

// writeLoop is the only writer of the connection.
func (c *client) writeLoop() {
	for msg := range c.send {
		if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
			return
		}
		if err := c.conn.WriteJSON(msg); err != nil {
			log.Printf("Failed to broadcast to client: %v", err)
			c.conn.Close()
			return
		}
	}
}

// ClientCount returns the number of connected WebSocket clients.
func (s *Server) ClientCount() int {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	return len(s.clients)
}
