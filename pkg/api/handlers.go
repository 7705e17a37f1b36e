package api

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/wallpaperio/wallpaperio/config"
	"github.com/wallpaperio/wallpaperio/util/log"
)

// writeJSON encodes v as the response body.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "running",
		"version": config.AppVersion,
	})
}

// handleCurrent returns the path of the current wallpaper.
func (s *Server) handleCurrent(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"path": s.controls.Current()})
}

// handleCommand queues a controller command. The command runs asynchronously.
func (s *Server) handleCommand(cmd func()) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cmd()
		writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
	}
}

// handleWebSocket upgrades the connection to WebSocket.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}
	c := s.register(conn)
	defer s.unregister(c)

	for {
		// Clients only send keepalives.
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// isLoopbackOrigin reports whether origin points at this machine.
func isLoopbackOrigin(origin string) bool {
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	switch u.Hostname() {
	case "localhost", "127.0.0.1", "::1":
		return true
	}
	return false
}
