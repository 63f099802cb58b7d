// Package server exposes the simulation's read-only surface to an external
// rendering/driver collaborator: JSON queries for the current grid, fire set,
// agents and diagnostics, plus a websocket pushing throttled snapshot
// updates. The server never writes into the simulation; it only watches the
// snapshot feed.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"wildfire/simulation"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	channerics "github.com/niceyeti/channerics/channels"
)

var upgrader = websocket.Upgrader{}

const (
	// Time allowed to write a message to the peer.
	writeWait = 1 * time.Second
	// Snapshots are pushed to a client at most this often.
	publishResolution = 100 * time.Millisecond
	// Time to wait before force close on connection.
	closeGracePeriod = 10 * time.Second
)

// Server watches the snapshot feed and serves the latest snapshot to clients.
type Server struct {
	addr string

	mu   sync.RWMutex
	last simulation.Snapshot
}

// NewServer begins watching the snapshot feed and returns a server ready to
// Serve. The watch goroutine exits with the context or when the feed closes.
func NewServer(
	ctx context.Context,
	addr string,
	initial simulation.Snapshot,
	snapshots <-chan simulation.Snapshot,
) *Server {
	server := &Server{
		addr: addr,
		last: initial,
	}

	go func() {
		for {
			select {
			case snap, ok := <-snapshots:
				if !ok {
					return
				}
				server.mu.Lock()
				server.last = snap
				server.mu.Unlock()
			case <-ctx.Done():
				return
			}
		}
	}()

	return server
}

// Serve blocks until the listener fails or ctx is canceled.
func (server *Server) Serve(ctx context.Context) (err error) {
	router := mux.NewRouter()
	router.HandleFunc("/api/snapshot", server.serveSnapshot).Methods(http.MethodGet)
	router.HandleFunc("/api/grid", server.serveGrid).Methods(http.MethodGet)
	router.HandleFunc("/api/agents", server.serveAgents).Methods(http.MethodGet)
	router.HandleFunc("/ws", server.serveWebsocket)

	srv := &http.Server{
		Addr:    server.addr,
		Handler: router,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), closeGracePeriod)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err = srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		err = fmt.Errorf("serve: %w", err)
		return
	}
	return nil
}

func (server *Server) snapshot() simulation.Snapshot {
	server.mu.RLock()
	defer server.mu.RUnlock()
	return server.last
}

func (server *Server) serveSnapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, server.snapshot())
}

func (server *Server) serveGrid(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, server.snapshot().Grid)
}

func (server *Server) serveAgents(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, server.snapshot().Agents)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Println("encode:", err)
	}
}

// serveWebsocket pushes snapshot updates to the client, throttled to the
// publish resolution. Each connection gets its own ticker; slow clients skip
// frames rather than backing up the simulation.
func (server *Server) serveWebsocket(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		log.Println("upgrade:", err)
		return
	}
	defer server.closeWebsocket(ws)

	lastStep, lastEpisode := -1, -1
	for range channerics.NewTicker(r.Context().Done(), publishResolution) {
		snap := server.snapshot()
		// Nothing new since the last push.
		if snap.Step == lastStep && snap.Episode == lastEpisode {
			continue
		}
		lastStep, lastEpisode = snap.Step, snap.Episode

		if err := ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
			log.Println("deadline:", err)
			return
		}
		if err := ws.WriteJSON(snap); err != nil {
			log.Println("write:", err)
			return
		}
	}
}

func (server *Server) closeWebsocket(ws *websocket.Conn) {
	_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
	_ = ws.WriteMessage(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	ws.Close()
}
