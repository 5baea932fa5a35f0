package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"burningtown/internal/store"
)

// Handler serves the status endpoints of the bot process
type Handler struct {
	store    *store.MemoryStore
	username string
	ready    func() bool
}

// New creates a new handler. username is the bot's chat username and may
// be empty, which disables the invite code.
func New(store *store.MemoryStore, username string) *Handler {
	return &Handler{
		store:    store,
		username: username,
	}
}

// SetReadyCheck installs the probe used by Ready, typically "is the chat
// transport connected"
func (h *Handler) SetReadyCheck(check func() bool) {
	h.ready = check
}

// Live always answers OK while the process is up
func (h *Handler) Live(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// Ready reports whether the bot can serve games
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("Store not ready"))
		return
	}
	if h.ready != nil && !h.ready() {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("Transport not ready"))
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// Games lists the public state of every game. Roles are never included.
func (h *Handler) Games(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(h.store.Snapshots()); err != nil {
		log.Printf("❌ Failed to encode game snapshots: %v", err)
	}
}
