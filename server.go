package main

import (
	"encoding/json"
	"net"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gorilla/websocket"
	"github.com/matryer/way"
	log "github.com/sirupsen/logrus"
)

const (
	defaultRunsLimit = 10
	maxRunsLimit     = 100
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true // Non-browser clients don't send Origin
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return u.Host == r.Host
	},
}

func extractIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// Server is the relay's HTTP surface
type Server struct {
	router *way.Router
	hub    *Hub
	// inviteBase is the link encoded in room QR codes
	inviteBase string
}

// NewServer wires the relay routes
func NewServer(hub *Hub, inviteBase string) *Server {
	s := &Server{hub: hub, inviteBase: inviteBase}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router = way.NewRouter()
	s.router.HandleFunc("GET", "/ws", s.handleWS)
	s.router.HandleFunc("GET", "/rooms", s.handleRooms)
	s.router.HandleFunc("GET", "/rooms/:room/qr", s.handleQR)
	s.router.HandleFunc("GET", "/runs", s.handleRuns)
	s.router.HandleFunc("GET", "/health", s.handleHealth)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	ip := extractIP(r)
	if !s.hub.CanAccept(ip) {
		http.Error(w, "too many connections", http.StatusServiceUnavailable)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("upgrade error: %v", err)
		return
	}

	s.hub.TrackConnect(ip)

	client := NewClient(s.hub, conn, ip)
	s.hub.register <- client

	go client.WritePump()
	go client.ReadPump()
}

func (s *Server) handleRooms(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.hub.rooms.ListRooms())
}

func (s *Server) handleQR(w http.ResponseWriter, r *http.Request) {
	room := way.Param(r.Context(), "room")
	if !s.hub.rooms.Exists(room) {
		http.Error(w, ErrRoomNotFound.Error(), http.StatusNotFound)
		return
	}
	png, err := InviteQR(s.inviteBase, room)
	if err != nil {
		log.WithError(err).WithField("room", room).Error("render invite")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	w.Write(png)
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if s.hub.db == nil {
		writeJSON(w, http.StatusOK, []RunRow{})
		return
	}
	limit := defaultRunsLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			http.Error(w, "bad limit", http.StatusBadRequest)
			return
		}
		limit = min(n, maxRunsLimit)
	}
	runs, err := s.hub.db.TopRuns(limit)
	if err != nil {
		log.WithError(err).Error("top runs")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

// HealthInfo is the /health payload
type HealthInfo struct {
	Status string `json:"status"`
	Peers  int    `json:"peers"`
	Rooms  int    `json:"rooms"`
	Runs   int    `json:"runs"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	peers, rooms, runs := s.hub.recorder.Live()
	writeJSON(w, http.StatusOK, HealthInfo{Status: "ok", Peers: peers, Rooms: rooms, Runs: runs})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Debug("write response")
	}
}
