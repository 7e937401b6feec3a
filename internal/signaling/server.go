// Package signaling accepts, on the relay side, the WebSocket connections
// the transport package performs its SDP/ICE handshake over; the client
// side dials its own connection in transport. It knows nothing
// about the handshake's message shape — that belongs to transport, which
// is the only thing that ever speaks it.
package signaling

import (
	"fmt"
	"net"
	"net/http"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Server is the relay-side WebSocket server used for signaling. Unlike a
// single-peer tunnel, a relay accepts any number of concurrent clients —
// each successful upgrade is handed off on connCh for the caller to spin up
// its own peer connection and signaling exchange.
type Server struct {
	pin      string
	listener net.Listener
	connCh   chan *websocket.Conn
}

// NewServer creates a new signaling server. If pin is non-empty, connecting
// clients must supply it as a "pin" query parameter.
func NewServer(pin string) *Server {
	return &Server{
		pin:    pin,
		connCh: make(chan *websocket.Conn, 16),
	}
}

// Start begins listening on addr (host:port; an empty host or port 0
// binds to all interfaces / a random port respectively) and returns the
// bound port number.
func (s *Server) Start(addr string) (int, error) {
	if addr == "" {
		addr = ":0"
	}
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return 0, fmt.Errorf("failed to start WS server: %w", err)
	}
	s.listener = listener
	port := listener.Addr().(*net.TCPAddr).Port

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)

	go func() {
		_ = http.Serve(listener, mux)
	}()

	return port, nil
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	if s.pin != "" && r.URL.Query().Get("pin") != s.pin {
		http.Error(w, "Invalid PIN", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	// connCh is sized for a healthy backlog; a relay that can't keep up with
	// its own Accept loop is already in trouble, so we drop rather than block
	// the HTTP handler goroutine indefinitely.
	select {
	case s.connCh <- conn:
	default:
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "signaling backlog full"))
		conn.Close()
	}
}

// Accept returns the channel of newly upgraded client connections. The
// caller should range over it, spawning one peer connection + exchange per
// value, for as long as the relay is willing to accept new sessions.
func (s *Server) Accept() <-chan *websocket.Conn {
	return s.connCh
}

// Close shuts down the listener, preventing new connections.
func (s *Server) Close() {
	if s.listener != nil {
		s.listener.Close()
	}
}
