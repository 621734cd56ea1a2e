package source

import (
	"bufio"
	"encoding/json"
	"log"
	"net"
	"os"
	"sync"
	"time"
)

// EventServer receives browser events over a unix socket. The browser
// extension's native bridge connects and writes one JSON object per
// line; the server can broadcast status updates (timer, user state)
// back to every connected client.
type EventServer struct {
	path     string
	sink     Sink
	listener net.Listener
	clients  map[net.Conn]bool
	mu       sync.RWMutex
	done     chan struct{}
}

// browserEvent is one line from a connected client.
type browserEvent struct {
	Type string `json:"type"`
}

// NewEventServer creates a new unix socket event server.
func NewEventServer(path string, sink Sink) *EventServer {
	return &EventServer{
		path:    path,
		sink:    sink,
		clients: make(map[net.Conn]bool),
		done:    make(chan struct{}),
	}
}

// Start begins listening for connections.
func (s *EventServer) Start() error {
	// Remove existing socket file
	os.Remove(s.path)

	listener, err := net.Listen("unix", s.path)
	if err != nil {
		return err
	}
	s.listener = listener

	// Set permissions so only the user can connect
	os.Chmod(s.path, 0700)

	go s.acceptLoop()
	return nil
}

// Stop shuts down the server.
func (s *EventServer) Stop() {
	close(s.done)
	if s.listener != nil {
		s.listener.Close()
	}

	s.mu.Lock()
	for conn := range s.clients {
		conn.Close()
	}
	s.clients = make(map[net.Conn]bool)
	s.mu.Unlock()

	os.Remove(s.path)
}

// Broadcast sends a message to all connected clients.
func (s *EventServer) Broadcast(msg any) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	data = append(data, '\n')

	s.mu.RLock()
	defer s.mu.RUnlock()

	for conn := range s.clients {
		conn.Write(data)
	}
}

// ClientCount returns the number of connected clients.
func (s *EventServer) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

func (s *EventServer) acceptLoop() {
	for {
		select {
		case <-s.done:
			return
		default:
		}

		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.done:
				return
			default:
				log.Printf("[socket] Accept error: %v", err)
				continue
			}
		}

		s.mu.Lock()
		s.clients[conn] = true
		s.mu.Unlock()

		log.Printf("[socket] Client connected (%d total)", s.ClientCount())

		go s.handleClient(conn)
	}
}

func (s *EventServer) handleClient(conn net.Conn) {
	defer func() {
		s.mu.Lock()
		delete(s.clients, conn)
		s.mu.Unlock()
		conn.Close()
		log.Printf("[socket] Client disconnected (%d total)", s.ClientCount())
	}()

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		var ev browserEvent
		if err := json.Unmarshal(scanner.Bytes(), &ev); err != nil {
			continue
		}
		s.dispatch(ev)
	}
}

// dispatch routes one browser event into the sink. Unknown types are
// logged and dropped so newer extension versions degrade gracefully.
func (s *EventServer) dispatch(ev browserEvent) {
	now := time.Now()
	switch ev.Type {
	case "activity", "mouse_activity":
		s.sink.OnMouseActivity(now)
	case "keyboard_activity":
		s.sink.OnKeyboardActivity(now)
	case "tab_hidden":
		s.sink.OnTabHidden(now)
	case "window_blur":
		s.sink.OnWindowBlur(now)
	case "fullscreen_exit":
		s.sink.OnFullscreenExit(now)
	case "fullscreen_enter":
		s.sink.OnFullscreenEnter()
	case "pause":
		s.sink.Pause()
	case "resume":
		s.sink.Resume()
	case "tab_visible", "window_focus":
		// Return of attention needs no action; the next input event
		// flips the state back to focused.
	default:
		log.Printf("[socket] Unknown event type: %s", ev.Type)
	}
}
