// Headless observer for a running simulation: a websocket feed of engine
// snapshots plus Prometheus gauges. The engine is not thread-safe, so every
// touch goes through the server's mutex; the server is the single caller the
// engine's concurrency contract asks for.

package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/sim-os/sim-os/sim"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins for development
		return true
	},
}

// ClientMessage is a control message from an observer.
// Type is one of: start, pause, reset, step.
type ClientMessage struct {
	Type string `json:"type"`
}

// ServerMessage wraps a snapshot pushed to observers.
type ServerMessage struct {
	Type     string    `json:"type"`
	Running  *bool     `json:"running,omitempty"`
	Snapshot *Snapshot `json:"snapshot,omitempty"`
}

// Snapshot is one consistent view of the engine between steps.
type Snapshot struct {
	Timer             uint64         `json:"timer"`
	Policy            string         `json:"policy"`
	Complete          bool           `json:"complete"`
	FinishedCount     int            `json:"finishedCount"`
	Throughput        float64        `json:"throughput"`
	AvgWaitingTime    float64        `json:"avgWaitingTime"`
	AvgTurnaroundTime float64        `json:"avgTurnaroundTime"`
	AvgCPUUsage       float64        `json:"avgCpuUsage"`
	Cores             []CoreSnapshot `json:"cores"`
}

// CoreSnapshot is one core's pipeline depths and running pid.
type CoreSnapshot struct {
	Arrivals   int     `json:"arrivals"`
	Ready      int     `json:"ready"`
	Waiting    int     `json:"waiting"`
	RunningPID *uint64 `json:"runningPid,omitempty"`
	CPUUsage   float64 `json:"cpuUsage"`
}

// Server owns the engine for the duration of a serve session.
type Server struct {
	mu       sync.Mutex
	engine   *sim.Engine
	recorder *sim.Recorder
	running  bool

	// restock re-populates the engine after a reset; it replays the
	// scenario evaluation that loaded the initial population.
	restock func(*sim.Engine)

	tickInterval time.Duration
}

// New creates a server around an already-populated engine. restock is called
// after every reset to reload the scenario into the cleared engine.
func New(engine *sim.Engine, restock func(*sim.Engine), tickInterval time.Duration) *Server {
	if tickInterval <= 0 {
		tickInterval = 100 * time.Millisecond
	}
	return &Server{
		engine:       engine,
		recorder:     &sim.Recorder{},
		restock:      restock,
		tickInterval: tickInterval,
	}
}

// ListenAndServe runs the HTTP surface until the listener fails.
func (s *Server) ListenAndServe(addr string) error {
	initPrometheusMetrics()
	go s.tickLoop()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebsocket)
	mux.Handle("/metrics", promhttp.Handler())
	logrus.Infof("observer listening on %s", addr)
	return http.ListenAndServe(addr, mux)
}

// tickLoop advances the simulation while running, at UI pace.
func (s *Server) tickLoop() {
	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()
	for range ticker.C {
		s.mu.Lock()
		if s.running && !s.engine.Complete() {
			s.engine.Step()
			s.recorder.Observe(s.engine)
		}
		updatePrometheusMetrics(s.engine)
		s.mu.Unlock()
	}
}

func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logrus.Errorf("websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	go s.readControlMessages(conn)

	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()
	for range ticker.C {
		msg := ServerMessage{Type: "snapshot", Snapshot: s.snapshot()}
		if err := conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

func (s *Server) readControlMessages(conn *websocket.Conn) {
	for {
		var msg ClientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		s.mu.Lock()
		switch msg.Type {
		case "start":
			s.running = true
		case "pause":
			s.running = false
		case "step":
			if !s.engine.Complete() {
				s.engine.Step()
				s.recorder.Observe(s.engine)
			}
		case "reset":
			s.engine.Restart()
			s.recorder.Reset()
			if s.restock != nil {
				s.restock(s.engine)
			}
			s.running = false
		default:
			logrus.Warnf("unknown control message %q", msg.Type)
		}
		s.mu.Unlock()
	}
}

func (s *Server) snapshot() *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return buildSnapshot(s.engine)
}

func buildSnapshot(e *sim.Engine) *Snapshot {
	snap := &Snapshot{
		Timer:             e.Timer(),
		Policy:            e.Policy().Name(),
		Complete:          e.Complete(),
		FinishedCount:     len(e.Finished()),
		Throughput:        e.Throughput(),
		AvgWaitingTime:    e.AverageWaitingTime(),
		AvgTurnaroundTime: e.AverageTurnaroundTime(),
		AvgCPUUsage:       e.AverageCPUUsage(),
	}
	for i := 0; i < e.NumCores(); i++ {
		cs := CoreSnapshot{
			Arrivals: len(e.Arrivals(i)),
			Ready:    len(e.Ready(i)),
			Waiting:  len(e.Waiting(i)),
			CPUUsage: e.CPUUsage(i),
		}
		if p := e.Running(i); p != nil {
			pid := p.PID
			cs.RunningPID = &pid
		}
		snap.Cores = append(snap.Cores, cs)
	}
	return snap
}
