// Package web serves a cohesort run report over HTTP: the rendered
// report itself, plus a websocket pushing pipeline progress while a run
// is in flight. The ordering engine never reads anything back from this
// server; it is display glue only.
package web

import (
	"bytes"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/cohesort/cohesort/internal/cache"
	"github.com/cohesort/cohesort/internal/orchestrator"
	"github.com/cohesort/cohesort/internal/report"
)

// Server serves one run's report and live progress.
type Server struct {
	app      *fiber.App
	manager  *report.Manager
	rendered *cache.ReportCache

	mu     sync.RWMutex
	report *report.Report

	clients   map[*websocket.Conn]bool
	clientsMu sync.Mutex
	broadcast chan []byte
}

// NewServer creates a report server. The report may be nil at first and
// set later via SetReport once a run completes.
func NewServer() *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		app:       app,
		manager:   report.NewManager(""),
		rendered:  cache.NewReportCache(nil),
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan []byte, 100),
	}

	s.setupRoutes()
	go s.handleBroadcast()

	return s
}

func (s *Server) setupRoutes() {
	s.app.Use(cors.New())

	s.app.Get("/", s.handleIndex)
	s.app.Get("/report", s.handleReportHTML)

	api := s.app.Group("/api")
	api.Get("/report", s.handleReportJSON)
	api.Get("/stats", s.handleStats)

	s.app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	s.app.Get("/ws", websocket.New(s.handleWebSocket))
}

// SetReport publishes the report the server renders, invalidating
// nothing: rendered bodies are keyed by run ID, and a new run has a new
// ID.
func (s *Server) SetReport(r *report.Report) {
	s.mu.Lock()
	s.report = r
	s.mu.Unlock()
	s.broadcastJSON("report", r)
}

func (s *Server) currentReport() *report.Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.report
}

func (s *Server) handleIndex(c *fiber.Ctx) error {
	c.Set("Content-Type", "text/html; charset=utf-8")
	return c.SendString(indexHTML)
}

// handleReportHTML renders the current report as HTML, re-rendering a
// given run at most once.
func (s *Server) handleReportHTML(c *fiber.Ctx) error {
	r := s.currentReport()
	if r == nil {
		return c.Status(fiber.StatusNotFound).SendString("no report yet")
	}

	body, err := s.render(r, "html")
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString(err.Error())
	}
	c.Set("Content-Type", "text/html; charset=utf-8")
	return c.Send(body)
}

func (s *Server) handleReportJSON(c *fiber.Ctx) error {
	r := s.currentReport()
	if r == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "no report yet"})
	}

	body, err := s.render(r, "json")
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	c.Set("Content-Type", "application/json")
	return c.Send(body)
}

func (s *Server) render(r *report.Report, format string) ([]byte, error) {
	if body, ok := s.rendered.Get(r.RunID, format); ok {
		return body, nil
	}

	var buf bytes.Buffer
	if err := s.manager.WriteToWriter(r, format, &buf); err != nil {
		return nil, err
	}
	body := buf.Bytes()
	s.rendered.Set(r.RunID, format, body)
	return body, nil
}

func (s *Server) handleStats(c *fiber.Ctx) error {
	s.mu.RLock()
	hasReport := s.report != nil
	runID := ""
	if hasReport {
		runID = s.report.RunID
	}
	s.mu.RUnlock()

	return c.JSON(fiber.Map{
		"has_report": hasReport,
		"run_id":     runID,
		"cache":      s.rendered.GetStats(),
	})
}

// Watch drains the orchestrator's progress queue and broadcasts each
// event to connected websocket clients. It returns when done is closed.
func (s *Server) Watch(progress *orchestrator.Progress, done <-chan struct{}) {
	if progress == nil || progress.Events == nil {
		return
	}
	for {
		v, ok := progress.Events.Dequeue()
		if ok {
			if ev, isEvent := v.(orchestrator.Event); isEvent {
				s.broadcastJSON("progress", ev)
			}
			continue
		}
		select {
		case <-done:
			// Drain whatever arrived between the last dequeue and the
			// close, then stop.
			for {
				v, ok := progress.Events.Dequeue()
				if !ok {
					return
				}
				if ev, isEvent := v.(orchestrator.Event); isEvent {
					s.broadcastJSON("progress", ev)
				}
			}
		default:
			time.Sleep(50 * time.Millisecond)
		}
	}
}

func (s *Server) handleWebSocket(c *websocket.Conn) {
	s.clientsMu.Lock()
	s.clients[c] = true
	s.clientsMu.Unlock()

	defer func() {
		s.clientsMu.Lock()
		delete(s.clients, c)
		s.clientsMu.Unlock()
		c.Close()
	}()

	// Send the current report (if any) so a late-joining client has
	// something to show immediately.
	if r := s.currentReport(); r != nil {
		if data, err := json.Marshal(map[string]interface{}{"type": "report", "data": r}); err == nil {
			c.WriteMessage(websocket.TextMessage, data)
		}
	}

	for {
		if _, _, err := c.ReadMessage(); err != nil {
			break
		}
	}
}

func (s *Server) handleBroadcast() {
	for msg := range s.broadcast {
		s.clientsMu.Lock()
		for client := range s.clients {
			if err := client.WriteMessage(websocket.TextMessage, msg); err != nil {
				client.Close()
				delete(s.clients, client)
			}
		}
		s.clientsMu.Unlock()
	}
}

func (s *Server) broadcastJSON(msgType string, data interface{}) {
	msg, err := json.Marshal(map[string]interface{}{
		"type": msgType,
		"data": data,
	})
	if err != nil {
		return
	}
	select {
	case s.broadcast <- msg:
	default:
		// Channel full, drop this update.
	}
}

// Start starts the server on addr (":9090" style).
func (s *Server) Start(addr string) error {
	log.Printf("report server listening at http://localhost%s", addr)
	return s.app.Listen(addr)
}

// Stop shuts the server down.
func (s *Server) Stop() error {
	return s.app.Shutdown()
}

// App exposes the fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}
