package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"ai-trip-planner/internal/metrics"
	"ai-trip-planner/internal/travel"
)

const (
	keepAliveInterval = 60 * time.Second
	runTimeout        = 10 * time.Minute
	sweepInterval     = 10 * time.Minute
)

// threadIDPattern limits caller-chosen run ids to filesystem-safe tokens;
// run ids become snapshot filename prefixes.
var threadIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// PlanRunner produces trip plans, optionally streaming progress events.
type PlanRunner interface {
	ProcessMessage(ctx context.Context, runID, message string, emit func(Event)) travel.ChatPlan
	BuildPlan(ctx context.Context, runID, message string) travel.ChatPlan
}

// Server exposes the planning pipeline over HTTP and SSE.
type Server struct {
	runner   PlanRunner
	registry *Registry
	dataPath string
}

// NewServer creates a Server around a plan runner. dataPath feeds the disk
// figure on /health.
func NewServer(runner PlanRunner, dataPath string) *Server {
	return &Server{
		runner:   runner,
		registry: NewRegistry(),
		dataPath: dataPath,
	}
}

// RegisterHandlers attaches the HTTP endpoints to the default mux.
func (s *Server) RegisterHandlers() {
	http.HandleFunc("/api/chat/message/stream", s.handleMessageStream)
	http.HandleFunc("/api/chat/stream", s.handleStream)
	http.HandleFunc("/api/chat/plan", s.handlePlan)
	http.HandleFunc("/health", s.handleHealth)
}

// StartSweeper drops expired sessions in the background until ctx is done.
func (s *Server) StartSweeper(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.registry.SweepExpired()
			}
		}
	}()
}

// handleMessageStream accepts a planning request and answers with the stream
// id to consume. The run itself happens in a goroutine publishing into the
// session, so the response returns immediately.
func (s *Server) handleMessageStream(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Message  string `json:"message"`
		ThreadID string `json:"threadID"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		http.Error(w, "message is required", http.StatusBadRequest)
		return
	}

	session := s.registry.Create()
	runID := session.ID
	if threadIDPattern.MatchString(req.ThreadID) {
		runID = req.ThreadID
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
		defer cancel()
		defer session.Close()
		s.runner.ProcessMessage(ctx, runID, req.Message, session.Publish)
	}()

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]string{"streamId": session.ID}); err != nil {
		log.Printf("Warning: failed to write stream id response: %v", err)
	}
}

// handleStream serves one session as Server-Sent Events. The connection ends
// after the DONE event, when the session closes, or when the client leaves.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	streamID := r.URL.Query().Get("streamId")
	session, ok := s.registry.Get(streamID)
	if !ok {
		http.Error(w, "unknown stream", http.StatusNotFound)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	flusher.Flush()

	defer s.registry.Remove(streamID)

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-keepAlive.C:
			fmt.Fprint(w, ": keep-alive\n\n")
			flusher.Flush()
		case ev, open := <-session.Events():
			if !open {
				return
			}
			frame, err := ev.Encode()
			if err != nil {
				log.Printf("Warning: dropping unencodable %s event: %v", ev.Type, err)
				continue
			}
			if _, err := w.Write(frame); err != nil {
				return
			}
			flusher.Flush()
			if ev.Type == EventDone {
				return
			}
		}
	}
}

// handlePlan runs the pipeline synchronously and answers with the ChatPlan.
func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		http.Error(w, "message is required", http.StatusBadRequest)
		return
	}

	plan := s.runner.BuildPlan(r.Context(), uuid.NewString(), req.Message)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(plan); err != nil {
		log.Printf("Warning: failed to write plan response: %v", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := metrics.GetSysHealth(s.dataPath)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{
		"status":     "ok",
		"uptime":     health.Uptime,
		"allocMB":    health.AllocMB,
		"goroutines": health.Goroutines,
		"dataDisk":   health.DataDiskSize,
	}); err != nil {
		log.Printf("Warning: failed to write health response: %v", err)
	}
}
