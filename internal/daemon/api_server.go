package daemon

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"mashup/internal/api"
	"mashup/internal/jobs"
	"mashup/internal/logging"
	"mashup/internal/queue"
	"mashup/internal/services"
)

//go:embed web/index.html
var indexPage []byte

// maxBodyBytes caps submission bodies; a submission is a handful of fields.
const maxBodyBytes = 64 << 10

type apiServer struct {
	bind   string
	logger *slog.Logger
	daemon *Daemon

	listener net.Listener
	server   *http.Server
}

func newAPIServer(bind, token string, d *Daemon, logger *slog.Logger) *apiServer {
	srv := &apiServer{
		bind:   strings.TrimSpace(bind),
		logger: logging.NewComponentLogger(logger, "api-server"),
		daemon: d,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", srv.handleIndex)
	mux.HandleFunc("POST /{$}", srv.handleSubmit)
	mux.HandleFunc("GET /progress", srv.handleProgress)
	mux.HandleFunc("GET /healthz", srv.handleHealth)
	mux.HandleFunc("POST /api/mashups", authMiddleware(token, srv.handleSubmit))
	mux.HandleFunc("GET /api/mashups", authMiddleware(token, srv.handleList))
	mux.HandleFunc("GET /api/mashups/{id}", authMiddleware(token, srv.handleJob))
	mux.HandleFunc("GET /api/status", authMiddleware(token, srv.handleStatus))

	srv.server = &http.Server{
		Handler:           requestIDMiddleware(mux),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv
}

func (s *apiServer) start(ctx context.Context) error {
	if s.bind == "" {
		s.logger.Info("api server disabled")
		return nil
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s.listener == nil {
		return
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.server.Shutdown(shutdownCtx)
	s.listener = nil
}

func (s *apiServer) address() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *apiServer) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(indexPage)
}

func (s *apiServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *apiServer) handleSubmit(w http.ResponseWriter, r *http.Request) {
	req, err := decodeSubmission(w, r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h, err := s.daemon.jobs.Submit(r.Context(), jobs.Submission{
		SearchTerm:  req.SearchTerm,
		Count:       req.Count,
		ClipSeconds: req.ClipSeconds,
		Recipient:   req.Email,
	})
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, services.ErrInvalidRequest) {
			status = http.StatusBadRequest
		}
		s.writeError(w, status, err.Error())
		return
	}
	statusURL := "/api/mashups/" + h.ID()
	w.Header().Set("Location", statusURL)
	s.writeJSON(w, http.StatusAccepted, api.SubmitResponse{JobID: h.ID(), StatusURL: statusURL})
}

func (s *apiServer) handleList(w http.ResponseWriter, r *http.Request) {
	snaps, err := s.daemon.jobs.List(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	var statuses []queue.Status
	for _, value := range r.URL.Query()["status"] {
		status, ok := queue.ParseStatus(strings.TrimSpace(value))
		if !ok {
			s.writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown status %q", value))
			return
		}
		statuses = append(statuses, status)
	}
	if len(statuses) > 0 {
		filtered := snaps[:0]
		for _, snap := range snaps {
			for _, status := range statuses {
				if snap.State == string(status) {
					filtered = append(filtered, snap)
					break
				}
			}
		}
		snaps = filtered
	}
	s.writeJSON(w, http.StatusOK, api.JobListResponse{Jobs: api.FromSnapshots(snaps)})
}

func (s *apiServer) handleJob(w http.ResponseWriter, r *http.Request) {
	s.describe(w, r, r.PathValue("id"), func(job api.Job) any {
		return api.JobResponse{Job: job}
	})
}

// handleProgress serves the flat job payload polled by the web form. The
// route is unauthenticated, so the recipient is left out.
func (s *apiServer) handleProgress(w http.ResponseWriter, r *http.Request) {
	s.describe(w, r, r.URL.Query().Get("job"), func(job api.Job) any {
		return job.Public()
	})
}

func (s *apiServer) describe(w http.ResponseWriter, r *http.Request, id string, wrap func(api.Job) any) {
	id = strings.TrimSpace(id)
	if id == "" {
		s.writeError(w, http.StatusBadRequest, "job id is required")
		return
	}
	snap, err := s.daemon.jobs.Describe(r.Context(), id)
	if err != nil {
		if errors.Is(err, jobs.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "job not found")
			return
		}
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, wrap(api.FromSnapshot(snap)))
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := s.daemon.Status(r.Context())
	s.writeJSON(w, http.StatusOK, api.DaemonStatus{
		Running:         status.Running,
		PID:             status.PID,
		JobsDBPath:      status.JobsDBPath,
		LockFilePath:    status.LockFilePath,
		LogPath:         status.LogPath,
		ActiveJobs:      status.ActiveJobs,
		JobCounts:       api.JobCounts(status.JobCounts),
		Workspaces:      status.Workspaces,
		DeliveryEnabled: status.DeliveryEnabled,
		Dependencies:    api.FromDependencies(status.Dependencies),
	})
}

// decodeSubmission accepts JSON bodies and url-encoded or multipart forms.
func decodeSubmission(w http.ResponseWriter, r *http.Request) (api.SubmitRequest, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var req api.SubmitRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return api.SubmitRequest{}, fmt.Errorf("invalid JSON body: %w", err)
		}
		return req.Normalized(), nil
	}

	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(maxBodyBytes); err != nil {
			return api.SubmitRequest{}, fmt.Errorf("invalid form: %w", err)
		}
	} else if err := r.ParseForm(); err != nil {
		return api.SubmitRequest{}, fmt.Errorf("invalid form: %w", err)
	}
	field := func(names ...string) string {
		for _, name := range names {
			if v := strings.TrimSpace(r.PostForm.Get(name)); v != "" {
				return v
			}
		}
		return ""
	}
	count, countErr := strconv.Atoi(field("count", "num_videos"))
	clip, clipErr := strconv.Atoi(field("clip_seconds", "duration"))
	if countErr != nil || clipErr != nil {
		return api.SubmitRequest{}, errors.New("number of videos and duration must be integers")
	}
	return api.SubmitRequest{
		SearchTerm:  field("search_term", "singer"),
		Count:       count,
		ClipSeconds: clip,
		Email:       field("email"),
	}, nil
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, api.ErrorResponse{Error: message})
}

// requestIDMiddleware propagates X-Request-ID, generating one when absent.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get("X-Request-ID"))
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(services.WithRequestID(r.Context(), id)))
	})
}
