package mock

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/studiowebux/carcli/internal/types"
	"go.uber.org/zap"
)

const (
	maxLogs       = 1000
	maxUploadSize = 10 << 20
)

// Server is an in-memory implementation of the car inventory API
type Server struct {
	config     *Config
	store      *store
	router     *mux.Router
	logger     *zap.Logger
	httpServer *http.Server
	listener   net.Listener
	logs       []RequestLog
	logsMutex  sync.Mutex
	notifyCh   chan struct{} // Channel to notify when new log arrives
}

// NewServer creates a mock server seeded from config
func NewServer(config *Config, logger *zap.Logger) *Server {
	if config == nil {
		config = DefaultConfig()
	}
	applyDefaults(config)
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		config:   config,
		store:    newStore(config),
		logger:   logger,
		logs:     make([]RequestLog, 0),
		notifyCh: make(chan struct{}, 100),
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.logRequests)

	r.HandleFunc("/user/login", s.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/uploads/{filename}", s.handleUpload).Methods(http.MethodGet)

	api := r.NewRoute().Subrouter()
	api.Use(s.requireAuth)

	api.HandleFunc("/brand", s.handleListBrands).Methods(http.MethodGet)
	api.HandleFunc("/brand", s.handleCreateBrand).Methods(http.MethodPost)
	api.HandleFunc("/brand/{id:[0-9]+}", s.handleUpdateBrand).Methods(http.MethodPut)
	api.HandleFunc("/brand/{id:[0-9]+}", s.handleDeleteBrand).Methods(http.MethodDelete)

	api.HandleFunc("/car", s.handleListCars).Methods(http.MethodGet)
	api.HandleFunc("/car/byPage", s.handleCarsByPage).Methods(http.MethodGet)
	api.HandleFunc("/car", s.handleCreateCar).Methods(http.MethodPost)
	api.HandleFunc("/car/{id:[0-9]+}", s.handleUpdateCar).Methods(http.MethodPut)
	api.HandleFunc("/car/{id:[0-9]+}", s.handleDeleteCar).Methods(http.MethodDelete)

	return r
}

// Handler exposes the router, for httptest servers
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens on the configured address and serves in the background
func (s *Server) Start() error {
	addr := net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.listener = ln
	s.httpServer = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error("mock server error", zap.Error(err))
		}
	}()

	s.logger.Info("mock server started", zap.String("addr", s.GetAddress()))
	return nil
}

// Stop stops the mock server
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.httpServer.Shutdown(ctx)
}

// GetAddress returns the server base URL
func (s *Server) GetAddress() string {
	if s.listener != nil {
		return "http://" + s.listener.Addr().String()
	}
	return fmt.Sprintf("http://%s:%d", s.config.Host, s.config.Port)
}

// statusRecorder captures the status written by a handler
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := ""
		if cur := mux.CurrentRoute(r); cur != nil {
			route, _ = cur.GetPathTemplate()
		}
		entry := RequestLog{
			Timestamp: start,
			Method:    r.Method,
			Path:      r.URL.Path,
			Route:     route,
			Status:    rec.status,
			Duration:  time.Since(start),
		}
		s.logger.Debug("mock request",
			zap.String("method", entry.Method),
			zap.String("path", entry.Path),
			zap.Int("status", entry.Status),
			zap.Duration("duration", entry.Duration))
		if s.config.Logging {
			s.logRequest(entry)
		}
	})
}

// logRequest adds a request to the log
func (s *Server) logRequest(log RequestLog) {
	s.logsMutex.Lock()
	defer s.logsMutex.Unlock()

	s.logs = append(s.logs, log)
	if len(s.logs) > maxLogs {
		s.logs = s.logs[len(s.logs)-maxLogs:]
	}

	select {
	case s.notifyCh <- struct{}{}:
	default:
	}
}

// NotifyChannel receives a value whenever a request has been logged
func (s *Server) NotifyChannel() <-chan struct{} {
	return s.notifyCh
}

// DrainLogs returns the logged requests, oldest first, and empties the log
func (s *Server) DrainLogs() []RequestLog {
	s.logsMutex.Lock()
	defer s.logsMutex.Unlock()

	logs := s.logs
	s.logs = make([]RequestLog, 0)
	return logs
}

// Watch calls fn for every logged request until ctx is done. Requests
// logged before cancellation are still delivered.
func (s *Server) Watch(ctx context.Context, fn func(RequestLog)) {
	for {
		select {
		case <-ctx.Done():
			for _, entry := range s.DrainLogs() {
				fn(entry)
			}
			return
		case <-s.notifyCh:
			for _, entry := range s.DrainLogs() {
				fn(entry)
			}
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeStoreError maps store errors onto HTTP statuses
func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, errBrandInUse):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, errBadBrand), errors.Is(err, errMissingName):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func pathID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id
}

func (s *Server) handleListBrands(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.listBrands())
}

func (s *Server) handleCreateBrand(w http.ResponseWriter, r *http.Request) {
	var b types.Brand
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
		writeError(w, http.StatusBadRequest, "invalid brand body")
		return
	}
	created, err := s.store.createBrand(b.Name)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, created)
}

func (s *Server) handleUpdateBrand(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid brand body")
		return
	}
	updated, err := s.store.updateBrand(pathID(r), body.Name)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteBrand(w http.ResponseWriter, r *http.Request) {
	if err := s.store.deleteBrand(pathID(r)); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleListCars(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.listCars())
}

func (s *Server) handleCarsByPage(w http.ResponseWriter, r *http.Request) {
	q, err := parseCarQuery(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, q.page(s.store.listCars()))
}

// readCarForm decodes the multipart "car" part and stores the optional "file" part
func (s *Server) readCarForm(r *http.Request) (types.CarDraft, *types.Image, error) {
	var draft types.CarDraft
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		return draft, nil, fmt.Errorf("invalid multipart body: %w", err)
	}

	var carJSON []byte
	if part, _, err := r.FormFile("car"); err == nil {
		carJSON, err = io.ReadAll(part)
		part.Close()
		if err != nil {
			return draft, nil, fmt.Errorf("failed to read car part: %w", err)
		}
	} else if v := r.FormValue("car"); v != "" {
		carJSON = []byte(v)
	} else {
		return draft, nil, errors.New("missing car part")
	}
	if err := json.Unmarshal(carJSON, &draft); err != nil {
		return draft, nil, fmt.Errorf("invalid car part: %w", err)
	}

	file, header, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return draft, nil, nil
	}
	if err != nil {
		return draft, nil, fmt.Errorf("invalid file part: %w", err)
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return draft, nil, fmt.Errorf("failed to read file part: %w", err)
	}
	img := s.store.saveUpload(header.Filename, header.Header.Get("Content-Type"), data)
	return draft, img, nil
}

func (s *Server) handleCreateCar(w http.ResponseWriter, r *http.Request) {
	draft, img, err := s.readCarForm(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	created, err := s.store.createCar(draft, img)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	s.logger.Info("car created",
		zap.Int64("id", created.IDValue()),
		zap.String("user", usernameFrom(r.Context())))
	writeJSON(w, http.StatusOK, created)
}

func (s *Server) handleUpdateCar(w http.ResponseWriter, r *http.Request) {
	draft, img, err := s.readCarForm(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	updated, err := s.store.updateCar(pathID(r), draft, img)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteCar(w http.ResponseWriter, r *http.Request) {
	if err := s.store.deleteCar(pathID(r)); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	u, ok := s.store.getUpload(mux.Vars(r)["filename"])
	if !ok {
		http.NotFound(w, r)
		return
	}
	ct := u.contentType
	if ct == "" {
		ct = http.DetectContentType(u.data)
	}
	w.Header().Set("Content-Type", ct)
	w.Write(u.data)
}
