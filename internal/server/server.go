// Package server publishes generated rule files over HTTP so the consuming
// application can subscribe to them by URL.
package server

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/p4th0r/cloudrules/internal/logging"
	"github.com/p4th0r/cloudrules/internal/rulefile"
)

// Config holds the parameters for a Server.
type Config struct {
	Dir    string // directory holding .lsrules files
	Logger logging.Logger
}

// Server serves the rule files found in a directory.
type Server struct {
	dir      string
	logger   logging.Logger
	router   chi.Router
	registry *prometheus.Registry
	served   *prometheus.CounterVec
}

// FileInfo describes one published rule file.
type FileInfo struct {
	Name     string    `json:"name"`
	URL      string    `json:"url"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}

// New creates a Server and binds its routes.
func New(cfg Config) *Server {
	s := &Server{
		dir:      cfg.Dir,
		logger:   logging.OrNop(cfg.Logger),
		registry: prometheus.NewRegistry(),
		served: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cloudrules_rule_file_requests_total",
			Help: "Rule file requests by file name and status code.",
		}, []string{"file", "code"}),
	}
	s.registry.MustRegister(s.served)

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer, middleware.Timeout(10*time.Second))
	r.Get("/healthz", s.health)
	r.Get("/rules", s.listRules)
	r.Get("/rules/{name}", s.getRule)
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	s.router = r

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) listRules(w http.ResponseWriter, r *http.Request) {
	files, err := s.files()
	if err != nil {
		s.logger.Error("listing %s: %v", s.dir, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "cannot list rule files"})
		return
	}
	writeJSON(w, http.StatusOK, files)
}

func (s *Server) getRule(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if !validName(name) {
		s.served.WithLabelValues("invalid", "404").Inc()
		http.NotFound(w, r)
		return
	}

	path := filepath.Join(s.dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			s.served.WithLabelValues(name, "404").Inc()
			http.NotFound(w, r)
			return
		}
		s.served.WithLabelValues(name, "500").Inc()
		s.logger.Error("reading %s: %v", path, err)
		http.Error(w, "cannot read rule file", http.StatusInternalServerError)
		return
	}

	s.served.WithLabelValues(name, "200").Inc()
	s.logger.Debug("Served %s to %s", name, r.RemoteAddr)
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

// files lists the rule files in the directory, sorted by name.
func (s *Server) files() ([]FileInfo, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []FileInfo{}, nil
		}
		return nil, err
	}

	files := []FileInfo{}
	for _, e := range entries {
		if e.IsDir() || !validName(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{
			Name:     e.Name(),
			URL:      "/rules/" + e.Name(),
			Size:     info.Size(),
			Modified: info.ModTime().UTC(),
		})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// validName accepts plain .lsrules file names only.
func validName(name string) bool {
	if !strings.HasSuffix(name, rulefile.Extension) || name == rulefile.Extension {
		return false
	}
	if strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") {
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
