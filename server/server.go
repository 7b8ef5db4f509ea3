package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"
)

// Server exposes a Predictor over HTTP.
type Server struct {
	pred *Predictor
}

func NewServer(pred *Predictor) *Server {
	return &Server{pred: pred}
}

// RegisterRoutes attaches all endpoints to the provided mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/predict_next_word", s.handlePredict)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/", s.handleIndex)
}

// Handler is the full route table wrapped with logging and panic recovery.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return logRequests(mux)
}

// ListenAndServe blocks serving on addr.
func (s *Server) ListenAndServe(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Printf("serving next-word predictions on %s (model run %s)", addr, s.pred.RunID())
	return srv.ListenAndServe()
}

// writeJSON is a helper to consistently send JSON responses.
func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func allowGet(w http.ResponseWriter, r *http.Request) bool {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		return true
	}
	w.Header().Set("Allow", "GET, HEAD")
	writeDetail(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	return false
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	q := r.URL.Query()
	if !q.Has("input_text") {
		writeDetail(w, http.StatusUnprocessableEntity, "query parameter input_text is required")
		return
	}
	word, err := s.pred.PredictNextWord(q.Get("input_text"))
	if err != nil {
		log.Printf("predict: %v", err)
		writeDetail(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"predicted_word": word})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"vocab_size": s.pred.VocabSize(),
	})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeDetail(w, http.StatusNotFound, "Not Found")
		return
	}
	if !allowGet(w, r) {
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, "Next-word prediction API")
	fmt.Fprintln(w, "  GET /predict_next_word?input_text=<text>  -> {\"predicted_word\": ...}")
	fmt.Fprintln(w, "  GET /healthz                              -> {\"status\": \"ok\", ...}")
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// logRequests logs one line per request and turns a panic inside a
// handler into a 500 for that request only.
func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		defer func() {
			if v := recover(); v != nil {
				log.Printf("panic serving %s: %v", r.URL.Path, v)
				writeDetail(rec, http.StatusInternalServerError, "Internal Server Error")
			}
			log.Printf("%s %s %d %v", r.Method, r.URL.RequestURI(), rec.status, time.Since(start).Round(time.Microsecond))
		}()
		next.ServeHTTP(rec, r)
	})
}
