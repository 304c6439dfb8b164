package httpadapter

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/avolkov/grounded-qa/internal/core/ports"
	"github.com/avolkov/grounded-qa/internal/observability/metrics"
)

type RouterOptions struct {
	Service           string
	RateLimitPerSec   float64
	RateLimitBurst    int
	MaxInFlight       int
	InFlightWaitLimit time.Duration
	Metrics           *metrics.HTTPServerMetrics
}

type Router struct {
	answerer ports.QueryAnswerer
	options  RouterOptions
}

func NewRouter(answerer ports.QueryAnswerer, options RouterOptions) *Router {
	if options.Service == "" {
		options.Service = "api"
	}
	if options.MaxInFlight <= 0 {
		options.MaxInFlight = 64
	}
	if options.InFlightWaitLimit <= 0 {
		options.InFlightWaitLimit = 2 * time.Second
	}
	return &Router{answerer: answerer, options: options}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/query", rt.query)
	if rt.options.Metrics != nil {
		mux.Handle("/metrics", rt.options.Metrics.Handler())
	}

	var handler http.Handler = mux
	handler = backpressureMiddleware(handler, rt.options.MaxInFlight, rt.options.InFlightWaitLimit)
	if rt.options.RateLimitPerSec > 0 {
		handler = rateLimitMiddleware(handler, rt.options.RateLimitPerSec, rt.options.RateLimitBurst)
	}
	if rt.options.Metrics != nil {
		handler = rt.options.Metrics.Middleware(rt.options.Service, handler)
	}
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) query(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		Question string `json:"question"`
		Debug    bool   `json:"debug"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "question is required"})
		return
	}

	start := time.Now()
	response, err := rt.answerer.Answer(r.Context(), req.Question)
	if err != nil {
		status := mapErrorToHTTPStatus(err)
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}

	if rt.options.Metrics != nil {
		reason := ""
		if response.Reason != nil {
			reason = *response.Reason
		}
		fused := 0
		if response.Debug != nil {
			fused = response.Debug.FusedCount
		}
		rt.options.Metrics.RecordQueryDisposition(rt.options.Service, response.Refused, reason, time.Since(start))
		rt.options.Metrics.RecordRetrievalCounts(rt.options.Service, fused, len(response.Citations))
	}

	if !req.Debug {
		response.Debug = nil
	}
	writeJSON(w, http.StatusOK, response)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
