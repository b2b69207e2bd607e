package api

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/MJE43/trainerrand/internal/legal"
	"github.com/MJE43/trainerrand/internal/store"
)

// HealthStatus represents the overall health status
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusDegraded  HealthStatus = "degraded"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// HealthCheckResponse represents a health check response
type HealthCheckResponse struct {
	Status        HealthStatus           `json:"status"`
	Timestamp     string                 `json:"timestamp"`
	EngineVersion string                 `json:"engine_version"`
	GitCommit     string                 `json:"git_commit,omitempty"`
	BuildTime     string                 `json:"build_time,omitempty"`
	Uptime        string                 `json:"uptime"`
	Checks        map[string]HealthCheck `json:"checks"`
	System        SystemInfo             `json:"system"`
	RequestID     string                 `json:"request_id,omitempty"`
}

// HealthCheck represents an individual health check
type HealthCheck struct {
	Status      HealthStatus `json:"status"`
	Message     string       `json:"message,omitempty"`
	LastChecked string       `json:"last_checked"`
	Duration    string       `json:"duration,omitempty"`
}

// SystemInfo contains system information
type SystemInfo struct {
	GoVersion     string `json:"go_version"`
	NumGoroutines int    `json:"num_goroutines"`
	NumCPU        int    `json:"num_cpu"`
	GOMAXPROCS    int    `json:"gomaxprocs"`
	MemoryAlloc   uint64 `json:"memory_alloc_bytes"`
	MemorySys     uint64 `json:"memory_sys_bytes"`
	GCCycles      uint32 `json:"gc_cycles"`
}

func worst(a, b HealthStatus) HealthStatus {
	rank := map[HealthStatus]int{HealthStatusHealthy: 0, HealthStatusDegraded: 1, HealthStatusUnhealthy: 2}
	if rank[b] > rank[a] {
		return b
	}
	return a
}

// handleHealthCheck reports the legality catalog and database state
func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetReqID(r.Context())
	start := time.Now()

	checks := map[string]HealthCheck{
		"legality": s.checkLegalityHealth(),
		"database": s.checkDatabaseHealth(),
	}
	overall := HealthStatusHealthy
	for _, c := range checks {
		overall = worst(overall, c.Status)
	}

	statusCode := http.StatusOK
	if overall == HealthStatusUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}

	s.securityLogger.LogAuditEvent(
		requestID,
		"health_check",
		"system",
		string(overall),
		map[string]interface{}{
			"duration":    time.Since(start),
			"checks":      len(checks),
			"status_code": statusCode,
		},
	)

	s.writeJSON(w, statusCode, HealthCheckResponse{
		Status:        overall,
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		EngineVersion: EngineVersion,
		GitCommit:     GitCommit,
		BuildTime:     BuildTime,
		Uptime:        time.Since(s.startTime).String(),
		Checks:        checks,
		System:        s.getSystemInfo(),
		RequestID:     requestID,
	})
}

// handleLiveness responds while the process is serving
func (s *Server) handleLiveness(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"alive":          true,
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
		"engine_version": EngineVersion,
		"uptime":         time.Since(s.startTime).String(),
		"request_id":     middleware.GetReqID(r.Context()),
	})
}

// checkLegalityHealth flags version groups whose tables came out empty,
// which usually means a broken override file.
func (s *Server) checkLegalityHealth() HealthCheck {
	start := time.Now()

	var empty []string
	groups := legal.Groups()
	for _, g := range groups {
		t := s.catalog.ForVersion(g)
		if len(t.SpecialClasses) == 0 && len(t.FixedCounts) == 0 && len(t.HeldItems) == 0 {
			empty = append(empty, g.String())
		}
	}

	status := HealthStatusHealthy
	message := fmt.Sprintf("%d version groups loaded", len(groups))
	switch {
	case len(empty) == len(groups):
		status = HealthStatusUnhealthy
		message = "No legality tables loaded"
	case len(empty) > 0:
		status = HealthStatusDegraded
		message = fmt.Sprintf("Empty legality tables for %v", empty)
	}

	return HealthCheck{
		Status:      status,
		Message:     message,
		LastChecked: time.Now().UTC().Format(time.RFC3339),
		Duration:    time.Since(start).String(),
	}
}

// checkDatabaseHealth runs a trivial query against the run store
func (s *Server) checkDatabaseHealth() HealthCheck {
	start := time.Now()

	status := HealthStatusHealthy
	message := "Database connection healthy"
	if s.db == nil {
		status = HealthStatusDegraded
		message = "Run history disabled"
	} else if _, err := s.db.ListRuns(store.RunsQuery{Page: 1, PerPage: 1}); err != nil {
		status = HealthStatusUnhealthy
		message = fmt.Sprintf("Database query failed: %v", err)
	}

	return HealthCheck{
		Status:      status,
		Message:     message,
		LastChecked: time.Now().UTC().Format(time.RFC3339),
		Duration:    time.Since(start).String(),
	}
}

func (s *Server) getSystemInfo() SystemInfo {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return SystemInfo{
		GoVersion:     runtime.Version(),
		NumGoroutines: runtime.NumGoroutine(),
		NumCPU:        runtime.NumCPU(),
		GOMAXPROCS:    runtime.GOMAXPROCS(0),
		MemoryAlloc:   m.Alloc,
		MemorySys:     m.Sys,
		GCCycles:      m.NumGC,
	}
}
