package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MJE43/trainerrand/internal/legal"
	"github.com/MJE43/trainerrand/internal/runner"
	"github.com/MJE43/trainerrand/internal/scan"
	"github.com/MJE43/trainerrand/internal/scripting"
	"github.com/MJE43/trainerrand/internal/store"
	"github.com/MJE43/trainerrand/internal/trainer"
)

// handleRandomize runs one pass and persists it when a database is configured
func (s *Server) handleRandomize(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBodyBytes)

	// Partial settings objects are decoded over the defaults.
	defaults := trainer.DefaultSettings()
	req := RandomizeRequest{Settings: &defaults}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		s.errorHandler.HandleError(w, r, NewError(ErrTypeValidation, "Invalid JSON format").
			WithContext("error", err.Error()).
			Build(), status)
		return
	}

	runReq, err := ValidateRandomizeRequest(&req)
	if err != nil {
		var fe *fieldError
		if errors.As(err, &fe) {
			s.errorHandler.HandleValidationError(w, r, fe.errType, fe.field, fe.Error())
			return
		}
		s.errorHandler.HandleError(w, r, err, http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.requestTimeout)
	defer cancel()

	type outcome struct {
		res *runner.Result
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		// RecoveryHandler cannot see panics on this goroutine.
		defer func() {
			if rvr := recover(); rvr != nil {
				done <- outcome{err: fmt.Errorf("randomize panicked: %v", rvr)}
			}
		}()
		res, err := s.service.Randomize(ctx, runReq)
		done <- outcome{res, err}
	}()

	var out outcome
	select {
	case out = <-done:
	case <-ctx.Done():
		s.errorHandler.HandleTimeoutError(w, r, "randomize", s.requestTimeout)
		return
	}

	if out.err != nil {
		status, errType := classifyRunError(out.err)
		s.errorHandler.HandleRunError(w, r, status, errType, req.Version, out.err)
		return
	}

	res := out.res
	s.securityLogger.LogRandomizeOperation(
		middleware.GetReqID(r.Context()),
		res.Version.String(),
		res.Seed,
		req.FilterScript,
		res.Stats.Trainers,
		res.Draws,
		res.Duration,
	)

	response := RandomizeResponse{
		RunID:         res.RunID,
		Version:       res.Version.String(),
		Seed:          res.Seed,
		Draws:         res.Draws,
		Stats:         res.Stats,
		Summaries:     res.Summaries,
		Logs:          res.Logs,
		DurationMs:    res.Duration.Milliseconds(),
		EngineVersion: EngineVersion,
	}
	if req.IncludeTrainers {
		response.Trainers = res.Trainers
	}
	s.writeJSON(w, http.StatusOK, response)
}

// handleScan searches a seed range for runs matching a metric target
func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBodyBytes)

	defaults := trainer.DefaultSettings()
	req := ScanRequest{RandomizeRequest: RandomizeRequest{Settings: &defaults}}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		s.errorHandler.HandleError(w, r, NewError(ErrTypeValidation, "Invalid JSON format").
			WithContext("error", err.Error()).
			Build(), status)
		return
	}

	base, err := ValidateRandomizeRequest(&req.RandomizeRequest)
	if err != nil {
		var fe *fieldError
		if errors.As(err, &fe) {
			s.errorHandler.HandleValidationError(w, r, fe.errType, fe.field, fe.Error())
			return
		}
		s.errorHandler.HandleError(w, r, err, http.StatusBadRequest)
		return
	}

	scanReq := scan.Request{
		Base:       base,
		SeedStart:  req.SeedStart,
		SeedEnd:    req.SeedEnd,
		Metric:     scan.Metric(req.Metric),
		Species:    req.TargetSpecies,
		TargetOp:   scan.TargetOp(req.TargetOp),
		TargetVal:  req.TargetVal,
		TargetVal2: req.TargetVal2,
		Tolerance:  req.Tolerance,
		Limit:      req.Limit,
	}
	if _, err := scanReq.Validate(); err != nil {
		s.errorHandler.HandleValidationError(w, r, ErrTypeValidation, "scan", err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.requestTimeout)
	defer cancel()

	start := time.Now()
	result, err := s.scanner.Scan(ctx, scanReq)
	if err != nil {
		status, errType := classifyRunError(err)
		s.errorHandler.HandleRunError(w, r, status, errType, req.Version, err)
		return
	}

	s.securityLogger.LogAuditEvent(
		middleware.GetReqID(r.Context()),
		"scan",
		"seeds",
		"success",
		map[string]interface{}{
			"seed_start": req.SeedStart,
			"seed_end":   req.SeedEnd,
			"metric":     req.Metric,
			"hits":       result.Summary.HitsFound,
			"timed_out":  result.Summary.TimedOut,
		},
	)

	s.writeJSON(w, http.StatusOK, ScanResponse{
		Hits:          result.Hits,
		Summary:       result.Summary,
		DurationMs:    time.Since(start).Milliseconds(),
		EngineVersion: EngineVersion,
	})
}

func classifyRunError(err error) (int, string) {
	switch {
	case errors.Is(err, scripting.ErrTimeout):
		return http.StatusRequestTimeout, ErrTypeTimeout
	case errors.Is(err, scripting.ErrScript):
		return http.StatusBadRequest, ErrTypeScript
	case errors.Is(err, trainer.ErrInvalidSettings):
		return http.StatusBadRequest, ErrTypeInvalidSettings
	case errors.Is(err, runner.ErrNoData):
		return http.StatusBadRequest, ErrTypeValidation
	default:
		return http.StatusInternalServerError, ErrTypeRandomization
	}
}

// requireDB reports 503 when persistence is disabled
func (s *Server) requireDB(w http.ResponseWriter, r *http.Request) bool {
	if s.db != nil {
		return true
	}
	s.errorHandler.HandleError(w, r, NewError(ErrTypeServiceUnavailable, "Run history is disabled").
		WithRequestID(middleware.GetReqID(r.Context())).
		Build(), http.StatusServiceUnavailable)
	return false
}

func queryInt(r *http.Request, key string, def int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

// handleListRuns lists stored runs, newest first
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if !s.requireDB(w, r) {
		return
	}

	page, err := queryInt(r, "page", 1)
	if err != nil {
		s.errorHandler.HandleValidationError(w, r, ErrTypeValidation, "page", "page must be an integer")
		return
	}
	perPage, err := queryInt(r, "perPage", 50)
	if err != nil || perPage > 500 {
		s.errorHandler.HandleValidationError(w, r, ErrTypeValidation, "perPage", "perPage must be an integer up to 500")
		return
	}

	query := store.RunsQuery{Page: page, PerPage: perPage}
	if raw := r.URL.Query().Get("version"); raw != "" {
		v, err := legal.ParseVersion(raw)
		if err != nil {
			s.errorHandler.HandleValidationError(w, r, ErrTypeInvalidVersion, "version", err.Error())
			return
		}
		query.Version = v.String()
	}

	runs, err := s.db.ListRuns(query)
	if err != nil {
		s.errorHandler.HandleError(w, r, err, http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, http.StatusOK, runs)
}

// handleGetRun returns one stored run
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if !s.requireDB(w, r) {
		return
	}
	id := chi.URLParam(r, "id")
	run, err := s.db.GetRun(id)
	if err != nil {
		s.handleStoreError(w, r, id, err)
		return
	}
	s.writeJSON(w, http.StatusOK, run)
}

// handleGetRunTrainers returns one page of a run's trainers
func (s *Server) handleGetRunTrainers(w http.ResponseWriter, r *http.Request) {
	if !s.requireDB(w, r) {
		return
	}
	id := chi.URLParam(r, "id")

	page, err := queryInt(r, "page", 1)
	if err != nil {
		s.errorHandler.HandleValidationError(w, r, ErrTypeValidation, "page", "page must be an integer")
		return
	}
	perPage, err := queryInt(r, "perPage", 100)
	if err != nil || perPage > 1000 {
		s.errorHandler.HandleValidationError(w, r, ErrTypeValidation, "perPage", "perPage must be an integer up to 1000")
		return
	}

	trainers, err := s.db.GetRunTrainers(id, page, perPage)
	if err != nil {
		s.handleStoreError(w, r, id, err)
		return
	}
	s.writeJSON(w, http.StatusOK, trainers)
}

func (s *Server) handleStoreError(w http.ResponseWriter, r *http.Request, id string, err error) {
	if errors.Is(err, store.ErrNotFound) {
		s.errorHandler.HandleError(w, r, NewError(ErrTypeRunNotFound, "Run not found").
			WithRequestID(middleware.GetReqID(r.Context())).
			WithContext("run_id", id).
			Build(), http.StatusNotFound)
		return
	}
	s.errorHandler.HandleError(w, r, err, http.StatusInternalServerError)
}

// handleListVersions describes every version group and its legality tables
func (s *Server) handleListVersions(w http.ResponseWriter, r *http.Request) {
	groups := legal.Groups()
	versions := make([]GameVersionInfo, 0, len(groups))
	for _, g := range groups {
		tables := s.catalog.ForVersion(g)
		info := GameVersionInfo{
			Name:           g.String(),
			SpecialClasses: len(tables.SpecialClasses),
			CrashClasses:   len(tables.CrashClasses),
			FixedTeams:     len(tables.FixedCounts),
			Megas:          len(tables.Megas),
			HeldItems:      len(tables.HeldItems),
		}
		for _, m := range g.Members() {
			info.Games = append(info.Games, m.String())
		}
		versions = append(versions, info)
	}

	s.writeJSON(w, http.StatusOK, VersionsResponse{
		Versions:      versions,
		EngineVersion: EngineVersion,
	})
}

// handleDefaultSettings returns the settings a new pass starts from
func (s *Server) handleDefaultSettings(w http.ResponseWriter, r *http.Request) {
	modes := []string{}
	for m := trainer.MoveNone; m <= trainer.MoveMetronome; m++ {
		modes = append(modes, m.String())
	}
	s.writeJSON(w, http.StatusOK, SettingsResponse{
		Settings:      trainer.DefaultSettings(),
		MoveModes:     modes,
		EngineVersion: EngineVersion,
	})
}
