// Package server exposes the simulated network and the agent over HTTP.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/zeu5/ran-rl-opt/ran"
	"github.com/zeu5/ran-rl-opt/types"
)

// Server serializes every request since the environment and the agent are single threaded
type Server struct {
	lock        *sync.Mutex
	environment *ran.Environment
	policy      types.Policy
	metrics     *Metrics
	logger      *slog.Logger
	router      *gin.Engine
	server      *http.Server
}

type Option func(*Server)

// WithPolicy enables /act
func WithPolicy(policy types.Policy) Option {
	return func(s *Server) {
		s.policy = policy
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

func WithMetrics(metrics *Metrics) Option {
	return func(s *Server) {
		s.metrics = metrics
	}
}

type stepRequest struct {
	Action *int `json:"action"`
}

type actRequest struct {
	Observation []float64 `json:"observation"`
	// Apply steps the environment with the chosen action
	Apply bool `json:"apply"`
}

type stepResponse struct {
	Observation []float64      `json:"observation"`
	Reward      float64        `json:"reward"`
	Done        bool           `json:"done"`
	Info        types.StepInfo `json:"info"`
}

func NewServer(addr string, environment *ran.Environment, opts ...Option) *Server {
	s := &Server{
		lock:        new(sync.Mutex),
		environment: environment,
		logger:      slog.Default(),
	}
	for _, o := range opts {
		o(s)
	}
	if s.metrics == nil {
		s.metrics = NewMetrics()
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), s.countRequests)
	r.POST("/reset", s.handleReset)
	r.POST("/step", s.handleStep)
	r.POST("/act", s.handleAct)
	r.GET("/stats", s.handleStats)
	r.GET("/cells", s.handleCells)
	r.GET("/info", s.handleInfo)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{})))
	s.router = r
	s.server = &http.Server{
		Addr:    addr,
		Handler: r,
	}
	return s
}

// Handler is the routed gin engine
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) countRequests(c *gin.Context) {
	c.Next()
	s.metrics.requests.WithLabelValues(c.FullPath(), strconv.Itoa(c.Writer.Status())).Inc()
}

func (s *Server) handleReset(c *gin.Context) {
	s.lock.Lock()
	observation := s.environment.Reset()
	stats := s.environment.NetworkStats()
	s.lock.Unlock()

	s.metrics.resets.Inc()
	s.metrics.observeStats(stats)
	c.JSON(http.StatusOK, gin.H{"observation": observation})
}

func (s *Server) handleStep(c *gin.Context) {
	req := stepRequest{}
	if err := c.ShouldBindJSON(&req); err != nil || req.Action == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to unmarshal request"})
		return
	}

	s.lock.Lock()
	result := s.environment.Step(*req.Action)
	stats := s.environment.NetworkStats()
	s.lock.Unlock()

	s.metrics.actions.WithLabelValues("client").Inc()
	s.metrics.observeStep(result)
	s.metrics.observeStats(stats)
	c.JSON(http.StatusOK, toResponse(result))
}

func (s *Server) handleAct(c *gin.Context) {
	if s.policy == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no agent loaded"})
		return
	}
	req := actRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to unmarshal request"})
		return
	}

	s.lock.Lock()
	defer s.lock.Unlock()
	observation := req.Observation
	if len(observation) == 0 {
		observation = s.environment.Observation()
	}
	if len(observation) != s.environment.ObservationSize() {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "observation must have " + strconv.Itoa(s.environment.ObservationSize()) + " values",
		})
		return
	}
	action := s.policy.Act(observation, false)
	s.metrics.actions.WithLabelValues("agent").Inc()
	resp := gin.H{
		"action":  action,
		"changes": ran.DecodeAction(action),
	}
	if req.Apply {
		result := s.environment.Step(action)
		s.metrics.observeStep(result)
		s.metrics.observeStats(s.environment.NetworkStats())
		resp["result"] = toResponse(result)
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleStats(c *gin.Context) {
	s.lock.Lock()
	stats := s.environment.NetworkStats()
	step := s.environment.StepCount()
	s.lock.Unlock()

	s.metrics.observeStats(stats)
	c.JSON(http.StatusOK, gin.H{"step": step, "stats": stats})
}

func (s *Server) handleCells(c *gin.Context) {
	s.lock.Lock()
	cells := s.environment.Cells()
	cursor := s.environment.Cursor()
	s.lock.Unlock()

	c.JSON(http.StatusOK, gin.H{"cursor": cursor, "cells": cells})
}

func (s *Server) handleInfo(c *gin.Context) {
	s.lock.Lock()
	info := s.environment.DataInfo()
	s.lock.Unlock()

	c.JSON(http.StatusOK, info)
}

func toResponse(result *types.StepResult) stepResponse {
	return stepResponse{
		Observation: result.Observation,
		Reward:      result.Reward,
		Done:        result.Done,
		Info:        result.Info,
	}
}

// Run serves until ctx is cancelled
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("serving", "addr", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return s.server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
