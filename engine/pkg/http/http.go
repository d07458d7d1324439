// Package http exposes the ingest and query surface of the engine.
package http

import (
	"context"
	"errors"
	"glyco/engine/defs"
	"glyco/engine/pkg/aggregate"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

const requestTimeout = 2 * time.Second

// Service is the engine surface the API delegates to.
type Service interface {
	MergeSensorUpload(ctx context.Context, userID, sensorID string, activationTime int64, samples defs.SampleMap) (*defs.DeviceRecord, error)
	LogManualReading(ctx context.Context, userID string, ts int64, value float64, profile defs.UserProfile) (*defs.DailyMetrics, error)
	DailyMetrics(ctx context.Context, userID, date string) (*defs.DailyMetrics, error)
	RangeSummary(ctx context.Context, userID string, start, end int64) ([]aggregate.DaySummary, error)
	LatestScoreTrend(ctx context.Context, userID string) (*defs.ScoreTrend, error)
}

type HttpServer struct {
	Service Service

	router *gin.Engine
}

func New(s Service) *HttpServer {
	hs := &HttpServer{Service: s}
	hs.router = gin.Default()
	hs.routes()
	return hs
}

func (s *HttpServer) Serve(addr string) error {
	return s.router.Run(addr)
}

func (s *HttpServer) routes() {
	s.router.POST("/v1/glucose/sync", s.sync)
	s.router.POST("/v1/glucose/log", s.logReading)
	s.router.GET("/v1/metrics", s.metrics)
	s.router.GET("/v1/metrics/range", s.rangeSummary)
	s.router.GET("/v1/metrics/trend", s.trend)
}

type syncRequest struct {
	UserID         string         `json:"userId"`
	SensorID       string         `json:"sensorId"`
	ActivationTime int64          `json:"activationTime"`
	Samples        defs.SampleMap `json:"samples"`
}

func (s *HttpServer) sync(c *gin.Context) {
	var req syncRequest
	if err := c.BindJSON(&req); err != nil {
		c.String(http.StatusBadRequest, "expected sync payload: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	dr, err := s.Service.MergeSensorUpload(ctx, req.UserID, req.SensorID, req.ActivationTime, req.Samples)
	if err != nil {
		abortWith(c, err)
		return
	}

	c.JSON(http.StatusOK, dr)
}

type logRequest struct {
	UserID    string           `json:"userId"`
	Timestamp int64            `json:"timestamp"`
	Value     float64          `json:"value"`
	Profile   defs.UserProfile `json:"profile"`
}

func (s *HttpServer) logReading(c *gin.Context) {
	var req logRequest
	if err := c.BindJSON(&req); err != nil {
		c.String(http.StatusBadRequest, "expected log payload: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	dm, err := s.Service.LogManualReading(ctx, req.UserID, req.Timestamp, req.Value, req.Profile)
	if err != nil {
		abortWith(c, err)
		return
	}

	c.JSON(http.StatusOK, dm)
}

func (s *HttpServer) metrics(c *gin.Context) {
	userID := c.DefaultQuery("user", "")
	date := c.DefaultQuery("date", "")
	if userID == "" || date == "" {
		c.String(http.StatusBadRequest, "expected user and date")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	dm, err := s.Service.DailyMetrics(ctx, userID, date)
	if err != nil {
		abortWith(c, err)
		return
	}

	c.JSON(http.StatusOK, dm)
}

func (s *HttpServer) rangeSummary(c *gin.Context) {
	userID := c.DefaultQuery("user", "")
	if userID == "" {
		c.String(http.StatusBadRequest, "expected user")
		return
	}

	start, err := strconv.ParseInt(c.DefaultQuery("start", ""), 10, 64)
	if err != nil {
		c.String(http.StatusBadRequest, "expected epoch ms for start")
		return
	}
	end, err := strconv.ParseInt(c.DefaultQuery("end", ""), 10, 64)
	if err != nil {
		c.String(http.StatusBadRequest, "expected epoch ms for end")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	// end is inclusive on the wire; the aggregator slices [start, end).
	summaries, err := s.Service.RangeSummary(ctx, userID, start, end+1)
	if err != nil {
		abortWith(c, err)
		return
	}

	c.JSON(http.StatusOK, summaries)
}

func (s *HttpServer) trend(c *gin.Context) {
	userID := c.DefaultQuery("user", "")
	if userID == "" {
		c.String(http.StatusBadRequest, "expected user")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	st, err := s.Service.LatestScoreTrend(ctx, userID)
	if err != nil {
		abortWith(c, err)
		return
	}

	c.JSON(http.StatusOK, st)
}

func abortWith(c *gin.Context, err error) {
	var verr defs.ErrValidation
	if errors.As(err, &verr) {
		c.String(http.StatusBadRequest, verr.Error())
		return
	}
	c.String(http.StatusInternalServerError, "something went wrong: %v", err)
}
