package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/ytget/yt-downloader-bot/internal/model"
)

// RequestSource exposes in-flight requests
type RequestSource interface {
	GetAllRequests() []model.Request
	GetRequest(key model.RequestKey) (model.Request, bool)
}

type requestResponse struct {
	Key       string              `json:"key"`
	URL       string              `json:"url"`
	Title     string              `json:"title,omitempty"`
	Status    model.RequestStatus `json:"status"`
	AudioOnly bool                `json:"audio_only"`
	Format    string              `json:"format,omitempty"`
	StartedAt string              `json:"started_at"`
	LastError string              `json:"last_error,omitempty"`
}

type listResponse struct {
	Requests []requestResponse `json:"requests"`
	Count    int               `json:"count"`
}

// API serves the status endpoints
type API struct {
	requests RequestSource
	started  time.Time
}

// NewAPI creates the status API over requests
func NewAPI(requests RequestSource) *API {
	return &API{requests: requests, started: time.Now()}
}

// NewRouter returns a gin engine with recovery, request logging and the API routes
func NewRouter(a *API) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(ZerologLogger())
	a.RegisterRoutes(r)
	return r
}

// RegisterRoutes registers API routes on the provided gin engine
func (a *API) RegisterRoutes(router *gin.Engine) {
	router.GET("/healthz", a.Health)

	api := router.Group("/api/v1")
	{
		api.GET("/requests", a.ListRequests)
		api.GET("/requests/:key", a.GetRequest)
	}
}

// Health reports liveness
func (a *API) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"uptime": time.Since(a.started).Round(time.Second).String(),
	})
}

// ListRequests returns every in-flight request, oldest first
func (a *API) ListRequests(c *gin.Context) {
	requests := a.requests.GetAllRequests()
	resp := listResponse{Requests: make([]requestResponse, 0, len(requests)), Count: len(requests)}
	for _, req := range requests {
		resp.Requests = append(resp.Requests, toRequestResponse(req))
	}
	c.JSON(http.StatusOK, resp)
}

// GetRequest returns one in-flight request by its "<chat>-<message>" key
func (a *API) GetRequest(c *gin.Context) {
	raw := c.Param("key")
	key, err := model.ParseRequestKey(raw)
	if err != nil {
		log.Warn().Str("request_key", raw).Err(err).Msg("malformed request key")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request key"})
		return
	}

	if req, ok := a.requests.GetRequest(key); ok {
		c.JSON(http.StatusOK, toRequestResponse(req))
		return
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "request not found"})
}

func toRequestResponse(req model.Request) requestResponse {
	return requestResponse{
		Key:       req.Key.String(),
		URL:       req.SourceURL,
		Title:     req.Title,
		Status:    req.Status,
		AudioOnly: req.AudioOnly,
		Format:    req.FormatSpec,
		StartedAt: req.StartedAt.UTC().Format(time.RFC3339),
		LastError: req.LastError,
	}
}
