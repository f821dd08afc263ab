package services

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/sulefrederickjohne/pfememory/config"
	_ "github.com/sulefrederickjohne/pfememory/docs"
	"github.com/sulefrederickjohne/pfememory/logzer"
	"github.com/sulefrederickjohne/pfememory/tracing"
	"github.com/sulefrederickjohne/pfememory/transit"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// HTTPMethod defines entrypoint method
type HTTPMethod string

// Supported methods
const (
	Get    HTTPMethod = http.MethodGet
	Post   HTTPMethod = http.MethodPost
	Put    HTTPMethod = http.MethodPut
	Delete HTTPMethod = http.MethodDelete
)

// Entrypoint describes a route added to the api group by connector
type Entrypoint struct {
	URL     string
	Method  HTTPMethod
	Handler func(c *gin.Context)
}

// Controller serves the HTTP API
type Controller struct {
	mu  sync.Mutex
	srv *http.Server

	Connector config.Connector
	Metrics   *Metrics
	Status    *AgentStatus
	UpSince   *transit.Timestamp
}

// NewController returns controller for the connector settings
func NewController(connector config.Connector, metrics *Metrics) *Controller {
	return &Controller{
		Connector: connector,
		Metrics:   metrics,
		Status:    new(AgentStatus),
		UpSince:   transit.NewTimestamp(),
	}
}

// Handler builds the router
func (controller *Controller) Handler(entrypoints []Entrypoint) http.Handler {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	router.Use(cors.New(corsConfig))
	router.Use(traceRequest)

	apiV1Group := router.Group("/api/v1")
	apiV1Group.GET("/status", controller.status)
	for _, entrypoint := range entrypoints {
		apiV1Group.Handle(string(entrypoint.Method), entrypoint.URL, entrypoint.Handler)
	}
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	if controller.Connector.ExportProm && controller.Metrics != nil {
		router.GET("/metrics", gin.WrapH(
			promhttp.HandlerFor(controller.Metrics.Registry, promhttp.HandlerOpts{})))
	}
	return router
}

// StartController starts the http server
func (controller *Controller) StartController(entrypoints []Entrypoint) error {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	if controller.srv != nil {
		log.Warn().Msg("controller already started")
		return nil
	}

	addr := controller.Connector.ControllerAddr
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	certFile := controller.Connector.ControllerCertFile
	keyFile := controller.Connector.ControllerKeyFile

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		log.Err(err).Str("addr", addr).Msg("controller could not listen")
		return err
	}
	srv := &http.Server{
		Addr:         listener.Addr().String(),
		Handler:      controller.Handler(entrypoints),
		ReadTimeout:  controller.Connector.ControllerReadTimeout,
		WriteTimeout: controller.Connector.ControllerWriteTimeout,
	}
	controller.srv = srv

	go func() {
		controller.Status.Controller.Set(StatusRunning)
		var err error
		if certFile != "" && keyFile != "" {
			log.Info().Msgf("controller starts listen TLS: %s", addr)
			err = srv.ServeTLS(listener, certFile, keyFile)
		} else {
			log.Info().Msgf("controller starts listen: %s", addr)
			err = srv.Serve(listener)
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Err(err).Msg("controller got start error")
		}
		controller.Status.Controller.Set(StatusStopped)
	}()
	return nil
}

// StopController gracefully shutdowns the http server
func (controller *Controller) StopController() error {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	if controller.srv == nil {
		return nil
	}
	log.Info().Msg("controller shutdown ...")
	timeout := controller.Connector.ControllerStopTimeout
	if timeout == 0 {
		timeout = time.Second * 4
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	err := controller.srv.Shutdown(ctx)
	if err != nil {
		log.Err(err).Msg("controller got shutdown error")
	}
	controller.srv = nil
	return err
}

// Addr returns the listening address of the started server
func (controller *Controller) Addr() string {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	if controller.srv == nil {
		return ""
	}
	return controller.srv.Addr
}

// @Description The following API endpoint returns the agent status.
// @Tags    server
// @Accept  json
// @Produce json
// @Success 200 {object} services.AgentStatusDTO
// @Router  /status [get]
func (controller *Controller) status(c *gin.Context) {
	c.JSON(http.StatusOK, AgentStatusDTO{
		AgentIdentity: controller.Connector.AgentIdentity,
		Build:         config.GetBuildInfo(),
		Controller:    controller.Status.Controller.Value(),
		Nats:          controller.Status.Nats.Value(),
		Scheduler:     controller.Status.Scheduler.Value(),
		UpSince:       controller.UpSince,
		Process:       GetProcessStats(),
		LastErrors:    logzer.LastErrors(),
	})
}

func traceRequest(c *gin.Context) {
	ctx, span := tracing.StartTraceSpan(c.Request.Context(), "controller")
	c.Request = c.Request.WithContext(ctx)
	c.Next()
	tracing.EndTraceSpan(span,
		tracing.TraceAttrStr("entrypoint", c.FullPath()),
		tracing.TraceAttrStr("method", c.Request.Method),
		tracing.TraceAttrInt("status", c.Writer.Status()),
	)
}
