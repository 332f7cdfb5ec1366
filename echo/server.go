// Package echo serves the question answering API over HTTP using Echo.
package echo

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/fwojciec/webqa"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ShutdownTimeout is the time given for active requests to finish.
const ShutdownTimeout = 5 * time.Second

//go:embed index.html
var indexHTML []byte

// Server exposes an Answerer over HTTP.
type Server struct {
	ln     net.Listener
	server *http.Server
	echo   *echo.Echo

	// Addr is the bind address, e.g. ":5000".
	Addr string

	Answerer webqa.Answerer
	Logger   *slog.Logger

	// Gatherer, if set, is exposed on /metrics.
	Gatherer prometheus.Gatherer
}

// NewServer returns a Server with its routes registered.
func NewServer() *Server {
	s := &Server{
		echo:   echo.New(),
		Logger: slog.Default(),
	}
	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			s.Logger.Info("http request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"duration", v.Latency,
				"err", v.Error,
			)
			return nil
		},
	}))

	s.echo.GET("/", s.handleIndex)
	s.echo.POST("/get_answer", s.handleGetAnswer)
	s.echo.GET("/healthz", s.handleHealthz)
	s.echo.GET("/metrics", s.handleMetrics)
	return s
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Open binds Addr and begins serving in the background.
func (s *Server) Open() error {
	if s.Answerer == nil {
		return webqa.Errorf(webqa.EINVALID, "answerer required")
	}

	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.Addr, err)
	}
	s.ln = ln
	s.server = &http.Server{
		Handler:           s.echo,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.Logger.Error("http server", "err", err)
		}
	}()
	return nil
}

// Close gracefully shuts down the server.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// URL returns the base URL of the running server.
func (s *Server) URL() string {
	if s.ln == nil {
		return ""
	}
	host, port, _ := net.SplitHostPort(s.ln.Addr().String())
	if host == "::" || host == "" {
		host = "localhost"
	}
	return fmt.Sprintf("http://%s", net.JoinHostPort(host, port))
}

// answerResponse is the body of every /get_answer response.
type answerResponse struct {
	Answer string `json:"answer"`
}

func (s *Server) handleIndex(c echo.Context) error {
	return c.HTMLBlob(http.StatusOK, indexHTML)
}

func (s *Server) handleHealthz(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func (s *Server) handleMetrics(c echo.Context) error {
	if s.Gatherer == nil {
		return echo.ErrNotFound
	}
	promhttp.HandlerFor(s.Gatherer, promhttp.HandlerOpts{}).ServeHTTP(c.Response(), c.Request())
	return nil
}

// handleGetAnswer always responds 200 with an answer string. Failures are
// encoded in the answer text and their detail is only logged.
func (s *Server) handleGetAnswer(c echo.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			s.Logger.Error("get_answer panic", "panic", r)
			err = c.JSON(http.StatusOK, answerResponse{Answer: webqa.MsgQueryError})
		}
	}()

	var req webqa.AnswerRequest
	if err := c.Bind(&req); err != nil {
		s.Logger.Warn("get_answer bind", "err", err)
		return c.JSON(http.StatusOK, answerResponse{Answer: webqa.MsgQueryError})
	}
	if err := req.Validate(); err != nil {
		return c.JSON(http.StatusOK, answerResponse{Answer: webqa.MsgMissingInput})
	}

	result := s.Answerer.Answer(c.Request().Context(), req)
	if result == nil {
		return c.JSON(http.StatusOK, answerResponse{Answer: webqa.MsgQueryError})
	}
	if result.Err != nil {
		s.Logger.Warn("get_answer failed",
			"url", req.URL,
			"reason", result.Reason,
			"code", webqa.ErrorCode(result.Err),
			"err", result.Err,
		)
	}
	return c.JSON(http.StatusOK, answerResponse{Answer: result.Answer})
}
