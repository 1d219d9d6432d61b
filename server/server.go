package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cadenza-ai/mentor/respond"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ErrResponderRequired is returned when a responder is not provided.
var ErrResponderRequired = errors.New("responder required")

// messageRequest is the body of POST /chat/message.
type messageRequest struct {
	SessionID string `json:"sessionId" binding:"required"`
	Message   string `json:"message" binding:"required"`
}

// messageResponse is the body returned for a chat message.
type messageResponse struct {
	Response  string `json:"response"`
	MessageID string `json:"messageId"`
}

// welcomeResponse is the body of GET /chat/welcome.
type welcomeResponse struct {
	Greeting  string `json:"greeting"`
	MessageID string `json:"messageId"`
}

// Server serves the chat HTTP API.
type Server struct {
	responder *respond.Responder
	router    *gin.Engine
	logger    *slog.Logger
}

// Option configures a Server.
type Option func(*Server) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewServer creates the HTTP server around a responder.
func NewServer(responder *respond.Responder, opts ...Option) (*Server, error) {
	if responder == nil {
		return nil, ErrResponderRequired
	}

	s := &Server{
		responder: responder,
		logger:    slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	router.GET("/healthcheck", s.handleHealthcheck)

	chat := router.Group("/chat")
	{
		chat.GET("/welcome", s.handleWelcome)
		chat.POST("/message", s.handleMessage)
	}

	s.router = router
	return s, nil
}

// Handler returns the underlying HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves the API on addr until the listener fails.
func (s *Server) Run(addr string) error {
	s.logger.Info("chat server listening", "addr", addr)
	return s.router.Run(addr)
}

func (s *Server) handleHealthcheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleWelcome(c *gin.Context) {
	c.JSON(http.StatusOK, welcomeResponse{
		Greeting:  s.responder.Welcome(),
		MessageID: uuid.NewString(),
	})
}

func (s *Server) handleMessage(c *gin.Context) {
	var req messageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	answer, err := s.responder.Respond(c.Request.Context(), req.SessionID, req.Message)
	if err != nil {
		if errors.Is(err, respond.ErrEmptyMessage) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "message must not be blank"})
			return
		}
		s.logger.Error("message handling failed", "sessionId", req.SessionID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, messageResponse{
		Response:  answer,
		MessageID: uuid.NewString(),
	})
}

// corsMiddleware allows browser clients from any origin, as the chat UI is
// served separately.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
