package server

import (
	"time"

	analyst "github.com/Protocol-Lattice/go-analyst"
	"github.com/Protocol-Lattice/go-analyst/src/normalize"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Options configure the HTTP surface.
type Options struct {
	Port           string
	MaxUploadBytes int64
	Logger         *zap.Logger
}

type Server struct {
	app    *fiber.App
	port   string
	logger *zap.Logger
}

func New(session *analyst.Session, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	maxUpload := opts.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = normalize.DefaultMaxBytes
	}
	// multipart framing needs a little room on top of the file itself, so an
	// oversize file reaches the normalizer and fails as too_large
	bodyLimit := int(maxUpload) + 1<<20

	app := fiber.New(fiber.Config{
		BodyLimit:             bodyLimit,
		ErrorHandler:          errorHandler(logger),
		DisableStartupMessage: true,
	})

	app.Use(requestLogger(logger))

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(SuccessResponse("ok", fiber.Map{"status": "up"}))
	})

	api := app.Group("/api")
	newChatController(session).RegisterRoutes(api)

	return &Server{app: app, port: opts.Port, logger: logger}
}

func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Run() error {
	s.logger.Info("server is running", zap.String("addr", "http://localhost:"+s.port))
	return s.app.Listen(":" + s.port)
}

func (s *Server) Shutdown() error {
	return s.app.ShutdownWithTimeout(10 * time.Second)
}

func requestLogger(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(fiber.HeaderXRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(fiber.HeaderXRequestID, id)

		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			status = statusFor(err)
		}
		logger.Info("request",
			zap.String("request_id", id),
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)))
		return err
	}
}
