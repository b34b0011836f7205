package server

import (
	"context"
	"path/filepath"
	"sync"

	analyst "github.com/Protocol-Lattice/go-analyst"
	"github.com/Protocol-Lattice/go-analyst/src/normalize"
	"github.com/gofiber/fiber/v2"
)

// chatController exposes the single session over HTTP. The session is not
// goroutine-safe, so every handler holds mu for its whole duration: requests
// queue instead of interleaving.
type chatController struct {
	mu      sync.Mutex
	session *analyst.Session
}

func newChatController(s *analyst.Session) *chatController {
	return &chatController{session: s}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/v1")
	h.Post("/files", c.Upload)
	h.Post("/messages", c.Send)
	h.Get("/messages", c.Transcript)
	h.Get("/session", c.Show)
	h.Post("/session/reset", c.Reset)
	h.Put("/session/persona", c.SwitchPersona)
	h.Get("/personas", c.Personas)
}

// remoteContext detaches remote calls from the client connection; an upload
// or send that has started always runs to completion.
func remoteContext(ctx *fiber.Ctx) context.Context {
	return context.WithoutCancel(ctx.UserContext())
}

func (c *chatController) Upload(ctx *fiber.Ctx) error {
	fh, err := ctx.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "multipart field \"file\" is required")
	}
	f, err := fh.Open()
	if err != nil {
		return err
	}
	defer f.Close()

	c.mu.Lock()
	defer c.mu.Unlock()

	res, err := c.session.Upload(remoteContext(ctx), normalize.Upload{
		Name:   filepath.Base(fh.Filename),
		MIME:   fh.Header.Get(fiber.HeaderContentType),
		Reader: f,
	})
	if err != nil {
		return err
	}

	msg := "File " + res.Name + " uploaded"
	if res.Skipped {
		msg = "File " + res.Name + " already uploaded"
	}
	return ctx.JSON(SuccessResponse(msg, res))
}

func (c *chatController) Send(ctx *fiber.Ctx) error {
	var req SendMessageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := ValidateRequest(req); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	reply, err := c.session.Send(remoteContext(ctx), req.Prompt)
	if err != nil {
		return err
	}
	return ctx.JSON(SuccessResponse("Success send message", SendMessageResponse{Reply: reply}))
}

func (c *chatController) Transcript(ctx *fiber.Ctx) error {
	c.mu.Lock()
	entries := c.session.Transcript()
	c.mu.Unlock()

	if entries == nil {
		entries = []analyst.Entry{}
	}
	return ctx.JSON(SuccessResponse("Success get transcript", entries))
}

func (c *chatController) Show(ctx *fiber.Ctx) error {
	c.mu.Lock()
	snap := c.session.Snapshot()
	c.mu.Unlock()

	return ctx.JSON(SuccessResponse("Success get session", snap))
}

func (c *chatController) Reset(ctx *fiber.Ctx) error {
	c.mu.Lock()
	c.session.Reset()
	snap := c.session.Snapshot()
	c.mu.Unlock()

	return ctx.JSON(SuccessResponse("Session reset", snap))
}

func (c *chatController) SwitchPersona(ctx *fiber.Ctx) error {
	var req SwitchPersonaRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := ValidateRequest(req); err != nil {
		return err
	}
	p, err := analyst.ParsePersona(req.Persona)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	changed, err := c.session.SwitchPersona(p)
	if err != nil {
		return err
	}
	return ctx.JSON(SuccessResponse("Success switch persona", SwitchPersonaResponse{Changed: changed, Persona: p.String()}))
}

func (c *chatController) Personas(ctx *fiber.Ctx) error {
	c.mu.Lock()
	active := c.session.Persona()
	c.mu.Unlock()

	views := make([]PersonaView, 0, len(analyst.Personas()))
	for _, p := range analyst.Personas() {
		views = append(views, PersonaView{Name: p.String(), Title: p.Title(), Active: p == active})
	}
	return ctx.JSON(SuccessResponse("Success get personas", views))
}
