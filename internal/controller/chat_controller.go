package controller

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"doc-qa-be/internal/dto"
	"doc-qa-be/internal/pkg/serverutils"
	"doc-qa-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
)

// streamTimeout bounds one streamed answer end to end.
const streamTimeout = 5 * time.Minute

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	Ask(ctx *fiber.Ctx) error
	AskStream(ctx *fiber.Ctx) error
	Search(ctx *fiber.Ctx) error
}

type chatController struct {
	chatService service.IChatService
}

func NewChatController(chatService service.IChatService) IChatController {
	return &chatController{
		chatService: chatService,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat/v1")
	h.Post("/ask", c.Ask)
	h.Post("/ask/stream", c.AskStream)
	h.Post("/search", c.Search)
}

func (c *chatController) Ask(ctx *fiber.Ctx) error {
	var req dto.AskRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.chatService.Ask(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Answer", res))
}

func (c *chatController) Search(ctx *fiber.Ctx) error {
	var req dto.SearchRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.chatService.Search(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Search results", res))
}

// AskStream answers over SSE. Events, in order:
//
//	status  {"state": "retrieving"}
//	sources {"sources": [...], "search_info": {...}}
//	content {"text": "<cumulative answer so far>"}  (repeated)
//	done    {"answer": "<final answer>"}
//	error   {"message": "..."}                      (instead of done)
func (c *chatController) AskStream(ctx *fiber.Ctx) error {
	var req dto.AskRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	ctx.Set(fiber.HeaderContentType, "text/event-stream")
	ctx.Set(fiber.HeaderCacheControl, "no-cache")
	ctx.Set(fiber.HeaderConnection, "keep-alive")
	ctx.Set("X-Accel-Buffering", "no")

	ctx.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		// The request context dies when the handler returns, so the
		// stream runs on its own deadline.
		streamCtx, cancel := context.WithTimeout(context.Background(), streamTimeout)
		defer cancel()

		if err := writeSSE(w, "status", fiber.Map{"state": "retrieving"}); err != nil {
			return
		}

		onSources := func(sources []dto.SourceInfo, info dto.SearchInfo) error {
			return writeSSE(w, "sources", fiber.Map{
				"sources":     sources,
				"search_info": info,
			})
		}
		onContent := func(cumulative string) error {
			return writeSSE(w, "content", fiber.Map{"text": cumulative})
		}

		res, err := c.chatService.AskStream(streamCtx, &req, onSources, onContent)
		if err != nil {
			writeSSE(w, "error", fiber.Map{"message": err.Error()})
			return
		}

		writeSSE(w, "done", fiber.Map{"answer": res.Answer})
	}))

	return nil
}

func writeSSE(w *bufio.Writer, event string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, payload); err != nil {
		return err
	}
	return w.Flush()
}
