package controller

import (
	"doc-qa-be/internal/pkg/serverutils"
	"doc-qa-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IDocumentController interface {
	RegisterRoutes(r fiber.Router)
	Upload(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Chunks(ctx *fiber.Ctx) error
	Reprocess(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	Stats(ctx *fiber.Ctx) error
	JobStatus(ctx *fiber.Ctx) error
}

type documentController struct {
	documentService service.IDocumentService
}

func NewDocumentController(documentService service.IDocumentService) IDocumentController {
	return &documentController{
		documentService: documentService,
	}
}

func (c *documentController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/documents/v1")
	h.Post("/upload", c.Upload)
	h.Get("", c.List)
	h.Get("/stats/overview", c.Stats)
	h.Get("/jobs/:task_id", c.JobStatus)
	h.Get("/:id", c.Show)
	h.Get("/:id/chunks", c.Chunks)
	h.Post("/:id/reprocess", c.Reprocess)
	h.Delete("/:id", c.Delete)
}

func (c *documentController) Upload(ctx *fiber.Ctx) error {
	file, err := ctx.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "missing file field")
	}

	res, err := c.documentService.Upload(ctx.Context(), file)
	if err != nil {
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	}

	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Document queued for processing", res))
}

func (c *documentController) List(ctx *fiber.Ctx) error {
	page := ctx.QueryInt("page", 1)
	pageSize := ctx.QueryInt("page_size", 20)
	status := ctx.Query("status")

	res, err := c.documentService.List(ctx.Context(), page, pageSize, status)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Documents", res))
}

func (c *documentController) Show(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid document id")
	}

	res, err := c.documentService.Show(ctx.Context(), id)
	if err != nil {
		return err
	}
	if res == nil {
		return fiber.NewError(fiber.StatusNotFound, "document not found")
	}

	return ctx.JSON(serverutils.SuccessResponse("Document detail", res))
}

func (c *documentController) Chunks(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid document id")
	}

	page := ctx.QueryInt("page", 1)
	pageSize := ctx.QueryInt("page_size", 50)

	res, err := c.documentService.Chunks(ctx.Context(), id, page, pageSize)
	if err != nil {
		return err
	}
	if res == nil {
		return fiber.NewError(fiber.StatusNotFound, "document not found")
	}

	return ctx.JSON(serverutils.SuccessResponse("Document chunks", res))
}

func (c *documentController) Reprocess(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid document id")
	}

	res, err := c.documentService.Reprocess(ctx.Context(), id)
	if err != nil {
		return fiber.NewError(fiber.StatusConflict, err.Error())
	}
	if res == nil {
		return fiber.NewError(fiber.StatusNotFound, "document not found")
	}

	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Document queued for reprocessing", res))
}

func (c *documentController) Delete(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid document id")
	}

	if err := c.documentService.Delete(ctx.Context(), id); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Document deleted", nil))
}

func (c *documentController) Stats(ctx *fiber.Ctx) error {
	res, err := c.documentService.Stats(ctx.Context())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Stats overview", res))
}

func (c *documentController) JobStatus(ctx *fiber.Ctx) error {
	taskId := ctx.Params("task_id")

	res, err := c.documentService.JobStatus(ctx.Context(), taskId)
	if err != nil {
		return err
	}
	if res == nil {
		return fiber.NewError(fiber.StatusNotFound, "job not found")
	}

	return ctx.JSON(serverutils.SuccessResponse("Job status", res))
}
