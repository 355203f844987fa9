package controller

import (
	"strings"

	"docsync-be/internal/constant"
	"docsync-be/internal/dto"
	"docsync-be/internal/pkg/serverutils"
	"docsync-be/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// RunStatus reports whether a processing run is active.
type RunStatus interface {
	IsRunning() bool
}

type IDocumentController interface {
	RegisterRoutes(api fiber.Router, jwtMiddleware fiber.Handler)
}

type documentController struct {
	processingService service.IDocumentProcessingService
	historyService    service.IRunHistoryService
	publisherService  service.IPublisherService
	runStatus         RunStatus
	validate          *validator.Validate
}

func NewDocumentController(
	processingService service.IDocumentProcessingService,
	historyService service.IRunHistoryService,
	publisherService service.IPublisherService,
	runStatus RunStatus,
) IDocumentController {
	return &documentController{
		processingService: processingService,
		historyService:    historyService,
		publisherService:  publisherService,
		runStatus:         runStatus,
		validate:          validator.New(),
	}
}

// RegisterRoutes mounts the read-only endpoints. The sync endpoint is only
// mounted when jwtMiddleware is provided.
func (c *documentController) RegisterRoutes(api fiber.Router, jwtMiddleware fiber.Handler) {
	api.Get("/documents/stats", c.GetStats)
	api.Get("/runs", c.GetRuns)

	if jwtMiddleware != nil {
		api.Post("/sync", jwtMiddleware, c.RequestSync)
	}
}

// GetStats returns the stored document count for a status
// @Summary Count stored documents by status
// @Tags Documents
// @Produce json
// @Param status query string false "Document status (default NEW)"
// @Success 200 {object} dto.DocumentStatsResponse
// @Router /api/documents/stats [get]
func (c *documentController) GetStats(ctx *fiber.Ctx) error {
	status := strings.TrimSpace(ctx.Query("status", constant.DocumentStatusNew))

	count, err := c.processingService.CountDocumentsByStatus(ctx.Context(), status)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}

	return ctx.JSON(serverutils.SuccessResponse("Document stats retrieved", dto.DocumentStatsResponse{
		Status:           status,
		Count:            count,
		SchedulerRunning: c.runStatus.IsRunning(),
	}))
}

// GetRuns returns the most recent processing runs
// @Summary List processing runs
// @Tags Runs
// @Produce json
// @Param limit query int false "Max runs (default 20)"
// @Success 200 {object} []dto.ProcessingRunResponse
// @Router /api/runs [get]
func (c *documentController) GetRuns(ctx *fiber.Ctx) error {
	runs, err := c.historyService.Recent(ctx.Context(), ctx.QueryInt("limit", 20))
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}

	return ctx.JSON(serverutils.SuccessResponse("Processing runs retrieved", runs))
}

// RequestSync queues a manual run
// @Summary Request a sync run
// @Tags Runs
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.SyncRequestMessage true "Sync request"
// @Success 202 {object} serverutils.Response
// @Router /api/sync [post]
func (c *documentController) RequestSync(ctx *fiber.Ctx) error {
	var req dto.SyncRequestMessage
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}
	if err := c.validate.Struct(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}
	if req.RequestedBy == "" {
		if sub, ok := ctx.Locals("requested_by").(string); ok {
			req.RequestedBy = sub
		}
	}

	if err := c.publisherService.PublishSyncRequest(ctx.Context(), req); err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}

	resp := serverutils.SuccessResponse("Sync request accepted", req)
	resp.Code = fiber.StatusAccepted
	return ctx.Status(fiber.StatusAccepted).JSON(resp)
}
