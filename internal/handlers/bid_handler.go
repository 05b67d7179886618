package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"procura_backend/internal/middleware"
	"procura_backend/internal/services"
	"procura_backend/internal/services/dto"
	"procura_backend/pkg/apperrors"
)

type BidHandler struct {
	*BaseHandler
	bidService        services.BidService
	attachmentService services.AttachmentService
}

func NewBidHandler(base *BaseHandler, bidService services.BidService, attachmentService services.AttachmentService) *BidHandler {
	return &BidHandler{
		BaseHandler:       base,
		bidService:        bidService,
		attachmentService: attachmentService,
	}
}

// RegisterRoutes wires the bid lifecycle. Role checks live in the service so
// error semantics (404 vs 403 vs 409) stay in one place; the middleware only
// guarantees authentication.
func (h *BidHandler) RegisterRoutes(r *gin.RouterGroup) {
	bids := r.Group("/bids")
	bids.Use(middleware.AuthMiddleware())
	{
		bids.POST("", h.CreateBid)
		bids.GET("", h.ListBids)
		bids.GET("/:bidId", h.GetBid)
		bids.PUT("/:bidId", h.UpdateBid)
		bids.DELETE("/:bidId", h.DeleteBid)

		bids.POST("/:bidId/attachments", h.UploadAttachment)
		bids.GET("/:bidId/attachments", h.ListAttachments)
	}

	attachments := r.Group("/attachments")
	attachments.Use(middleware.AuthMiddleware())
	{
		attachments.GET("/:attachmentId", h.DownloadAttachment)
		attachments.DELETE("/:attachmentId", h.DeleteAttachment)
	}
}

func (h *BidHandler) CreateBid(c *gin.Context) {
	actor, ok := h.GetActor(c)
	if !ok {
		return
	}

	var req dto.CreateBidRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	bid, err := h.bidService.CreateBid(actor, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, bid)
}

func (h *BidHandler) ListBids(c *gin.Context) {
	actor, ok := h.GetActor(c)
	if !ok {
		return
	}

	var criteria dto.BidCriteria
	if !h.BindAndValidate_Query(c, &criteria) {
		return
	}

	resp, err := h.bidService.ListBids(actor, criteria)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *BidHandler) GetBid(c *gin.Context) {
	actor, ok := h.GetActor(c)
	if !ok {
		return
	}

	bid, err := h.bidService.GetBid(actor, c.Param("bidId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, bid)
}

func (h *BidHandler) UpdateBid(c *gin.Context) {
	actor, ok := h.GetActor(c)
	if !ok {
		return
	}

	var req dto.UpdateBidRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	bid, err := h.bidService.UpdateBid(actor, c.Param("bidId"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, bid)
}

func (h *BidHandler) DeleteBid(c *gin.Context) {
	actor, ok := h.GetActor(c)
	if !ok {
		return
	}

	if err := h.bidService.DeleteBid(actor, c.Param("bidId")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Attachments ---

func (h *BidHandler) UploadAttachment(c *gin.Context) {
	actor, ok := h.GetActor(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		apperrors.HandleError(c, apperrors.NewBadRequestError("Missing multipart field 'file'"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.HandleServiceError(c, apperrors.InternalError(err))
		return
	}
	defer file.Close()

	attachment, err := h.attachmentService.Upload(
		c.Request.Context(),
		actor,
		c.Param("bidId"),
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		fileHeader.Size,
		file,
	)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, attachment)
}

func (h *BidHandler) ListAttachments(c *gin.Context) {
	actor, ok := h.GetActor(c)
	if !ok {
		return
	}

	attachments, err := h.attachmentService.List(actor, c.Param("bidId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"attachments": attachments})
}

func (h *BidHandler) DownloadAttachment(c *gin.Context) {
	actor, ok := h.GetActor(c)
	if !ok {
		return
	}

	attachment, body, err := h.attachmentService.Download(c.Request.Context(), actor, c.Param("attachmentId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	defer body.Close()

	c.Header("Content-Disposition", `attachment; filename="`+attachment.FileName+`"`)
	c.DataFromReader(http.StatusOK, attachment.SizeBytes, attachment.ContentType, body, nil)
}

func (h *BidHandler) DeleteAttachment(c *gin.Context) {
	actor, ok := h.GetActor(c)
	if !ok {
		return
	}

	if err := h.attachmentService.Delete(c.Request.Context(), actor, c.Param("attachmentId")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
