package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"procura_backend/internal/middleware"
	"procura_backend/internal/models"
	"procura_backend/internal/services"
	"procura_backend/internal/services/dto"
)

type TenderHandler struct {
	*BaseHandler
	tenderService services.TenderService
}

func NewTenderHandler(base *BaseHandler, tenderService services.TenderService) *TenderHandler {
	return &TenderHandler{BaseHandler: base, tenderService: tenderService}
}

func (h *TenderHandler) RegisterRoutes(r *gin.RouterGroup) {
	tenders := r.Group("/tenders")
	tenders.Use(middleware.AuthMiddleware())
	{
		tenders.GET("", h.ListTenders)
		tenders.GET("/:tenderId", h.GetTender)
	}

	manage := r.Group("/tenders")
	manage.Use(middleware.AuthMiddleware(),
		middleware.RequireRoles(models.UserRoleOfficer, models.UserRoleAdministrator))
	{
		manage.POST("", h.CreateTender)
		manage.PUT("/:tenderId", h.UpdateTender)
	}

	admin := r.Group("/admin/tenders")
	admin.Use(middleware.AuthMiddleware(), middleware.RequireRoles(models.UserRoleAdministrator))
	{
		admin.POST("/sync", h.SyncFromSecop)
	}
}

func (h *TenderHandler) ListTenders(c *gin.Context) {
	var criteria dto.TenderCriteria
	if !h.BindAndValidate_Query(c, &criteria) {
		return
	}

	resp, err := h.tenderService.ListTenders(criteria)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *TenderHandler) GetTender(c *gin.Context) {
	tender, err := h.tenderService.GetTender(c.Param("tenderId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, tender)
}

func (h *TenderHandler) CreateTender(c *gin.Context) {
	actor, ok := h.GetActor(c)
	if !ok {
		return
	}

	var req dto.CreateTenderRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	tender, err := h.tenderService.CreateTender(actor, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, tender)
}

func (h *TenderHandler) UpdateTender(c *gin.Context) {
	actor, ok := h.GetActor(c)
	if !ok {
		return
	}

	var req dto.UpdateTenderRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	tender, err := h.tenderService.UpdateTender(actor, c.Param("tenderId"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, tender)
}

// SyncFromSecop triggers a pull from the SECOP II open data feed.
func (h *TenderHandler) SyncFromSecop(c *gin.Context) {
	actor, ok := h.GetActor(c)
	if !ok {
		return
	}

	result, err := h.tenderService.SyncFromSecop(c.Request.Context(), actor)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
