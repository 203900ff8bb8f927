package handlers

import (
	"net/http"
	"strconv"

	"docflow-backend/internal/models"
	"docflow-backend/internal/services"
	"docflow-backend/internal/utils"
	pkgvalidator "docflow-backend/pkg/validator"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type DocumentTypeHandler struct {
	typeService *services.DocumentTypeService
	validator   *validator.Validate
}

func NewDocumentTypeHandler(typeService *services.DocumentTypeService) *DocumentTypeHandler {
	return &DocumentTypeHandler{
		typeService: typeService,
		validator:   pkgvalidator.GetValidator(),
	}
}

func (h *DocumentTypeHandler) GetDocumentTypes(c *gin.Context) {
	types, err := h.typeService.GetDocumentTypes()
	if err != nil {
		utils.FromError(c, err)
		return
	}

	utils.Success(c, types)
}

func (h *DocumentTypeHandler) CreateDocumentType(c *gin.Context) {
	var req models.DocumentTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		utils.ValidationError(c, err.Error())
		return
	}

	docType, err := h.typeService.CreateDocumentType(&req)
	if err != nil {
		utils.FromError(c, err)
		return
	}

	utils.Created(c, docType)
}

func (h *DocumentTypeHandler) UpdateDocumentType(c *gin.Context) {
	typeID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid document type id")
		return
	}

	var req models.DocumentTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		utils.ValidationError(c, err.Error())
		return
	}

	docType, err := h.typeService.UpdateDocumentType(uint(typeID), &req)
	if err != nil {
		utils.FromError(c, err)
		return
	}

	utils.Success(c, docType)
}

func (h *DocumentTypeHandler) DeleteDocumentType(c *gin.Context) {
	typeID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid document type id")
		return
	}

	if err := h.typeService.DeleteDocumentType(uint(typeID)); err != nil {
		utils.FromError(c, err)
		return
	}

	utils.SuccessWithMessage(c, "document type deleted", nil)
}
