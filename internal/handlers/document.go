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

type DocumentHandler struct {
	documentService *services.DocumentService
	validator       *validator.Validate
}

func NewDocumentHandler(documentService *services.DocumentService) *DocumentHandler {
	return &DocumentHandler{
		documentService: documentService,
		validator:       pkgvalidator.GetValidator(),
	}
}

func (h *DocumentHandler) GetDocuments(c *gin.Context) {
	userID, _ := c.Get("user_id")

	var req models.DocumentListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid query parameters")
		return
	}

	documents, err := h.documentService.GetDocuments(userID.(uint), &req)
	if err != nil {
		utils.FromError(c, err)
		return
	}

	utils.Success(c, documents)
}

func (h *DocumentHandler) CreateDocument(c *gin.Context) {
	userID, _ := c.Get("user_id")

	var req models.DocumentCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		utils.ValidationError(c, err.Error())
		return
	}

	document, err := h.documentService.CreateDocument(userID.(uint), &req)
	if err != nil {
		utils.FromError(c, err)
		return
	}

	utils.Created(c, document)
}

func (h *DocumentHandler) GetDocument(c *gin.Context) {
	userID, _ := c.Get("user_id")

	documentID, err := parseID(c, "id")
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid document id")
		return
	}

	document, err := h.documentService.GetDocument(documentID, userID.(uint))
	if err != nil {
		utils.FromError(c, err)
		return
	}

	utils.Success(c, document)
}

func (h *DocumentHandler) UpdateDocument(c *gin.Context) {
	userID, _ := c.Get("user_id")

	documentID, err := parseID(c, "id")
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid document id")
		return
	}

	var req models.DocumentUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		utils.ValidationError(c, err.Error())
		return
	}

	document, err := h.documentService.UpdateDocument(documentID, userID.(uint), &req)
	if err != nil {
		utils.FromError(c, err)
		return
	}

	utils.Success(c, document)
}

func (h *DocumentHandler) DeleteDocument(c *gin.Context) {
	userID, _ := c.Get("user_id")

	documentID, err := parseID(c, "id")
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid document id")
		return
	}

	if err := h.documentService.DeleteDocument(documentID, userID.(uint)); err != nil {
		utils.FromError(c, err)
		return
	}

	utils.SuccessWithMessage(c, "document deleted", nil)
}

func (h *DocumentHandler) UploadFile(c *gin.Context) {
	userID, _ := c.Get("user_id")

	documentID, err := parseID(c, "id")
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid document id")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "file is required")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		utils.InternalError(c)
		return
	}
	defer file.Close()

	version, err := h.documentService.UploadFile(c.Request.Context(), documentID, userID.(uint), fileHeader.Filename, file)
	if err != nil {
		utils.FromError(c, err)
		return
	}

	utils.SuccessWithMessage(c, "file uploaded", version)
}

func (h *DocumentHandler) GetFileVersions(c *gin.Context) {
	userID, _ := c.Get("user_id")

	documentID, err := parseID(c, "id")
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid document id")
		return
	}

	files, err := h.documentService.GetFileVersions(documentID, userID.(uint))
	if err != nil {
		utils.FromError(c, err)
		return
	}

	utils.Success(c, files)
}

func (h *DocumentHandler) DownloadFile(c *gin.Context) {
	userID, _ := c.Get("user_id")

	documentID, err := parseID(c, "id")
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid document id")
		return
	}

	link, err := h.documentService.DownloadLink(c.Request.Context(), documentID, userID.(uint))
	if err != nil {
		utils.FromError(c, err)
		return
	}

	utils.Success(c, gin.H{"link": link})
}

func (h *DocumentHandler) DownloadFileVersion(c *gin.Context) {
	userID, _ := c.Get("user_id")

	documentID, err := parseID(c, "id")
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid document id")
		return
	}

	fileID, err := parseID(c, "fileId")
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid file id")
		return
	}

	link, err := h.documentService.FileDownloadLink(c.Request.Context(), documentID, fileID, userID.(uint))
	if err != nil {
		utils.FromError(c, err)
		return
	}

	utils.Success(c, gin.H{"link": link})
}

func parseID(c *gin.Context, param string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(param), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
