package handlers

import (
	"net/http"

	"docflow-backend/internal/services"
	"docflow-backend/internal/utils"

	"github.com/gin-gonic/gin"
)

type DropboxHandler struct {
	dropboxService *services.DropboxService
}

func NewDropboxHandler(dropboxService *services.DropboxService) *DropboxHandler {
	return &DropboxHandler{dropboxService: dropboxService}
}

func (h *DropboxHandler) GetAuthURL(c *gin.Context) {
	authURL, err := h.dropboxService.AuthURL()
	if err != nil {
		utils.FromError(c, err)
		return
	}

	utils.Success(c, gin.H{"auth_url": authURL})
}

func (h *DropboxHandler) Callback(c *gin.Context) {
	c.String(http.StatusOK, "Dropbox auth code received. Copy the code and exchange it in your client app.")
}

type dropboxConnectRequest struct {
	AccessToken string `json:"access_token"`
}

func (h *DropboxHandler) Connect(c *gin.Context) {
	userID, _ := c.Get("user_id")

	var req dropboxConnectRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.AccessToken == "" {
		utils.Error(c, http.StatusBadRequest, "access_token is required")
		return
	}

	if err := h.dropboxService.Connect(c.Request.Context(), userID.(uint), req.AccessToken); err != nil {
		utils.FromError(c, err)
		return
	}

	utils.SuccessWithMessage(c, "Dropbox connected", nil)
}

func (h *DropboxHandler) Status(c *gin.Context) {
	userID, _ := c.Get("user_id")

	status, err := h.dropboxService.Status(c.Request.Context(), userID.(uint))
	if err != nil {
		utils.FromError(c, err)
		return
	}

	utils.Success(c, status)
}

func (h *DropboxHandler) ListRoot(c *gin.Context) {
	userID, _ := c.Get("user_id")

	entries, err := h.dropboxService.ListRoot(c.Request.Context(), userID.(uint))
	if err != nil {
		utils.FromError(c, err)
		return
	}

	utils.Success(c, entries)
}
