package handlers

import (
	"net/http"

	"docflow-backend/internal/models"
	"docflow-backend/internal/services"
	"docflow-backend/internal/utils"
	pkgvalidator "docflow-backend/pkg/validator"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type RegistrationHandler struct {
	registrationService *services.RegistrationService
	validator           *validator.Validate
}

func NewRegistrationHandler(registrationService *services.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{
		registrationService: registrationService,
		validator:           pkgvalidator.GetValidator(),
	}
}

func (h *RegistrationHandler) GetRegistrationsForDocument(c *gin.Context) {
	userID, _ := c.Get("user_id")

	documentID, err := parseID(c, "id")
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid document id")
		return
	}

	registrations, err := h.registrationService.GetRegistrationsForDocument(documentID, userID.(uint))
	if err != nil {
		utils.FromError(c, err)
		return
	}

	utils.Success(c, registrations)
}

func (h *RegistrationHandler) CreateRegistration(c *gin.Context) {
	userID, _ := c.Get("user_id")

	documentID, err := parseID(c, "id")
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid document id")
		return
	}

	var req models.RegistrationCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		utils.ValidationError(c, err.Error())
		return
	}

	registration, err := h.registrationService.CreateRegistration(documentID, userID.(uint), &req)
	if err != nil {
		utils.FromError(c, err)
		return
	}

	utils.Created(c, registration)
}

func (h *RegistrationHandler) GetRegistration(c *gin.Context) {
	userID, _ := c.Get("user_id")

	registrationID, err := parseID(c, "id")
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid registration id")
		return
	}

	registration, err := h.registrationService.GetRegistration(registrationID, userID.(uint))
	if err != nil {
		utils.FromError(c, err)
		return
	}

	utils.Success(c, registration)
}

func (h *RegistrationHandler) UpdateRegistration(c *gin.Context) {
	userID, _ := c.Get("user_id")

	registrationID, err := parseID(c, "id")
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid registration id")
		return
	}

	var req models.RegistrationUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		utils.ValidationError(c, err.Error())
		return
	}

	registration, err := h.registrationService.UpdateRegistration(registrationID, userID.(uint), &req)
	if err != nil {
		utils.FromError(c, err)
		return
	}

	utils.Success(c, registration)
}

func (h *RegistrationHandler) DeleteRegistration(c *gin.Context) {
	userID, _ := c.Get("user_id")

	registrationID, err := parseID(c, "id")
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid registration id")
		return
	}

	if err := h.registrationService.DeleteRegistration(registrationID, userID.(uint)); err != nil {
		utils.FromError(c, err)
		return
	}

	utils.SuccessWithMessage(c, "registration deleted", nil)
}
