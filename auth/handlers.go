package auth

import (
	"errors"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/ternarybob/arbor"

	"blockpress/models"
	"blockpress/storage"
	"blockpress/utils"
)

type Handler struct {
	service *Service
	logger  arbor.ILogger
}

func NewHandler(service *Service, logger arbor.ILogger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register handles POST /api/auth/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var creds models.Credentials
	if err := utils.DecodeAndValidate(w, r, &creds); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.service.Register(r.Context(), creds)
	if err != nil {
		if errors.Is(err, storage.ErrConflict) {
			utils.RespondWithError(w, http.StatusConflict, "Username already taken")
			return
		}
		h.logger.Error().Err(err).Msg("Registration failed")
		utils.RespondWithError(w, http.StatusInternalServerError, "Registration failed")
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, resp)
}

// Login handles POST /api/auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var creds models.Credentials
	if err := utils.DecodeAndValidate(w, r, &creds); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.service.Login(r.Context(), creds)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			utils.RespondWithError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		h.logger.Error().Err(err).Msg("Login failed")
		utils.RespondWithError(w, http.StatusInternalServerError, "Login failed")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}
