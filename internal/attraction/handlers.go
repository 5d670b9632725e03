package attraction

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/daymatch/daymatch-backend/internal/common/utils"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) SubmitRating(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	var dto SubmitRatingDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := utils.ValidateStruct(dto); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	row, err := h.service.SubmitRating(r.Context(), userID, &dto)
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, row)
}

func (h *Handler) GetAttractionsByPair(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	userFrom, userTo, ok := pairVars(w, r)
	if !ok {
		return
	}

	attractions, err := h.service.GetAttractionsByPair(r.Context(), userID, userFrom, userTo)
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, attractions)
}

func (h *Handler) GetAttraction(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	userFrom, userTo, ok := pairVars(w, r)
	if !ok {
		return
	}

	day := mux.Vars(r)["date"]
	if _, err := time.Parse("2006-01-02", day); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid date")
		return
	}

	row, err := h.service.GetAttraction(r.Context(), userID, userFrom, userTo, day)
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, row)
}

func pairVars(w http.ResponseWriter, r *http.Request) (int64, int64, bool) {
	vars := mux.Vars(r)

	userFrom, err := strconv.ParseInt(vars["userFrom"], 10, 64)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid userFrom")
		return 0, 0, false
	}

	userTo, err := strconv.ParseInt(vars["userTo"], 10, 64)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid userTo")
		return 0, 0, false
	}

	return userFrom, userTo, true
}
