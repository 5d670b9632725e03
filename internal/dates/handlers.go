package dates

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

func (h *Handler) ProposeDate(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	var dto ProposeDateDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := utils.ValidateStruct(dto); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	record, err := h.service.Propose(r.Context(), userID, &dto)
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, record)
}

func (h *Handler) UpdateDate(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	var dto UpdateDateDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := utils.ValidateStruct(dto); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	record, err := h.service.Update(r.Context(), userID, &dto)
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, record)
}

func (h *Handler) CancelDate(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	var dto CancelDateDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := utils.ValidateStruct(dto); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	record, err := h.service.Cancel(r.Context(), userID, &dto)
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, record)
}

func (h *Handler) GetDate(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)
	vars := mux.Vars(r)

	userFrom, err := strconv.ParseInt(vars["userFrom"], 10, 64)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid userFrom")
		return
	}

	userTo, err := strconv.ParseInt(vars["userTo"], 10, 64)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid userTo")
		return
	}

	if _, err := time.Parse("2006-01-02", vars["date"]); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid date")
		return
	}

	record, err := h.service.Get(r.Context(), userID, userFrom, userTo, vars["date"])
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, record)
}

func (h *Handler) GetUpcomingDates(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	records, err := h.service.GetUpcoming(r.Context(), userID)
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, records)
}
