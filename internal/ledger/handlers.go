package ledger

import (
	"encoding/json"
	"net/http"

	"github.com/daymatch/daymatch-backend/internal/common/utils"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

type PurchaseTokensDTO struct {
	TokenAmount int64    `json:"token_amount" validate:"required,gte=1"`
	AmountUSD   *float64 `json:"amount_usd,omitempty" validate:"omitempty,gte=0"`
	Description string   `json:"description" validate:"required,max=255"`
}

func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	balance, err := h.service.GetBalance(r.Context(), userID)
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]int64{"balance": balance})
}

func (h *Handler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	entries, err := h.service.ListTransactions(r.Context(), userID)
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, entries)
}

func (h *Handler) PurchaseTokens(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	var dto PurchaseTokensDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := utils.ValidateStruct(dto); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	entry, err := h.service.PurchaseTokens(r.Context(), userID, dto.TokenAmount, dto.AmountUSD, dto.Description)
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, entry)
}

func (h *Handler) ReplenishAll(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.ReplenishAll(r.Context())
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, summary)
}
