package proximity

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/daymatch/daymatch-backend/internal/auth"
	"github.com/daymatch/daymatch-backend/internal/common/utils"
)

type Handler struct {
	client Client
}

func NewHandler(client Client) *Handler {
	return &Handler{client: client}
}

func (h *Handler) GetNearbyZipcodes(w http.ResponseWriter, r *http.Request) {
	zipcode := mux.Vars(r)["zipcode"]

	radius := 20
	if raw := r.URL.Query().Get("radius"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid radius")
			return
		}
		radius = parsed
	}

	zips, err := h.client.Lookup(r.Context(), zipcode, radius)
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, zips)
}

func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *auth.Middleware) {
	api := router.PathPrefix("/api/v1/proximity").Subrouter()
	api.Use(authMiddleware.Authenticate)

	api.HandleFunc("/{zipcode}", handler.GetNearbyZipcodes).Methods("GET")
}
