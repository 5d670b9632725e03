package ledger

import (
	"github.com/gorilla/mux"

	"github.com/daymatch/daymatch-backend/internal/auth"
)

func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *auth.Middleware) {
	api := router.PathPrefix("/api/v1/tokens").Subrouter()
	api.Use(authMiddleware.Authenticate)

	api.HandleFunc("/balance", handler.GetBalance).Methods("GET")
	api.HandleFunc("/transactions", handler.GetTransactions).Methods("GET")
	api.HandleFunc("/purchase", handler.PurchaseTokens).Methods("POST")
	api.HandleFunc("/replenish", handler.ReplenishAll).Methods("POST")
}
