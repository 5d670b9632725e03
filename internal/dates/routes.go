package dates

import (
	"github.com/gorilla/mux"

	"github.com/daymatch/daymatch-backend/internal/auth"
)

func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *auth.Middleware) {
	api := router.PathPrefix("/api/v1/dates").Subrouter()
	api.Use(authMiddleware.Authenticate)

	api.HandleFunc("", handler.ProposeDate).Methods("POST")
	api.HandleFunc("", handler.UpdateDate).Methods("PATCH")
	api.HandleFunc("/cancel", handler.CancelDate).Methods("POST")
	api.HandleFunc("/upcoming", handler.GetUpcomingDates).Methods("GET")
	api.HandleFunc("/{userFrom}/{userTo}/{date}", handler.GetDate).Methods("GET")
}
