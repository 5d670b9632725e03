package attraction

import (
	"github.com/gorilla/mux"

	"github.com/daymatch/daymatch-backend/internal/auth"
)

func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *auth.Middleware) {
	api := router.PathPrefix("/api/v1/attractions").Subrouter()
	api.Use(authMiddleware.Authenticate)

	api.HandleFunc("", handler.SubmitRating).Methods("POST")
	api.HandleFunc("/{userFrom}/{userTo}", handler.GetAttractionsByPair).Methods("GET")
	api.HandleFunc("/{userFrom}/{userTo}/{date}", handler.GetAttraction).Methods("GET")
}
