package middleware

import (
	"net/http"

	"github.com/go-chi/cors"

	"github.com/AbhaySingh4321/shop-managerr/pkg/correlationid"
)

// Cors allows the dashboard frontend to call the API from another origin.
func Cors() func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", correlationid.Header},
		ExposedHeaders: []string{correlationid.Header},
		MaxAge:         300,
	})
}
