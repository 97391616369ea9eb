// Copyright (c) 2026 Lumen Market. All rights reserved.
// Author: dev@lumenmarket.dev

package product

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/lumenmarket/lumen/internal/platform/request"
	"github.com/lumenmarket/lumen/internal/platform/respond"
	"github.com/lumenmarket/lumen/pkg/pagination"
)

// Handler exposes the catalog endpoints over HTTP. Everything here is public;
// shoppers browse before they sign in.
type Handler struct {
	service *Service
}

// NewHandler creates the catalog HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes mounts the catalog endpoints.
func (h *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", h.list)
	router.Get("/{idOrSlug}", h.get)

	return router
}

func (h *Handler) list(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)
	filter := Filter{
		Category: request.URL.Query().Get("category"),
		Search:   request.URL.Query().Get("q"),
	}

	result, err := h.service.List(request.Context(), params, filter)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, result.Products, result.Meta)
}

func (h *Handler) get(writer http.ResponseWriter, request *http.Request) {
	idOrSlug := requestutil.Param(request, "idOrSlug")

	found, err := h.service.Get(request.Context(), idOrSlug)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, found)
}
