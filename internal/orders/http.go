// Copyright (c) 2026 Lumen Market. All rights reserved.
// Author: dev@lumenmarket.dev

package orders

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lumenmarket/lumen/internal/platform/middleware"
	requestutil "github.com/lumenmarket/lumen/internal/platform/request"
	"github.com/lumenmarket/lumen/internal/platform/respond"
	"github.com/lumenmarket/lumen/pkg/pagination"
)

// Handler exposes the order endpoints over HTTP.
type Handler struct {
	service *Service
}

// NewHandler creates the order HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes mounts the order endpoints. Everything requires authentication.
func (h *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireAuth)

	router.Post("/", h.place)
	router.Get("/", h.list)
	router.Get("/{orderID}", h.get)

	return router
}

type placeOrderRequest struct {
	Items []Line `json:"items"`
}

func (h *Handler) place(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input placeOrderRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	order, err := h.service.Place(request.Context(), userID, input.Items)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, order)
}

func (h *Handler) list(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := h.service.List(request.Context(), userID, pagination.FromRequest(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, result.Orders, result.Meta)
}

func (h *Handler) get(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	order, err := h.service.Get(request.Context(), userID, requestutil.Param(request, "orderID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, order)
}
