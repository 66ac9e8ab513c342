// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package api

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cartographus/internal/recommend"
	"github.com/tomtom215/cartographus/internal/recostore"
)

// Handler serves the recommendation HTTP surface: candidate scoring,
// view/feedback intake, item management, and model inspection/training.
type Handler struct {
	engine *recommend.Engine
	store  recostore.Store
	logger zerolog.Logger
}

// NewHandler constructs a Handler over engine and its backing store.
func NewHandler(engine *recommend.Engine, store recostore.Store, logger zerolog.Logger) *Handler {
	return &Handler{
		engine: engine,
		store:  store,
		logger: logger.With().Str("component", "api_handler").Logger(),
	}
}

// writeStoreError maps a storage-trait error to the appropriate HTTP
// status, following spec.md §7's Input/Storage/Serialization/
// ConcurrencyRetryExhaustion classification.
func (h *Handler) writeStoreError(w http.ResponseWriter, r *http.Request, op string, err error) {
	rw := NewResponseWriter(w, r)
	switch {
	case errors.Is(err, recostore.ErrInput):
		rw.BadRequest(err.Error())
	case errors.Is(err, recostore.ErrStorage), errors.Is(err, recostore.ErrSerialization), errors.Is(err, recostore.ErrConcurrencyExhausted):
		h.logger.Error().Err(err).Str("op", op).Msg("storage error")
		rw.InternalError("a storage error occurred")
	default:
		h.logger.Error().Err(err).Str("op", op).Msg("unhandled error")
		rw.InternalError("an internal error occurred")
	}
}

// PostItems handles POST /api/items: inserts an item, 204 on success.
//
//	@Summary	Insert or replace an item
//	@Router		/api/items [post]
func (h *Handler) PostItems(w http.ResponseWriter, r *http.Request) {
	var body itemBody
	if err := decodeJSON(r, &body); err != nil {
		NewResponseWriter(w, r).BadRequest("invalid JSON body")
		return
	}
	if msg := body.validate(); msg != "" {
		NewResponseWriter(w, r).BadRequest(msg)
		return
	}

	if err := h.store.Insert(r.Context(), body.toItem()); err != nil {
		h.writeStoreError(w, r, "insert_item", err)
		return
	}
	NewResponseWriter(w, r).NoContent()
}

// DeleteItems handles DELETE /api/items: removes an item, 204 on success.
//
//	@Summary	Delete an item
//	@Router		/api/items [delete]
func (h *Handler) DeleteItems(w http.ResponseWriter, r *http.Request) {
	var body deleteItemBody
	if err := decodeJSON(r, &body); err != nil {
		NewResponseWriter(w, r).BadRequest("invalid JSON body")
		return
	}
	if msg := body.validate(); msg != "" {
		NewResponseWriter(w, r).BadRequest(msg)
		return
	}

	if err := h.store.Delete(r.Context(), body.Part, body.ID); err != nil {
		h.writeStoreError(w, r, "delete_item", err)
		return
	}
	NewResponseWriter(w, r).NoContent()
}

// GetItems handles GET /api/items?id=&part=: returns the item or 404.
//
//	@Summary	Fetch an item
//	@Router		/api/items [get]
func (h *Handler) GetItems(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	part := r.URL.Query().Get("part")
	if id == "" || part == "" {
		NewResponseWriter(w, r).BadRequest("id and part query parameters are required")
		return
	}

	item, ok, err := h.store.FindItem(r.Context(), part, id)
	if err != nil {
		h.writeStoreError(w, r, "find_item", err)
		return
	}
	if !ok {
		NewResponseWriter(w, r).NotFound("item not found")
		return
	}
	NewResponseWriter(w, r).Success(item)
}

// GetModel handles GET /api/model/{name}: returns the named model's
// weights, falling back to the default model when name is "default".
//
//	@Summary	Fetch a model's weights
//	@Router		/api/model/{name} [get]
func (h *Handler) GetModel(name string, w http.ResponseWriter, r *http.Request) {
	if name == "" {
		NewResponseWriter(w, r).BadRequest("model name is required")
		return
	}
	if name == "default" {
		model, err := h.store.FindDefaultModel(r.Context())
		if err != nil {
			h.writeStoreError(w, r, "find_default_model", err)
			return
		}
		NewResponseWriter(w, r).Success(model.Weights)
		return
	}

	model, ok, err := h.store.FindModel(r.Context(), name)
	if err != nil {
		h.writeStoreError(w, r, "find_model", err)
		return
	}
	if !ok {
		NewResponseWriter(w, r).NotFound("model not found")
		return
	}
	NewResponseWriter(w, r).Success(model.Weights)
}

// PostModelTrain handles POST /api/model/{name}/train: runs one training
// tick of the global training controller. The {name} segment identifies
// the caller's intent but training always operates on the single default
// model (spec.md §4.10 has no per-partition training loop). A skipped
// tick (too little signal, or no held-out AUC improvement) is reported
// as success, not an error, per spec.md §7.
//
//	@Summary	Trigger a training tick
//	@Router		/api/model/{name}/train [post]
func (h *Handler) PostModelTrain(w http.ResponseWriter, r *http.Request) {
	err := h.engine.Train(r.Context())
	var skipped *recostore.TrainingSkipped
	if err != nil && !errors.As(err, &skipped) {
		h.logger.Error().Err(err).Msg("training tick failed")
		NewResponseWriter(w, r).InternalError("training failed")
		return
	}
	if skipped != nil {
		h.logger.Info().Str("reason", skipped.Reason).Msg("training tick skipped")
	}
	NewResponseWriter(w, r).NoContent()
}
