// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package api

import (
	"net/http"
)

// PostRecommend handles POST /api/recommend.
//
//	@Summary	Request a scored shortlist of candidate items
//	@Router		/api/recommend [post]
func (h *Handler) PostRecommend(w http.ResponseWriter, r *http.Request) {
	var body RecommendBody
	if err := decodeJSON(r, &body); err != nil {
		NewResponseWriter(w, r).BadRequest("invalid JSON body")
		return
	}
	if msg := body.validate(); msg != "" {
		NewResponseWriter(w, r).BadRequest(msg)
		return
	}

	resp, err := h.engine.Recommend(r.Context(), body.toEngineRequest())
	if err != nil {
		h.writeStoreError(w, r, "recommend", err)
		return
	}
	NewResponseWriter(w, r).Success(resp)
}

// GetView handles GET /api/view, accepting both the full (part, user,
// item, actid) and aliased (p, u, i, a) query parameter names.
//
//	@Summary	Record a view via query parameters
//	@Router		/api/view [get]
func (h *Handler) GetView(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	body := ViewBody{
		Part:  firstNonEmpty(q.Get("part"), q.Get("p")),
		User:  firstNonEmpty(q.Get("user"), q.Get("u")),
		Item:  firstNonEmpty(q.Get("item"), q.Get("i")),
		ActID: firstNonEmpty(q.Get("actid"), q.Get("a")),
	}
	h.handleView(w, r, body)
}

// PostView handles POST /api/view with a JSON body.
//
//	@Summary	Record a view
//	@Router		/api/view [post]
func (h *Handler) PostView(w http.ResponseWriter, r *http.Request) {
	var body ViewBody
	if err := decodeJSON(r, &body); err != nil {
		NewResponseWriter(w, r).BadRequest("invalid JSON body")
		return
	}
	h.handleView(w, r, body)
}

func (h *Handler) handleView(w http.ResponseWriter, r *http.Request, body ViewBody) {
	if msg := body.validate(); msg != "" {
		NewResponseWriter(w, r).BadRequest(msg)
		return
	}

	if err := h.engine.View(r.Context(), body.toEngineRequest()); err != nil {
		h.writeStoreError(w, r, "view", err)
		return
	}
	NewResponseWriter(w, r).NoContent()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
