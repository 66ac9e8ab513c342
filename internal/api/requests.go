// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package api

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/tomtom215/cartographus/internal/recommend"
)

// RecommendBody is the JSON body of POST /api/recommend.
type RecommendBody struct {
	Part      string   `json:"part"`
	User      string   `json:"user"`
	Current   string   `json:"current"`
	Whitelist []string `json:"whitelist,omitempty"`
	Count     int      `json:"count"`
}

func (b RecommendBody) toEngineRequest() recommend.RecommendRequest {
	return recommend.RecommendRequest{
		Part:      b.Part,
		User:      b.User,
		Current:   b.Current,
		Whitelist: b.Whitelist,
		Count:     b.Count,
	}
}

func (b RecommendBody) validate() string {
	if b.Part == "" {
		return "part is required"
	}
	if b.User == "" {
		return "user is required"
	}
	if b.Current == "" {
		return "current is required"
	}
	if b.Count <= 0 {
		return "count must be positive"
	}
	return ""
}

// ViewBody is the JSON body of POST /api/view; the GET variant is built
// from query parameters in Handler.GetView.
type ViewBody struct {
	Part  string `json:"part"`
	User  string `json:"user"`
	Item  string `json:"item"`
	ActID string `json:"actid,omitempty"`
}

func (b ViewBody) toEngineRequest() recommend.ViewRequest {
	return recommend.ViewRequest{
		Part:       b.Part,
		User:       b.User,
		Item:       b.Item,
		ActivityID: b.ActID,
	}
}

func (b ViewBody) validate() string {
	if b.Part == "" {
		return "part is required"
	}
	if b.User == "" {
		return "user is required"
	}
	if b.Item == "" {
		return "item is required"
	}
	return ""
}

// itemBody mirrors recommend.Item's wire shape for insert requests.
type itemBody struct {
	ID   string              `json:"id"`
	Part string              `json:"part"`
	Meta map[string][]string `json:"meta"`
}

func (b itemBody) toItem() recommend.Item {
	return recommend.Item{ID: b.ID, Part: b.Part, Meta: b.Meta}
}

func (b itemBody) validate() string {
	if b.ID == "" {
		return "id is required"
	}
	if b.Part == "" {
		return "part is required"
	}
	return ""
}

// deleteItemBody is the JSON body of DELETE /api/items.
type deleteItemBody struct {
	Part string `json:"part"`
	ID   string `json:"id"`
}

func (b deleteItemBody) validate() string {
	if b.Part == "" {
		return "part is required"
	}
	if b.ID == "" {
		return "id is required"
	}
	return ""
}

func decodeJSON(r *http.Request, dst interface{}) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	return dec.Decode(dst)
}
