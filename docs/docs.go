// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

// Package docs registers the recommendation service's OpenAPI document
// with swaggo/swag's runtime registry, mirroring the generated-docs
// package swag init produces from the @Summary/@Router annotations on
// internal/api's handlers.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Cartographus Recommendation API",
        "description": "Ranks items for a partition/user/current-item combination using co-occurrence, recency, and popularity ranked lists plus a trained logistic-regression model.",
        "contact": {
            "name": "GitHub Repository",
            "url": "https://github.com/tomtom215/cartographus/issues"
        },
        "license": {
            "name": "AGPL-3.0-or-later",
            "url": "https://www.gnu.org/licenses/agpl-3.0.html"
        },
        "version": "1.0"
    },
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/recommend": {
            "post": {
                "summary": "Request a scored shortlist of candidate items",
                "tags": ["Recommend"],
                "responses": {
                    "200": {"description": "ranked candidates"},
                    "400": {"description": "invalid request"}
                }
            }
        },
        "/api/view": {
            "get": {
                "summary": "Record a view via query parameters",
                "tags": ["Recommend"],
                "responses": {"204": {"description": "recorded"}}
            },
            "post": {
                "summary": "Record a view",
                "tags": ["Recommend"],
                "responses": {"204": {"description": "recorded"}}
            }
        },
        "/api/items": {
            "get": {
                "summary": "Fetch an item",
                "tags": ["Items"],
                "responses": {"200": {"description": "item"}, "404": {"description": "not found"}}
            },
            "post": {
                "summary": "Insert or replace an item",
                "tags": ["Items"],
                "responses": {"204": {"description": "stored"}}
            },
            "delete": {
                "summary": "Delete an item",
                "tags": ["Items"],
                "responses": {"204": {"description": "deleted"}}
            }
        },
        "/api/model/{name}": {
            "get": {
                "summary": "Fetch a model's weights",
                "tags": ["Model"],
                "parameters": [
                    {"name": "name", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {"200": {"description": "model weights"}, "404": {"description": "not found"}}
            }
        },
        "/api/model/{name}/train": {
            "post": {
                "summary": "Trigger a training tick",
                "tags": ["Model"],
                "parameters": [
                    {"name": "name", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {"204": {"description": "training ran or was skipped"}, "500": {"description": "training failed"}}
            }
        },
        "/healthz": {
            "get": {
                "summary": "Report service and storage health",
                "tags": ["Core"],
                "responses": {"200": {"description": "healthy"}, "503": {"description": "degraded"}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Cartographus Recommendation API",
	Description:      "Ranks items for a partition/user/current-item combination using co-occurrence, recency, and popularity ranked lists plus a trained logistic-regression model.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
