//go:build swagger

package httpapi

import (
	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger"
	"github.com/swaggo/swag"
)

// apiDoc serves a hand-maintained OpenAPI document; regenerate with swag if
// the route surface changes.
type apiDoc struct{}

func (apiDoc) ReadDoc() string { return apiDocJSON }

func init() { swag.Register(swag.Name, apiDoc{}) }

// MountSwagger exposes the swagger UI at /swagger/ when built with -tags=swagger.
func MountSwagger(r chi.Router) {
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
}

const apiDocJSON = `{
  "swagger": "2.0",
  "info": {"title": "powerd API", "version": "1.0"},
  "basePath": "/",
  "paths": {
    "/predict": {"post": {"summary": "Predict household active power draw", "consumes": ["application/json"], "produces": ["application/json"]}},
    "/models": {"get": {"summary": "List registered models", "produces": ["application/json"]}},
    "/models/{id}/reload": {"post": {"summary": "Re-fetch and reload a model artifact", "produces": ["application/json"]}},
    "/status": {"get": {"summary": "Serving state of all models", "produces": ["application/json"]}},
    "/healthz": {"get": {"summary": "Liveness probe"}},
    "/readyz": {"get": {"summary": "Readiness probe"}}
  }
}`
