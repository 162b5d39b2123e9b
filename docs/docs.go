package docs

import "github.com/swaggo/swag"

const docTemplate = `{
  "swagger": "2.0",
  "info": {
    "title": "Floor Report Backend",
    "description": "Reconciles assignment and validation exports into the expedition closing report",
    "version": "1.0"
  },
  "basePath": "/",
  "paths": {
    "/healthz": {"get": {"tags": ["health"], "summary": "Store health", "responses": {"200": {"description": "ok"}}}},
    "/api/reports": {
      "post": {
        "tags": ["reports"],
        "summary": "Generate expedition report",
        "consumes": ["multipart/form-data"],
        "produces": ["application/json"],
        "parameters": [
          {"name": "assignment", "in": "formData", "type": "file", "required": true, "description": "assignment export (repeatable)"},
          {"name": "audit", "in": "formData", "type": "file", "required": true, "description": "validation export"},
          {"name": "window", "in": "formData", "type": "string", "description": "window key (MANHA, TARDE, NOITE)"},
          {"name": "notes", "in": "formData", "type": "string", "description": "closing notes"},
          {"name": "X-Admin-Key", "in": "header", "type": "string"}
        ],
        "responses": {"200": {"description": "run id and report"}, "400": {"description": "invalid input"}}
      }
    },
    "/api/runs": {"get": {"tags": ["runs"], "summary": "List runs", "parameters": [{"name": "limit", "in": "query", "type": "integer"}], "responses": {"200": {"description": "runs"}}}},
    "/api/runs/latest": {"get": {"tags": ["runs"], "summary": "Latest run", "responses": {"200": {"description": "run"}, "404": {"description": "no runs"}}}},
    "/api/runs/{id}": {"get": {"tags": ["runs"], "summary": "Run details", "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}], "responses": {"200": {"description": "run"}, "404": {"description": "not found"}}}},
    "/api/runs/{id}/report.csv": {"get": {"tags": ["runs"], "summary": "Run report as CSV", "produces": ["text/csv"], "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}], "responses": {"200": {"description": "csv"}, "409": {"description": "run has no report"}}}},
    "/api/windows": {"get": {"tags": ["windows"], "summary": "Configured windows", "responses": {"200": {"description": "windows"}}}},
    "/api/debug/window": {
      "get": {
        "tags": ["debug"],
        "summary": "Debug window resolution",
        "parameters": [
          {"name": "delivery_date", "in": "query", "type": "string", "required": true},
          {"name": "window", "in": "query", "type": "string", "required": true},
          {"name": "X-Admin-Key", "in": "header", "type": "string"}
        ],
        "responses": {"200": {"description": "resolution"}}
      }
    }
  }
}`

func init() {
	swag.Register(swag.Name, &s{})
}

type s struct{}

func (s *s) ReadDoc() string {
	return docTemplate
}
