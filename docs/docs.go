// Package docs holds the swagger document of the KPI service, registered under
// the "kpis" instance name.
package docs

import "github.com/swaggo/swag"

const docTemplateKPIs = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "license": {
            "name": "Apache 2.0",
            "url": "http://www.apache.org/licenses/LICENSE-2.0.html"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/": {
            "get": {
                "description": "HTML page with the aggregate view, kept live over /ws/dashboard",
                "produces": ["text/html"],
                "tags": ["KPI"],
                "summary": "Dashboard page",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "string"}},
                    "404": {"description": "Not Found", "schema": {"type": "string"}}
                }
            }
        },
        "/compute": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Downloads the month's dataset when the cached copy is missing or stale, then computes and stores a metrics record",
                "produces": ["text/plain"],
                "tags": ["KPI"],
                "summary": "Refresh monthly metrics",
                "parameters": [
                    {"type": "string", "description": "Dataset month, YYYY-MM (default current month)", "name": "month", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "up to date | computed", "schema": {"type": "string"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errorEnvelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/errorEnvelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errorEnvelope"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/errorEnvelope"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/errorEnvelope"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Same as GET /compute",
                "produces": ["text/plain"],
                "tags": ["KPI"],
                "summary": "Refresh monthly metrics",
                "parameters": [
                    {"type": "string", "description": "Dataset month, YYYY-MM (default current month)", "name": "month", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "up to date | computed", "schema": {"type": "string"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errorEnvelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/errorEnvelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errorEnvelope"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/errorEnvelope"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/errorEnvelope"}}
                }
            }
        },
        "/dashboard": {
            "get": {
                "description": "Returns the mean of every stored metrics record",
                "produces": ["application/json"],
                "tags": ["KPI"],
                "summary": "Aggregate metrics",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.AggregateView"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errorEnvelope"}}
                }
            }
        },
        "/dashboard.xlsx": {
            "get": {
                "description": "Aggregate view, every stored metrics record and skipped files as an XLSX workbook",
                "produces": ["application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"],
                "tags": ["KPI"],
                "summary": "Dashboard workbook",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "file"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errorEnvelope"}}
                }
            }
        },
        "/health": {
            "get": {
                "description": "Returns the health status of the service",
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Health Check",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/ingestions": {
            "get": {
                "description": "Lists the most recent refresh runs, newest first",
                "produces": ["application/json"],
                "tags": ["KPI"],
                "summary": "Ingestion history",
                "parameters": [
                    {"type": "integer", "description": "Number of runs (1..100, default 20)", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "array",
                                "items": {"$ref": "#/definitions/models.IngestionRun"}
                            }
                        }
                    },
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errorEnvelope"}}
                }
            }
        },
        "/ws/dashboard": {
            "get": {
                "description": "WebSocket stream of aggregate updates. The current aggregate is sent right after the upgrade.",
                "tags": ["KPI"],
                "summary": "Live dashboard",
                "responses": {
                    "101": {"description": "Switching Protocols", "schema": {"$ref": "#/definitions/models.DashboardUpdateMessage"}}
                }
            }
        }
    },
    "definitions": {
        "errorEnvelope": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "example": "error"},
                "error": {"type": "string"}
            }
        },
        "models.AggregateView": {
            "type": "object",
            "properties": {
                "average_price_per_mile": {"type": "number"},
                "custom_indicator": {"type": "number"},
                "payment_type_counts": {"type": "object", "additionalProperties": {"type": "number"}}
            }
        },
        "models.MetricsRecord": {
            "type": "object",
            "properties": {
                "average_price_per_mile": {"type": "number"},
                "custom_indicator": {"type": "number"},
                "payment_type_counts": {"type": "object", "additionalProperties": {"type": "integer"}}
            }
        },
        "models.IngestionRun": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "month": {"type": "string"},
                "status": {"type": "string", "enum": ["up to date", "computed", "failed"]},
                "message": {"type": "string"},
                "rows_loaded": {"type": "integer"},
                "rows_cleaned": {"type": "integer"},
                "dataset_sha256": {"type": "string"},
                "metrics_file": {"type": "string"},
                "started_at": {"type": "string"},
                "finished_at": {"type": "string"},
                "metrics": {"$ref": "#/definitions/models.MetricsRecord"}
            }
        },
        "models.DashboardUpdateMessage": {
            "type": "object",
            "properties": {
                "type": {"type": "string", "enum": ["aggregate", "no_data"]},
                "data": {"$ref": "#/definitions/models.AggregateView"},
                "files": {"type": "integer"},
                "skipped": {"type": "integer"},
                "message": {"type": "string"},
                "timestamp": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and an admin JWT (see -issue-token).",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfoKPIs holds exported Swagger Info so clients can modify it
var SwaggerInfoKPIs = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Taxi KPI Service API",
	Description:      "Computes monthly KPIs from the NYC TLC yellow taxi trip records and serves the aggregate dashboard.",
	InfoInstanceName: "kpis",
	SwaggerTemplate:  docTemplateKPIs,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfoKPIs.InstanceName(), SwaggerInfoKPIs)
}
