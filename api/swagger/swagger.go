package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Interaction Dashboard API",
        "description": "Session-cached material interaction table with filters and exports.",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Sessions", "description": "Dashboard session lifecycle"},
        {"name": "Dashboard", "description": "Material interaction table and filters"},
        {"name": "System", "description": "Instrumentation"}
    ],
    "paths": {
        "/sessions": {
            "post": {
                "tags": ["Sessions"],
                "summary": "Start a dashboard session",
                "description": "Called once per dashboard load. The returned ID partitions the interaction cache.",
                "produces": ["application/json"],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/dashboard/interactions": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Material interaction table with filter options",
                "produces": ["application/json"],
                "parameters": [
                    {"name": "X-Session-ID", "in": "header", "type": "string"},
                    {"name": "sessionId", "in": "query", "type": "string"},
                    {"name": "startDate", "in": "query", "type": "string", "format": "date"},
                    {"name": "endDate", "in": "query", "type": "string", "format": "date"},
                    {"name": "students", "in": "query", "type": "array", "items": {"type": "string"}, "collectionFormat": "multi"},
                    {"name": "materials", "in": "query", "type": "array", "items": {"type": "string"}, "collectionFormat": "multi"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Missing session or invalid date range", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "502": {"description": "Upstream source failed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/dashboard/interactions/export": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Download the filtered interaction table",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "X-Session-ID", "in": "header", "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "required": true, "enum": ["csv", "pdf"]},
                    {"name": "startDate", "in": "query", "type": "string", "format": "date"},
                    {"name": "endDate", "in": "query", "type": "string", "format": "date"},
                    {"name": "students", "in": "query", "type": "array", "items": {"type": "string"}, "collectionFormat": "multi"},
                    {"name": "materials", "in": "query", "type": "array", "items": {"type": "string"}, "collectionFormat": "multi"}
                ],
                "responses": {
                    "200": {"description": "File download", "schema": {"type": "file"}},
                    "400": {"description": "Invalid request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/system/metrics": {
            "get": {
                "tags": ["System"],
                "summary": "Instrumentation snapshot",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "DisplayRow": {
            "type": "object",
            "properties": {
                "Student": {"type": "string"},
                "Material": {"type": "string"},
                "Day": {"type": "string", "example": "Mon"},
                "Start": {"type": "string", "example": "09:00 AM"},
                "End": {"type": "string", "example": "09:30 AM"}
            }
        },
        "InteractionDashboard": {
            "type": "object",
            "properties": {
                "startDate": {"type": "string"},
                "endDate": {"type": "string"},
                "rows": {"type": "array", "items": {"$ref": "#/definitions/DisplayRow"}},
                "studentOptions": {"type": "array", "items": {"type": "string"}},
                "materialOptions": {"type": "array", "items": {"type": "string"}},
                "total": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
