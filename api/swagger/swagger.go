package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Schedule Conflict API",
        "description": "Read-only conflict analysis over the school scheduling snapshot",
        "version": "0.1.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Conflicts", "description": "Whole-schedule conflict reports"},
        {"name": "Schedule", "description": "Completion and placement queries"},
        {"name": "Students", "description": "Student-scoped conflict views"},
        {"name": "Teachers", "description": "Teacher-scoped conflict views"},
        {"name": "Rooms", "description": "Room-scoped conflict views"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"}
                }
            }
        },
        "/conflicts": {
            "get": {
                "tags": ["Conflicts"],
                "summary": "List all schedule conflicts for a term",
                "parameters": [
                    {"name": "termId", "in": "query", "type": "string", "required": true},
                    {"name": "severity", "in": "query", "type": "string", "enum": ["CRITICAL", "HIGH", "MEDIUM", "LOW"]}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error"}
                }
            }
        },
        "/conflicts/dashboard": {
            "get": {
                "tags": ["Conflicts"],
                "summary": "Conflict dashboard summary",
                "parameters": [
                    {"name": "termId", "in": "query", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/conflicts/violations": {
            "get": {
                "tags": ["Conflicts"],
                "summary": "List constraint violations",
                "parameters": [
                    {"name": "termId", "in": "query", "type": "string", "required": true},
                    {"name": "type", "in": "query", "type": "string", "enum": ["CAPACITY", "TEACHER_LOAD"]}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/conflicts/opportunities": {
            "get": {
                "tags": ["Conflicts"],
                "summary": "List schedule optimization opportunities",
                "parameters": [
                    {"name": "termId", "in": "query", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/conflicts/quality": {
            "get": {
                "tags": ["Conflicts"],
                "summary": "Schedule quality metrics",
                "parameters": [
                    {"name": "termId", "in": "query", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedule/completion": {
            "get": {
                "tags": ["Schedule"],
                "summary": "Schedule assignment completion percentage",
                "parameters": [
                    {"name": "termId", "in": "query", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedule/alternative-slots": {
            "get": {
                "tags": ["Schedule"],
                "summary": "Open placements for a course given teacher and room constraints",
                "parameters": [
                    {"name": "termId", "in": "query", "type": "string", "required": true},
                    {"name": "courseId", "in": "query", "type": "string", "required": true},
                    {"name": "teacherId", "in": "query", "type": "string"},
                    {"name": "roomId", "in": "query", "type": "string"},
                    {"name": "days", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{id}/conflicts": {
            "get": {
                "tags": ["Students"],
                "summary": "Conflicts within one student's schedule",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "termId", "in": "query", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{id}/enrollment-check": {
            "get": {
                "tags": ["Students"],
                "summary": "Check whether a student can join a course section",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "termId", "in": "query", "type": "string", "required": true},
                    {"name": "courseId", "in": "query", "type": "string", "required": true},
                    {"name": "sectionId", "in": "query", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Student or course not found"}
                }
            }
        },
        "/teachers/{id}/conflicts": {
            "get": {
                "tags": ["Teachers"],
                "summary": "Conflicts within one teacher's schedule",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "termId", "in": "query", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/teachers/{id}/availability": {
            "get": {
                "tags": ["Teachers"],
                "summary": "Open day/period combinations for a teacher",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "termId", "in": "query", "type": "string", "required": true},
                    {"name": "days", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/rooms/{id}/conflicts": {
            "get": {
                "tags": ["Rooms"],
                "summary": "Conflicts within one room's schedule",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "termId", "in": "query", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/rooms/{id}/availability": {
            "get": {
                "tags": ["Rooms"],
                "summary": "Open day/period combinations for a room",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "termId", "in": "query", "type": "string", "required": true},
                    {"name": "days", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "limit": {"type": "integer"},
                "totalCount": {"type": "integer"},
                "totalPages": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
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
