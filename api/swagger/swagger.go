package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "SIWES Logbook API",
        "description": "Role-based logbook portal: daily entries, supervision, assessment",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Authentication", "description": "Login, token refresh, password"},
        {"name": "Users", "description": "Accounts, profile, onboarding"},
        {"name": "Supervision", "description": "Student/supervisor pairing lifecycle"},
        {"name": "Entries", "description": "Daily entry saves and reviews"},
        {"name": "Logbooks", "description": "Logbooks, progress, view state"},
        {"name": "Assessments", "description": "Terminal grading"},
        {"name": "Exports", "description": "Asynchronous CSV/PDF exports"},
        {"name": "Notifications", "description": "Workflow confirmations"},
        {"name": "Legacy", "description": "Legacy portal migration"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate user",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Refresh access token",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/users/me": {
            "get": {
                "tags": ["Users"],
                "summary": "Own profile",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/users/supervisors": {
            "get": {
                "tags": ["Users"],
                "summary": "Selectable supervisors",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/supervision": {
            "get": {
                "tags": ["Supervision"],
                "summary": "Current supervision status",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/supervision/request": {
            "post": {
                "tags": ["Supervision"],
                "summary": "Request supervision",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RequestSupervision"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "A request is already pending or approved"}
                }
            }
        },
        "/supervision/{studentId}/decide": {
            "post": {
                "tags": ["Supervision"],
                "summary": "Decide a pending request",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "studentId", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/Decision"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Request already decided"}
                }
            }
        },
        "/entries": {
            "put": {
                "tags": ["Entries"],
                "summary": "Save a daily entry",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SaveDayRequest"}}
                ],
                "responses": {
                    "200": {"description": "Saved as SUBMITTED", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Supervision not approved"}
                }
            }
        },
        "/entries/{id}/review": {
            "post": {
                "tags": ["Entries"],
                "summary": "Review a submitted entry",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/Decision"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Entry not submitted or changed since viewed"}
                }
            }
        },
        "/students/{studentId}/weeks/{week}": {
            "get": {
                "tags": ["Entries"],
                "summary": "Read one week of entries",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "studentId", "in": "path", "required": true, "type": "string"},
                    {"name": "week", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{studentId}/progress": {
            "get": {
                "tags": ["Logbooks"],
                "summary": "Derived completion metrics",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "studentId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/logbooks": {
            "get": {
                "tags": ["Logbooks"],
                "summary": "Assessor work queue",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/logbooks/{id}/assessment": {
            "post": {
                "tags": ["Assessments"],
                "summary": "Grade a logbook",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SubmitAssessment"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Logbook already graded"}
                }
            },
            "get": {
                "tags": ["Assessments"],
                "summary": "Fetch a logbook's assessment",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "No assessment"}
                }
            }
        },
        "/exports": {
            "post": {
                "tags": ["Exports"],
                "summary": "Enqueue a logbook export",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/notifications": {
            "get": {
                "tags": ["Notifications"],
                "summary": "Recent notifications",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/legacy/sync/{studentId}": {
            "post": {
                "tags": ["Legacy"],
                "summary": "Import a student's records from the legacy backend",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "studentId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "502": {"description": "Legacy backend failure"}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "RequestSupervision": {
            "type": "object",
            "properties": {
                "supervisorId": {"type": "string"}
            }
        },
        "Decision": {
            "type": "object",
            "properties": {
                "outcome": {"type": "string", "enum": ["approved", "rejected"]}
            }
        },
        "SaveDayRequest": {
            "type": "object",
            "properties": {
                "week": {"type": "integer"},
                "day": {"type": "integer", "minimum": 1, "maximum": 5},
                "text": {"type": "string"}
            }
        },
        "SubmitAssessment": {
            "type": "object",
            "properties": {
                "details": {"type": "integer"},
                "practicality": {"type": "integer"},
                "correctness": {"type": "integer"},
                "creativity": {"type": "integer"},
                "presentation": {"type": "integer"},
                "comment": {"type": "string"},
                "result": {"type": "string", "enum": ["pass", "fail"]}
            }
        },
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
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
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
