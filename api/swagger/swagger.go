package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "School Debate Registration API",
        "description": "Registration portal for the school debate competition: public sign-up, admin review, payment confirmation and school notifications.",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http",
        "https"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Registration", "description": "Public school registration"},
        {"name": "Authentication", "description": "Admin sessions"},
        {"name": "Admin", "description": "Registration review and school messaging"},
        {"name": "System", "description": "Probes and metrics"}
    ],
    "paths": {
        "/health": {
            "get": {
                "tags": ["System"],
                "summary": "Liveness probe",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/ready": {
            "get": {
                "tags": ["System"],
                "summary": "Readiness probe",
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "Database unreachable", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/registration/register": {
            "post": {
                "tags": ["Registration"],
                "summary": "Submit a school registration",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "schoolName", "in": "formData", "required": true, "type": "string"},
                    {"name": "coachName", "in": "formData", "required": true, "type": "string"},
                    {"name": "email", "in": "formData", "required": true, "type": "string"},
                    {"name": "phone", "in": "formData", "required": true, "type": "string"},
                    {"name": "address", "in": "formData", "required": true, "type": "string"},
                    {"name": "state", "in": "formData", "required": true, "type": "string"},
                    {"name": "reason", "in": "formData", "required": true, "type": "string"},
                    {"name": "logo", "in": "formData", "required": true, "type": "file"},
                    {"name": "receipt", "in": "formData", "required": true, "type": "file"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/RegistrationEnvelope"}},
                    "400": {"description": "Validation failed or email already registered", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "413": {"description": "Upload too large", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/registration": {
            "get": {
                "tags": ["Registration"],
                "summary": "List registrations, newest first",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/RegistrationListEnvelope"}}
                }
            }
        },
        "/api/registration/{id}": {
            "delete": {
                "tags": ["Registration"],
                "summary": "Delete a registration and its files",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Deleted; meta.warnings lists files that could not be removed", "schema": {"$ref": "#/definitions/RegistrationEnvelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/admin/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate admin",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK; also sets the adminToken cookie", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid username or password", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/admin/logout": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Clear the session cookie",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/api/admin/me": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Current admin",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/admin/registrations": {
            "get": {
                "tags": ["Admin"],
                "summary": "List registered schools",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/RegistrationListEnvelope"}}
                }
            }
        },
        "/api/admin/schools": {
            "get": {
                "tags": ["Admin"],
                "summary": "List registered schools",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/RegistrationListEnvelope"}}
                }
            }
        },
        "/api/admin/registrations/{id}": {
            "get": {
                "tags": ["Admin"],
                "summary": "Get one registration",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/RegistrationEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/admin/registrations/export": {
            "get": {
                "tags": ["Admin"],
                "summary": "Export registrations as CSV or PDF",
                "produces": ["text/csv", "application/pdf"],
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "Attachment", "schema": {"type": "file"}},
                    "400": {"description": "Unknown format", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/admin/confirm/{id}": {
            "put": {
                "tags": ["Admin"],
                "summary": "Confirm payment and queue the confirmation email",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Confirmed", "schema": {"$ref": "#/definitions/RegistrationEnvelope"}},
                    "400": {"description": "Payment already confirmed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/admin/schools/status/{id}": {
            "put": {
                "tags": ["Admin"],
                "summary": "Change a registration's status",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateStatusRequest"}}
                ],
                "responses": {
                    "200": {"description": "Updated", "schema": {"$ref": "#/definitions/RegistrationEnvelope"}},
                    "400": {"description": "Missing or invalid status", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/admin/schools/{id}": {
            "delete": {
                "tags": ["Admin"],
                "summary": "Delete a school",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Deleted", "schema": {"$ref": "#/definitions/RegistrationEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/admin/send-email": {
            "post": {
                "tags": ["Admin"],
                "summary": "Email any address, optionally with an attachment",
                "consumes": ["application/json", "multipart/form-data"],
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SendEmailRequest"}}
                ],
                "responses": {
                    "200": {"description": "Sent"},
                    "400": {"description": "Validation failed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "500": {"description": "SMTP credentials missing or send failure", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "502": {"description": "Mail server rejected credentials or not reachable", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "Registration": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "regNumber": {"type": "string", "example": "VARSDB-2025-0001"},
                "schoolName": {"type": "string"},
                "coachName": {"type": "string"},
                "email": {"type": "string"},
                "phone": {"type": "string"},
                "address": {"type": "string"},
                "state": {"type": "string"},
                "reason": {"type": "string"},
                "logo": {"type": "string", "description": "Public URL"},
                "receipt": {"type": "string", "description": "Public URL"},
                "status": {"type": "string", "enum": ["Pending", "Confirmed", "Approved", "Rejected", "Disapproved"]},
                "dateRegistered": {"type": "string", "format": "date-time"},
                "updatedAt": {"type": "string", "format": "date-time"}
            }
        },
        "LoginRequest": {
            "type": "object",
            "required": ["username", "password"],
            "properties": {
                "username": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "UpdateStatusRequest": {
            "type": "object",
            "required": ["status"],
            "properties": {
                "status": {"type": "string", "enum": ["Pending", "Confirmed", "Approved", "Rejected", "Disapproved"]}
            }
        },
        "SendEmailRequest": {
            "type": "object",
            "required": ["email", "subject", "message"],
            "properties": {
                "email": {"type": "string"},
                "subject": {"type": "string"},
                "message": {"type": "string"}
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
        },
        "RegistrationEnvelope": {
            "type": "object",
            "properties": {
                "data": {"$ref": "#/definitions/Registration"},
                "meta": {"type": "object"}
            }
        },
        "RegistrationListEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "array", "items": {"$ref": "#/definitions/Registration"}}
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
