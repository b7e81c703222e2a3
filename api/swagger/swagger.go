package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "School Tests API",
        "description": "Students, scheduled tests and the links between them",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Admin sessions"},
        {"name": "Students", "description": "Student accounts"},
        {"name": "Tests", "description": "Scheduled tests"},
        {"name": "Export", "description": "Test calendar downloads"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Database reachable"},
                    "503": {"description": "Database unreachable"}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Log in as admin",
                "consumes": ["application/json", "application/x-www-form-urlencoded"],
                "parameters": [
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "Logged in, session cookie set", "schema": {"$ref": "#/definitions/Student"}},
                    "400": {"description": "Bad credentials or already logged in", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "500": {"description": "Admin without password", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/auth/logout": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Log out",
                "responses": {"200": {"description": "Session cookie cleared"}}
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Current student",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Student"}},
                    "401": {"description": "Not logged in", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/auth/signup": {
            "post": {
                "tags": ["Students"],
                "summary": "Create student",
                "description": "Admin only. Listed tests get the new student mirrored in.",
                "consumes": ["application/json", "application/x-www-form-urlencoded"],
                "parameters": [
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/StudentPayload"}}
                ],
                "responses": {
                    "200": {"description": "Created", "schema": {"$ref": "#/definitions/Student"}},
                    "400": {"description": "Validation failed", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "401": {"description": "Not logged in or not admin", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/auth/{id}": {
            "put": {
                "tags": ["Students"],
                "summary": "Update student",
                "description": "Admin only. Falsy fields are ignored.",
                "consumes": ["application/json", "application/x-www-form-urlencoded"],
                "parameters": [
                    {"in": "path", "name": "id", "type": "string", "required": true},
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/StudentPayload"}}
                ],
                "responses": {
                    "200": {"description": "Updated", "schema": {"$ref": "#/definitions/Student"}},
                    "400": {"description": "Validation failed", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "401": {"description": "Not logged in or not admin", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            },
            "delete": {
                "tags": ["Students"],
                "summary": "Delete student",
                "description": "Admin only. Removes the student from every test. Deleting yourself logs you out.",
                "parameters": [
                    {"in": "path", "name": "id", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Deleted"},
                    "400": {"description": "Unknown or invalid id", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "401": {"description": "Not logged in or not admin", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/students/{id}": {
            "get": {
                "tags": ["Students"],
                "summary": "Get student",
                "parameters": [
                    {"in": "path", "name": "id", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Student"}},
                    "400": {"description": "Unknown or invalid id", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "401": {"description": "Not logged in or not admin", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/test": {
            "get": {
                "tags": ["Tests"],
                "summary": "List tests",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/Test"}}}
                }
            },
            "post": {
                "tags": ["Tests"],
                "summary": "Create test",
                "description": "Admin only. Listed students get the test mirrored in.",
                "consumes": ["application/json", "application/x-www-form-urlencoded"],
                "parameters": [
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/TestPayload"}}
                ],
                "responses": {
                    "200": {"description": "Created", "schema": {"$ref": "#/definitions/Test"}},
                    "400": {"description": "Validation failed", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "401": {"description": "Not logged in or not admin", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/test/{idOrDate}": {
            "get": {
                "tags": ["Tests"],
                "summary": "Get test by id or day",
                "description": "A valid id is looked up directly. Anything else is parsed as a date and the first test of that day is returned. The body is null when nothing matches.",
                "parameters": [
                    {"in": "path", "name": "idOrDate", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Test"}},
                    "400": {"description": "Invalid date", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/test/{id}": {
            "put": {
                "tags": ["Tests"],
                "summary": "Update test",
                "description": "Admin only. Falsy fields and students are ignored.",
                "consumes": ["application/json", "application/x-www-form-urlencoded"],
                "parameters": [
                    {"in": "path", "name": "id", "type": "string", "required": true},
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/TestPayload"}}
                ],
                "responses": {
                    "200": {"description": "Updated", "schema": {"$ref": "#/definitions/Test"}},
                    "400": {"description": "Validation failed", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "401": {"description": "Not logged in or not admin", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            },
            "delete": {
                "tags": ["Tests"],
                "summary": "Delete test",
                "description": "Admin only. Removes the test from every listed student.",
                "parameters": [
                    {"in": "path", "name": "id", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Deleted"},
                    "400": {"description": "Unknown or invalid id", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "401": {"description": "Not logged in or not admin", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/export/tests": {
            "get": {
                "tags": ["Export"],
                "summary": "Export test calendar",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"in": "query", "name": "format", "type": "string", "enum": ["csv", "pdf"], "default": "csv"}
                ],
                "responses": {
                    "200": {"description": "File", "schema": {"type": "file"}},
                    "400": {"description": "Unsupported format", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        }
    },
    "definitions": {
        "ErrorBody": {
            "type": "object",
            "properties": {
                "err": {"type": "string"}
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
        "Student": {
            "type": "object",
            "properties": {
                "_id": {"type": "string", "format": "uuid"},
                "username": {"type": "string"},
                "email": {"type": "string"},
                "password": {"type": "string", "description": "bcrypt hash"},
                "isAdmin": {"type": "boolean"},
                "tests": {"type": "array", "items": {"type": "string", "format": "uuid"}},
                "createdAt": {"type": "string", "format": "date-time"}
            }
        },
        "StudentPayload": {
            "type": "object",
            "properties": {
                "username": {"type": "string"},
                "email": {"type": "string"},
                "isAdmin": {"type": "boolean"},
                "password": {"type": "string", "description": "required for admins, 6 to 255 characters"},
                "tests": {"type": "array", "items": {"type": "string", "format": "uuid"}}
            }
        },
        "Test": {
            "type": "object",
            "properties": {
                "_id": {"type": "string", "format": "uuid"},
                "subject": {"type": "string"},
                "testType": {"type": "string", "enum": ["written", "oral"]},
                "students": {"type": "array", "items": {"type": "string", "format": "uuid"}},
                "additionalNotes": {"type": "string"},
                "testDate": {"type": "string", "format": "date-time"},
                "createdAt": {"type": "string", "format": "date-time"}
            }
        },
        "TestPayload": {
            "type": "object",
            "properties": {
                "subject": {"type": "string"},
                "testType": {"type": "string", "enum": ["written", "oral"]},
                "testDate": {"type": "string"},
                "additionalNotes": {"type": "string"},
                "students": {"type": "array", "items": {"type": "string", "format": "uuid"}}
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
