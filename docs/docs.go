// Package docs holds the Swagger description of the clinic API served at /swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/login": {
            "post": {
                "produces": ["application/json"],
                "tags": ["Authentication"],
                "summary": "User login",
                "parameters": [{"name": "request", "in": "body", "required": true, "schema": {"type": "object"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/util.APIResponse"}}}
            }
        },
        "/logout": {
            "delete": {
                "security": [{"SessionToken": []}],
                "produces": ["application/json"],
                "tags": ["Authentication"],
                "summary": "User logout",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/util.APIResponse"}}}
            }
        },
        "/token/validate": {
            "get": {
                "security": [{"SessionToken": []}],
                "produces": ["application/json"],
                "tags": ["Authentication"],
                "summary": "Validate session token",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/util.APIResponse"}}}
            }
        },
        "/token/refresh": {
            "post": {
                "security": [{"SessionToken": []}],
                "produces": ["application/json"],
                "tags": ["Authentication"],
                "summary": "Refresh session token",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/util.APIResponse"}}}
            }
        },
        "/verify-password": {
            "post": {
                "security": [{"SessionToken": []}],
                "produces": ["application/json"],
                "tags": ["Authentication"],
                "summary": "Verify current user's password",
                "parameters": [{"name": "request", "in": "body", "required": true, "schema": {"type": "object"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/util.APIResponse"}}}
            }
        },
        "/user": {
            "get": {
                "security": [{"SessionToken": []}],
                "produces": ["application/json"],
                "tags": ["User"],
                "summary": "List users (admin only)",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/util.APIResponse"}}}
            },
            "post": {
                "security": [{"SessionToken": []}],
                "produces": ["application/json"],
                "tags": ["User"],
                "summary": "Create user (admin only)",
                "parameters": [{"name": "request", "in": "body", "required": true, "schema": {"type": "object"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/util.APIResponse"}}}
            },
            "patch": {
                "security": [{"SessionToken": []}],
                "produces": ["application/json"],
                "tags": ["User"],
                "summary": "Update current user profile",
                "parameters": [{"name": "request", "in": "body", "required": true, "schema": {"type": "object"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/util.APIResponse"}}}
            }
        },
        "/user/{id}": {
            "get": {
                "security": [{"SessionToken": []}],
                "produces": ["application/json"],
                "tags": ["User"],
                "summary": "Get user info (admin only)",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/util.APIResponse"}}}
            },
            "patch": {
                "security": [{"SessionToken": []}],
                "produces": ["application/json"],
                "tags": ["User"],
                "summary": "Update another user (admin only)",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}, {"name": "request", "in": "body", "required": true, "schema": {"type": "object"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/util.APIResponse"}}}
            },
            "delete": {
                "security": [{"SessionToken": []}],
                "produces": ["application/json"],
                "tags": ["User"],
                "summary": "Delete user (admin only)",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/util.APIResponse"}}}
            }
        },
        "/patient": {
            "get": {
                "security": [{"SessionToken": []}],
                "produces": ["application/json"],
                "tags": ["Patient"],
                "summary": "List all patients",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/util.APIResponse"}}}
            },
            "post": {
                "security": [{"SessionToken": []}],
                "produces": ["application/json"],
                "tags": ["Patient"],
                "summary": "Create a new patient",
                "parameters": [{"name": "request", "in": "body", "required": true, "schema": {"type": "object"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/util.APIResponse"}}}
            }
        },
        "/patient/{id}": {
            "get": {
                "security": [{"SessionToken": []}],
                "produces": ["application/json"],
                "tags": ["Patient"],
                "summary": "Get patient information",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/util.APIResponse"}}}
            },
            "patch": {
                "security": [{"SessionToken": []}],
                "produces": ["application/json"],
                "tags": ["Patient"],
                "summary": "Update patient information",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}, {"name": "request", "in": "body", "required": true, "schema": {"type": "object"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/util.APIResponse"}}}
            },
            "delete": {
                "security": [{"SessionToken": []}],
                "produces": ["application/json"],
                "tags": ["Patient"],
                "summary": "Delete a patient",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/util.APIResponse"}}}
            }
        },
        "/record": {
            "get": {
                "security": [{"SessionToken": []}],
                "produces": ["application/json"],
                "tags": ["ClinicalRecord"],
                "summary": "List clinical records",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/util.APIResponse"}}}
            },
            "post": {
                "security": [{"SessionToken": []}],
                "produces": ["application/json"],
                "tags": ["ClinicalRecord"],
                "summary": "Open a clinical record",
                "parameters": [{"name": "request", "in": "body", "required": true, "schema": {"type": "object"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/util.APIResponse"}}}
            }
        },
        "/record/{id}": {
            "get": {
                "security": [{"SessionToken": []}],
                "produces": ["application/json"],
                "tags": ["ClinicalRecord"],
                "summary": "Get a clinical record",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/util.APIResponse"}}}
            },
            "patch": {
                "security": [{"SessionToken": []}],
                "produces": ["application/json"],
                "tags": ["ClinicalRecord"],
                "summary": "Update a clinical record",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}, {"name": "request", "in": "body", "required": true, "schema": {"type": "object"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/util.APIResponse"}}}
            }
        },
        "/record/{id}/close": {
            "post": {
                "security": [{"SessionToken": []}],
                "produces": ["application/json"],
                "tags": ["ClinicalRecord"],
                "summary": "Close a clinical record",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/util.APIResponse"}}}
            }
        },
        "/therapy-type": {
            "get": {
                "security": [{"SessionToken": []}],
                "produces": ["application/json"],
                "tags": ["Therapy"],
                "summary": "List therapy types",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/util.APIResponse"}}}
            }
        },
        "/therapy": {
            "get": {
                "security": [{"SessionToken": []}],
                "produces": ["application/json"],
                "tags": ["Therapy"],
                "summary": "List therapies",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/util.APIResponse"}}}
            },
            "post": {
                "security": [{"SessionToken": []}],
                "produces": ["application/json"],
                "tags": ["Therapy"],
                "summary": "Prescribe a therapy",
                "parameters": [{"name": "request", "in": "body", "required": true, "schema": {"type": "object"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/util.APIResponse"}}}
            }
        },
        "/therapy/{id}": {
            "get": {
                "security": [{"SessionToken": []}],
                "produces": ["application/json"],
                "tags": ["Therapy"],
                "summary": "Get a therapy",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/util.APIResponse"}}}
            },
            "patch": {
                "security": [{"SessionToken": []}],
                "produces": ["application/json"],
                "tags": ["Therapy"],
                "summary": "Update a therapy",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}, {"name": "request", "in": "body", "required": true, "schema": {"type": "object"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/util.APIResponse"}}}
            }
        },
        "/therapy/{id}/sessions": {
            "post": {
                "security": [{"SessionToken": []}],
                "produces": ["application/json"],
                "tags": ["Therapy"],
                "summary": "Schedule sessions",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}, {"name": "request", "in": "body", "required": true, "schema": {"type": "object"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/util.APIResponse"}}}
            }
        },
        "/therapy/{id}/progress": {
            "get": {
                "security": [{"SessionToken": []}],
                "produces": ["application/json"],
                "tags": ["Therapy"],
                "summary": "Therapy progress",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/util.APIResponse"}}}
            }
        },
        "/therapy/{id}/history": {
            "get": {
                "security": [{"SessionToken": []}],
                "produces": ["application/json"],
                "tags": ["Therapy"],
                "summary": "Therapy audit history",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/util.APIResponse"}}}
            }
        },
        "/therapy/{id}/suspend": {
            "post": {
                "security": [{"SessionToken": []}],
                "produces": ["application/json"],
                "tags": ["Therapy"],
                "summary": "Suspend a therapy",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/util.APIResponse"}}}
            }
        },
        "/therapy/{id}/resume": {
            "post": {
                "security": [{"SessionToken": []}],
                "produces": ["application/json"],
                "tags": ["Therapy"],
                "summary": "Resume a therapy",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/util.APIResponse"}}}
            }
        },
        "/session": {
            "get": {
                "security": [{"SessionToken": []}],
                "produces": ["application/json"],
                "tags": ["Session"],
                "summary": "List therapy sessions",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/util.APIResponse"}}}
            }
        },
        "/session/{id}": {
            "get": {
                "security": [{"SessionToken": []}],
                "produces": ["application/json"],
                "tags": ["Session"],
                "summary": "Get a therapy session",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/util.APIResponse"}}}
            },
            "patch": {
                "security": [{"SessionToken": []}],
                "produces": ["application/json"],
                "tags": ["Session"],
                "summary": "Update a therapy session",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}, {"name": "request", "in": "body", "required": true, "schema": {"type": "object"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/util.APIResponse"}}}
            }
        },
        "/session/{id}/complete": {
            "post": {
                "security": [{"SessionToken": []}],
                "produces": ["application/json"],
                "tags": ["Session"],
                "summary": "Complete a therapy session",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}, {"name": "request", "in": "body", "required": true, "schema": {"type": "object"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/util.APIResponse"}}}
            }
        },
        "/session/{id}/cancel": {
            "post": {
                "security": [{"SessionToken": []}],
                "produces": ["application/json"],
                "tags": ["Session"],
                "summary": "Cancel a therapy session",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/util.APIResponse"}}}
            }
        },
        "/dashboard/stats": {
            "get": {
                "security": [{"SessionToken": []}],
                "produces": ["application/json"],
                "tags": ["Dashboard"],
                "summary": "Dashboard statistics",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/util.APIResponse"}}}
            }
        },
        "/dashboard/activity": {
            "get": {
                "security": [{"SessionToken": []}],
                "produces": ["application/json"],
                "tags": ["Dashboard"],
                "summary": "Recent activity",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/util.APIResponse"}}}
            }
        },
        "/therapist": {
            "get": {
                "security": [{"SessionToken": []}],
                "produces": ["application/json"],
                "tags": ["Therapist"],
                "summary": "List therapists",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/util.APIResponse"}}}
            },
            "post": {
                "security": [{"SessionToken": []}],
                "produces": ["application/json"],
                "tags": ["Therapist"],
                "summary": "Create therapist",
                "parameters": [{"name": "request", "in": "body", "required": true, "schema": {"type": "object"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/util.APIResponse"}}}
            }
        },
        "/therapist/{id}": {
            "patch": {
                "security": [{"SessionToken": []}],
                "produces": ["application/json"],
                "tags": ["Therapist"],
                "summary": "Update therapist",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}, {"name": "request", "in": "body", "required": true, "schema": {"type": "object"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/util.APIResponse"}}}
            },
            "delete": {
                "security": [{"SessionToken": []}],
                "produces": ["application/json"],
                "tags": ["Therapist"],
                "summary": "Delete therapist",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/util.APIResponse"}}}
            }
        }
    },
    "definitions": {
        "util.APIResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean", "example": true},
                "error": {"type": "string", "example": ""},
                "msg": {"type": "string", "example": "Operation successful"},
                "data": {}
            }
        }
    },
    "securityDefinitions": {
        "SessionToken": {
            "type": "apiKey",
            "name": "session-token",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Clinic Therapy API",
	Description:      "Patients, clinical records, therapies and session progress tracking.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
