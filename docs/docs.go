// Package docs registers the OpenAPI description served at /swagger/*.
// Regenerate with: swag init -g cmd/campusconnect/main.go
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
        "/auth/signup": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Sign up",
                "parameters": [
                    {"description": "Sign-up form", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.signupRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.signupResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.messageResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.messageResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handler.messageResponse"}}
                }
            }
        },
        "/auth/verify-email": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Verify email",
                "parameters": [
                    {"description": "Email and code", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.verifyEmailRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.sessionResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.messageResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.messageResponse"}},
                    "410": {"description": "Gone", "schema": {"$ref": "#/definitions/handler.messageResponse"}}
                }
            }
        },
        "/auth/resend-code": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Resend verification code",
                "parameters": [
                    {"description": "Account email", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.emailRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.messageResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.messageResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.messageResponse"}}
                }
            }
        },
        "/auth/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Login",
                "parameters": [
                    {"description": "Credentials", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.loginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.sessionResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.messageResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.verificationRequiredResponse"}}
                }
            }
        },
        "/auth/forgot-password": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Request password reset",
                "parameters": [
                    {"description": "Account email", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.emailRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.signupResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.messageResponse"}}
                }
            }
        },
        "/auth/reset-password": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Reset password",
                "parameters": [
                    {"description": "Email, code and new password", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.resetPasswordRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.messageResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.messageResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.messageResponse"}},
                    "410": {"description": "Gone", "schema": {"$ref": "#/definitions/handler.messageResponse"}}
                }
            }
        },
        "/auth/me": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["profile"],
                "summary": "Current account",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.AccountSummary"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.messageResponse"}}
                }
            }
        },
        "/auth/profile": {
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["profile"],
                "summary": "Update profile",
                "parameters": [
                    {"description": "Fields to change", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.updateProfileRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.AccountSummary"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.messageResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.messageResponse"}}
                }
            }
        },
        "/admin/accounts/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "Look up an account",
                "parameters": [
                    {"type": "string", "description": "Account ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.AccountSummary"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.messageResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.messageResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.messageResponse"}}
                }
            }
        }
    },
    "definitions": {
        "domain.AccountSummary": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "email": {"type": "string"},
                "phone": {"type": "string"},
                "whatsapp": {"type": "string"},
                "role": {"type": "string", "enum": ["student", "admin"]},
                "accessCode": {"type": "string"},
                "isVerified": {"type": "boolean"},
                "createdAt": {"type": "string"},
                "updatedAt": {"type": "string"}
            }
        },
        "handler.messageResponse": {
            "type": "object",
            "properties": {"message": {"type": "string"}}
        },
        "handler.signupRequest": {
            "type": "object",
            "required": ["accessCode", "email", "name", "password", "phone"],
            "properties": {
                "name": {"type": "string"},
                "email": {"type": "string"},
                "password": {"type": "string"},
                "phone": {"type": "string"},
                "whatsapp": {"type": "string"},
                "accessCode": {"type": "string"}
            }
        },
        "handler.signupResponse": {
            "type": "object",
            "properties": {"message": {"type": "string"}, "email": {"type": "string"}}
        },
        "handler.loginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {"email": {"type": "string"}, "password": {"type": "string"}}
        },
        "handler.verifyEmailRequest": {
            "type": "object",
            "required": ["code", "email"],
            "properties": {"email": {"type": "string"}, "code": {"type": "string"}}
        },
        "handler.emailRequest": {
            "type": "object",
            "required": ["email"],
            "properties": {"email": {"type": "string"}}
        },
        "handler.resetPasswordRequest": {
            "type": "object",
            "required": ["code", "email", "newPassword"],
            "properties": {"email": {"type": "string"}, "code": {"type": "string"}, "newPassword": {"type": "string"}}
        },
        "handler.updateProfileRequest": {
            "type": "object",
            "properties": {"name": {"type": "string"}, "phone": {"type": "string"}, "whatsapp": {"type": "string"}}
        },
        "handler.sessionResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "email": {"type": "string"},
                "phone": {"type": "string"},
                "whatsapp": {"type": "string"},
                "role": {"type": "string"},
                "token": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "handler.verificationRequiredResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "requiresVerification": {"type": "boolean"},
                "email": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "CampusConnect API",
	Description:      "Campus-gated sign-up, email verification, login and password recovery.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
