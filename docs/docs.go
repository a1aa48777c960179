// Package docs holds the OpenAPI description served at /swagger when
// SWAGGER_ENABLED is set. Regenerate with `swag init -g cmd/server/main.go`
// after changing handler annotations.
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
        "/chat/turns": {
            "post": {
                "description": "Runs one chat turn: onboarding while the profile is incomplete, otherwise the daily wellness check-in.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Chat"],
                "summary": "Send a check-in message",
                "operationId": "postTurn",
                "parameters": [
                    {"type": "string", "description": "Caller profile id", "name": "X-User-ID", "in": "header", "required": true},
                    {"type": "string", "description": "Idempotency key for safe retries", "name": "Idempotency-Key", "in": "header"},
                    {"description": "Turn payload", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.PostTurnRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.TurnResponse"}},
                    "400": {"description": "Empty or too long message", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "401": {"description": "Missing X-User-ID", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "404": {"description": "Profile not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "500": {"description": "Turn could not be saved", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "502": {"description": "Model answered with invalid output", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/chat/days/{date}/messages": {
            "get": {
                "description": "Returns the caller's messages for the given day, oldest first. Supports ETag revalidation.",
                "produces": ["application/json"],
                "tags": ["Chat"],
                "summary": "Read one day of conversation",
                "operationId": "getDayMessages",
                "parameters": [
                    {"type": "string", "description": "Caller profile id", "name": "X-User-ID", "in": "header", "required": true},
                    {"type": "string", "example": "2026-03-02", "description": "Day (YYYY-MM-DD)", "name": "date", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.DayMessagesResponse"}},
                    "304": {"description": "Not modified"},
                    "400": {"description": "Invalid date", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/devices": {
            "post": {
                "description": "Stores a Firebase Cloud Messaging token for the caller. Registering the same token twice is a no-op.",
                "consumes": ["application/json"],
                "tags": ["Devices"],
                "summary": "Register a push token",
                "operationId": "registerDevice",
                "parameters": [
                    {"type": "string", "description": "Caller profile id", "name": "X-User-ID", "in": "header", "required": true},
                    {"description": "Token", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.RegisterDeviceRequest"}}
                ],
                "responses": {
                    "204": {"description": "Registered"},
                    "400": {"description": "Missing or oversized token", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/clubs/{clubId}/insights": {
            "get": {
                "description": "Responsible users only. scope=team returns the team updates of every team in the club.",
                "produces": ["application/json"],
                "tags": ["Insights"],
                "summary": "List a club's insights",
                "operationId": "listClubInsights",
                "parameters": [
                    {"type": "string", "description": "Caller profile id", "name": "X-User-ID", "in": "header", "required": true},
                    {"type": "string", "description": "Club id", "name": "clubId", "in": "path", "required": true},
                    {"enum": ["club", "team"], "type": "string", "default": "club", "description": "Insight scope", "name": "scope", "in": "query"},
                    {"type": "string", "description": "First day (YYYY-MM-DD)", "name": "from", "in": "query"},
                    {"type": "string", "description": "Last day (YYYY-MM-DD)", "name": "to", "in": "query"},
                    {"maximum": 365, "minimum": 1, "type": "integer", "default": 30, "description": "Max items", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.ListInsightsResponse"}},
                    "400": {"description": "Invalid query", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "403": {"description": "Not allowed for this club", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/clubs/{clubId}/teams/{teamId}/insights": {
            "get": {
                "description": "Open to the team's staff and the club's responsible users.",
                "produces": ["application/json"],
                "tags": ["Insights"],
                "summary": "List a team's insights",
                "operationId": "listTeamInsights",
                "parameters": [
                    {"type": "string", "description": "Caller profile id", "name": "X-User-ID", "in": "header", "required": true},
                    {"type": "string", "description": "Club id", "name": "clubId", "in": "path", "required": true},
                    {"type": "string", "description": "Team id", "name": "teamId", "in": "path", "required": true},
                    {"type": "string", "description": "First day (YYYY-MM-DD)", "name": "from", "in": "query"},
                    {"type": "string", "description": "Last day (YYYY-MM-DD)", "name": "to", "in": "query"},
                    {"maximum": 365, "minimum": 1, "type": "integer", "default": 30, "description": "Max items", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.ListInsightsResponse"}},
                    "400": {"description": "Invalid query", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "403": {"description": "Not allowed for this team", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/clubs/{clubId}/teams/{teamId}/alerts": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Alerts"],
                "summary": "List a team's alerts",
                "operationId": "listTeamAlerts",
                "parameters": [
                    {"type": "string", "description": "Caller profile id", "name": "X-User-ID", "in": "header", "required": true},
                    {"type": "string", "description": "Club id", "name": "clubId", "in": "path", "required": true},
                    {"type": "string", "description": "Team id", "name": "teamId", "in": "path", "required": true},
                    {"enum": ["new", "acknowledged", "resolved"], "type": "string", "description": "Filter by status", "name": "status", "in": "query"},
                    {"maximum": 200, "minimum": 1, "type": "integer", "default": 50, "description": "Max items", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.ListAlertsResponse"}},
                    "304": {"description": "Not modified"},
                    "400": {"description": "Invalid status", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "403": {"description": "Not allowed for this team", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "404": {"description": "Caller has no profile", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/clubs/{clubId}/teams/{teamId}/alerts/{alertId}": {
            "patch": {
                "description": "Moves an alert to new, acknowledged or resolved. Only the status changes.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Alerts"],
                "summary": "Change an alert's status",
                "operationId": "updateAlertStatus",
                "parameters": [
                    {"type": "string", "description": "Caller profile id", "name": "X-User-ID", "in": "header", "required": true},
                    {"type": "string", "description": "Club id", "name": "clubId", "in": "path", "required": true},
                    {"type": "string", "description": "Team id", "name": "teamId", "in": "path", "required": true},
                    {"type": "string", "description": "Alert id", "name": "alertId", "in": "path", "required": true},
                    {"description": "New status", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.UpdateAlertRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/services.AlertUpdateResult"}},
                    "400": {"description": "Invalid status", "schema": {"$ref": "#/definitions/services.AlertUpdateResult"}},
                    "403": {"description": "Permission denied", "schema": {"$ref": "#/definitions/services.AlertUpdateResult"}},
                    "404": {"description": "Alert or caller not found", "schema": {"$ref": "#/definitions/services.AlertUpdateResult"}}
                }
            }
        }
    },
    "definitions": {
        "handlers.ErrorResponse": {
            "type": "object",
            "properties": {
                "request_id": {"type": "string", "example": "123e4567-e89b-12d3-a456-426614174000"},
                "code": {"type": "string", "example": "not_found"},
                "message": {"type": "string", "example": "resource not found"}
            }
        },
        "handlers.PostTurnRequest": {
            "type": "object",
            "properties": {
                "message": {"type": "string", "example": "Slecht geslapen, maar de training was leuk."},
                "metadata": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        },
        "handlers.TurnResponse": {
            "type": "object",
            "properties": {
                "kind": {"type": "string", "enum": ["onboarding", "wellness", "fallback"]},
                "reply": {"type": "string"},
                "onboarding": {"type": "object"},
                "wellness": {"type": "object"},
                "fallback": {"type": "object"},
                "message_id": {"type": "string"},
                "replayed": {"type": "boolean"}
            }
        },
        "handlers.DayMessagesResponse": {
            "type": "object",
            "properties": {
                "date": {"type": "string", "example": "2026-03-02"},
                "messages": {"type": "array", "items": {"type": "object"}}
            }
        },
        "handlers.RegisterDeviceRequest": {
            "type": "object",
            "properties": {
                "token": {"type": "string"}
            }
        },
        "handlers.ListInsightsResponse": {
            "type": "object",
            "properties": {
                "insights": {"type": "array", "items": {"type": "object"}}
            }
        },
        "handlers.ListAlertsResponse": {
            "type": "object",
            "properties": {
                "alerts": {"type": "array", "items": {"type": "object"}}
            }
        },
        "handlers.UpdateAlertRequest": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "enum": ["new", "acknowledged", "resolved"]}
            }
        },
        "services.AlertUpdateResult": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "code": {"type": "string"},
                "message": {"type": "string"},
                "alert": {"type": "object"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Broos check-in API",
	Description:      "Daily wellbeing check-ins for youth athletes, with staff alerts and team insights.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
