// Package docs registers the OpenAPI document served at /swagger/.
// Regenerate with: swag init -g cmd/api/main.go -o docs
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
        "/events/{eventID}/close": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Moves an OPEN event to CLOSED and notifies its creator. Closing an event that is not OPEN is a no-op and returns closed=false.",
                "produces": ["application/json"],
                "tags": ["events"],
                "summary": "Close an open event",
                "parameters": [
                    {"type": "string", "description": "Event ID (UUID)", "name": "eventID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "data.closed reports whether the event was closed by this call", "schema": {"$ref": "#/definitions/controllers.CloseEventSuccessResponse"}},
                    "400": {"description": "error.code: bad_request (malformed id)", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "401": {"description": "error.code: unauthorized", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "404": {"description": "error.code: not_found", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "500": {"description": "error.code: internal_error", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            }
        },
        "/events/{eventID}/finalize": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Runs the winner selection for a CLOSED event, stores positions, records an audit action and moves the event to FINALIZED. Winners are notified asynchronously.",
                "produces": ["application/json"],
                "tags": ["events"],
                "summary": "Select winners and finalize an event",
                "parameters": [
                    {"type": "string", "description": "Event ID (UUID)", "name": "eventID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "data contains the finalized event, seed, winners and audit action id", "schema": {"$ref": "#/definitions/controllers.FinalizeEventSuccessResponse"}},
                    "400": {"description": "error.code: bad_request (malformed id)", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "401": {"description": "error.code: unauthorized", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "404": {"description": "error.code: not_found", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "409": {"description": "error.code: conflict (wrong status, empty roster or concurrent finalization)", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "422": {"description": "error.code: invalid_event (negative winners count)", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "500": {"description": "error.code: internal_error", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            }
        },
        "/events/{eventID}/audit": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Returns the audit actions recorded for the event, oldest first, each with its participant snapshot. Use page and page_size query params.",
                "produces": ["application/json"],
                "tags": ["audit"],
                "summary": "List the audit trail of an event",
                "parameters": [
                    {"type": "string", "description": "Event ID (UUID)", "name": "eventID", "in": "path", "required": true},
                    {"type": "integer", "description": "Page number (default 1)", "name": "page", "in": "query"},
                    {"type": "integer", "description": "Page size (default 20, max 100)", "name": "page_size", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "data contains items and pagination", "schema": {"$ref": "#/definitions/controllers.ListAuditActionsSuccessResponse"}},
                    "400": {"description": "error.code: bad_request (malformed id)", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "401": {"description": "error.code: unauthorized", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "500": {"description": "error.code: internal_error", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            }
        },
        "/audit/actions/{actionID}/replay": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Re-runs the selection recorded by an audit action from its stored seed and participant snapshot and reports whether the recorded ranking is reproduced. Only randomized event kinds can be replayed.",
                "produces": ["application/json"],
                "tags": ["audit"],
                "summary": "Re-run a recorded selection",
                "parameters": [
                    {"type": "string", "description": "Audit action ID (UUID)", "name": "actionID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "data contains the recorded and reproduced rankings", "schema": {"$ref": "#/definitions/controllers.ReplayAuditActionSuccessResponse"}},
                    "400": {"description": "error.code: bad_request (malformed id)", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "401": {"description": "error.code: unauthorized", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "404": {"description": "error.code: not_found", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "409": {"description": "error.code: conflict (kind cannot be replayed)", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "500": {"description": "error.code: internal_error", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            }
        }
    },
    "definitions": {
        "helpers.APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "request_id": {"type": "string"}
            }
        },
        "helpers.APIResponse": {
            "type": "object",
            "properties": {
                "data": {},
                "error": {"$ref": "#/definitions/helpers.APIError"}
            }
        },
        "helpers.PaginationMeta": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total": {"type": "integer"},
                "total_pages": {"type": "integer"},
                "has_next": {"type": "boolean"}
            }
        },
        "controllers.CloseEventResponse": {
            "type": "object",
            "properties": {
                "closed": {"type": "boolean"}
            }
        },
        "controllers.CloseEventSuccessResponse": {
            "type": "object",
            "properties": {
                "data": {"$ref": "#/definitions/controllers.CloseEventResponse"},
                "error": {"$ref": "#/definitions/helpers.APIError"}
            }
        },
        "controllers.FinalizeEventSuccessResponse": {
            "type": "object",
            "properties": {
                "data": {"$ref": "#/definitions/domain.FinalizationResult"},
                "error": {"$ref": "#/definitions/helpers.APIError"}
            }
        },
        "controllers.ListAuditActionsResponse": {
            "type": "object",
            "properties": {
                "items": {"type": "array", "items": {"$ref": "#/definitions/domain.AuditAction"}},
                "pagination": {"$ref": "#/definitions/helpers.PaginationMeta"}
            }
        },
        "controllers.ListAuditActionsSuccessResponse": {
            "type": "object",
            "properties": {
                "data": {"$ref": "#/definitions/controllers.ListAuditActionsResponse"},
                "error": {"$ref": "#/definitions/helpers.APIError"}
            }
        },
        "controllers.ReplayAuditActionSuccessResponse": {
            "type": "object",
            "properties": {
                "data": {"$ref": "#/definitions/domain.ReplayResult"},
                "error": {"$ref": "#/definitions/helpers.APIError"}
            }
        },
        "domain.Event": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "title": {"type": "string"},
                "creator_id": {"type": "string"},
                "category": {"type": "string"},
                "kind": {"type": "string", "enum": ["giveaway", "raffle", "guessing_contest"]},
                "status": {"type": "string", "enum": ["OPEN", "CLOSED", "FINALIZED", "BLOCKED"]},
                "winners_count": {"type": "integer"},
                "target_number": {"type": "integer"},
                "start_date": {"type": "string"},
                "end_date": {"type": "string"},
                "version": {"type": "integer"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "domain.Entry": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "event_id": {"type": "string"},
                "user_id": {"type": "string"},
                "position": {"type": "integer"},
                "ticket_number": {"type": "integer"},
                "attempts": {"type": "string"},
                "attempt_count": {"type": "integer"},
                "has_won": {"type": "boolean"},
                "submitted_at": {"type": "string"}
            }
        },
        "domain.FinalizationResult": {
            "type": "object",
            "properties": {
                "event": {"$ref": "#/definitions/domain.Event"},
                "seed": {"type": "integer"},
                "winners": {"type": "array", "items": {"$ref": "#/definitions/domain.Entry"}},
                "note": {"type": "string"},
                "audit_action_id": {"type": "string"}
            }
        },
        "domain.AuditParticipant": {
            "type": "object",
            "properties": {
                "entry_id": {"type": "string"},
                "name": {"type": "string"},
                "surname": {"type": "string"},
                "email": {"type": "string"},
                "phone": {"type": "string"},
                "position": {"type": "integer"},
                "ticket_number": {"type": "integer"}
            }
        },
        "domain.AuditAction": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "audit_event_id": {"type": "string"},
                "event_id": {"type": "string"},
                "action_type": {"type": "string"},
                "actor": {"type": "string"},
                "details": {"type": "string"},
                "seed": {"type": "integer"},
                "created_at": {"type": "string"},
                "participants": {"type": "array", "items": {"$ref": "#/definitions/domain.AuditParticipant"}}
            }
        },
        "domain.ReplayResult": {
            "type": "object",
            "properties": {
                "action_id": {"type": "string"},
                "seed": {"type": "integer"},
                "matches": {"type": "boolean"},
                "recorded": {"type": "array", "items": {"$ref": "#/definitions/domain.AuditParticipant"}},
                "reproduced": {"type": "array", "items": {"$ref": "#/definitions/domain.AuditParticipant"}}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
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
	Title:            "Contest Draw API",
	Description:      "Closes events, selects winners and exposes the audit trail of every selection.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
