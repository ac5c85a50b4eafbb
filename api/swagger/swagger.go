package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "The Storehouse API",
        "description": "Classroom economy: Shekels ledger, Talents, catalog and group buys.",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Kiosk", "description": "Scan-driven student actions"},
        {"name": "Students", "description": "Admin roster management"},
        {"name": "Ledger", "description": "Awards, adjustments and undo"},
        {"name": "Items", "description": "Catalog and group buys"},
        {"name": "Settings", "description": "Economy and currency labels"},
        {"name": "Data", "description": "Export, import, reports and backups"}
    ],
    "paths": {
        "/health": {"get": {"summary": "Health check", "responses": {"200": {"description": "OK"}}}},
        "/ready": {"get": {"summary": "Readiness check", "responses": {"200": {"description": "Ready"}, "503": {"description": "Database unreachable"}}}},
        "/metrics": {"get": {"summary": "Prometheus metrics", "produces": ["text/plain"], "responses": {"200": {"description": "OK"}}}},
        "/qr/{file}": {
            "get": {
                "tags": ["Kiosk"],
                "summary": "QR code PNG for a scan token",
                "produces": ["image/png"],
                "parameters": [
                    {"name": "file", "in": "path", "required": true, "type": "string", "description": "<qr_id>.png"},
                    {"name": "full", "in": "query", "type": "integer", "description": "0 encodes the bare token instead of the kiosk URL"},
                    {"name": "download", "in": "query", "type": "integer"}
                ],
                "responses": {"200": {"description": "PNG"}}
            }
        },
        "/api/v1/kiosk/students": {
            "get": {
                "tags": ["Kiosk"],
                "summary": "Active roster for the kiosk picker",
                "parameters": [{"name": "search", "in": "query", "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/api/v1/kiosk/items": {
            "get": {"tags": ["Kiosk"], "summary": "Available catalog", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/api/v1/kiosk/labels": {
            "get": {"tags": ["Kiosk"], "summary": "Currency labels", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/api/v1/kiosk/s/{qr_id}": {
            "get": {
                "tags": ["Kiosk"],
                "summary": "Student page after a scan",
                "parameters": [{"name": "qr_id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "404": {"description": "Unknown or inactive token"}}
            }
        },
        "/api/v1/kiosk/s/{qr_id}/earn": {
            "post": {
                "tags": ["Kiosk"],
                "summary": "Award an earn category",
                "parameters": [
                    {"name": "qr_id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/EarnRequest"}}
                ],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/api/v1/kiosk/s/{qr_id}/buy": {
            "post": {
                "tags": ["Kiosk"],
                "summary": "Buy one standard item",
                "parameters": [
                    {"name": "qr_id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/BuyRequest"}}
                ],
                "responses": {"200": {"description": "OK"}, "404": {"description": "ITEM_NOT_AVAILABLE"}, "409": {"description": "OUT_OF_STOCK or INSUFFICIENT_FUNDS"}}
            }
        },
        "/api/v1/kiosk/s/{qr_id}/group-buy": {
            "post": {
                "tags": ["Kiosk"],
                "summary": "Contribute to a group buy",
                "parameters": [
                    {"name": "qr_id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/BuyRequest"}}
                ],
                "responses": {"200": {"description": "OK"}, "404": {"description": "NOT_GROUP_BUY"}, "409": {"description": "GROUP_BUY_COMPLETE or INSUFFICIENT_FUNDS"}}
            }
        },
        "/api/v1/kiosk/s/{qr_id}/convert": {
            "post": {
                "tags": ["Kiosk"],
                "summary": "Convert Shekels to one Talent",
                "parameters": [{"name": "qr_id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK"}, "409": {"description": "INSUFFICIENT_FUNDS"}}
            }
        },
        "/api/v1/admin/login": {
            "post": {
                "summary": "Exchange the admin passcode for a session token",
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}],
                "responses": {"200": {"description": "OK"}, "401": {"description": "INVALID_PASSCODE"}}
            }
        },
        "/api/v1/admin/session": {
            "get": {"summary": "Current admin session", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/api/v1/admin/students": {
            "get": {
                "tags": ["Students"],
                "summary": "List students with balances",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "filter", "in": "query", "type": "string", "enum": ["active", "inactive", "all"]},
                    {"name": "search", "in": "query", "type": "string"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Students"],
                "summary": "Create student",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateStudentRequest"}}],
                "responses": {"201": {"description": "Created"}}
            },
            "delete": {
                "tags": ["Students"],
                "summary": "Delete students with their ledger rows",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/BulkDeleteRequest"}}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/v1/admin/students/{id}": {
            "get": {"tags": ["Students"], "summary": "Student detail", "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}},
            "put": {
                "tags": ["Students"],
                "summary": "Update student",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateStudentRequest"}}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/v1/admin/students/{id}/transactions": {
            "get": {
                "tags": ["Students"],
                "summary": "Transaction history, newest first",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/v1/admin/students/{id}/token": {
            "post": {"tags": ["Students"], "summary": "Issue a new scan token", "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}], "responses": {"200": {"description": "OK"}}}
        },
        "/api/v1/admin/students/{id}/earn": {
            "post": {
                "tags": ["Ledger"],
                "summary": "Award an earn category",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/EarnRequest"}}
                ],
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/api/v1/admin/students/{id}/adjust": {
            "post": {
                "tags": ["Ledger"],
                "summary": "Manual signed correction",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AdjustRequest"}}
                ],
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/api/v1/admin/students/{id}/undo": {
            "post": {"tags": ["Ledger"], "summary": "Reverse the latest transaction", "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}], "responses": {"201": {"description": "Created"}, "409": {"description": "NOTHING_TO_UNDO"}}}
        },
        "/api/v1/admin/awards": {
            "post": {
                "tags": ["Ledger"],
                "summary": "Award one category to many students",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/BulkAwardRequest"}}],
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/api/v1/admin/items": {
            "get": {"tags": ["Items"], "summary": "List all items", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}},
            "post": {
                "tags": ["Items"],
                "summary": "Create item",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpsertItemRequest"}}],
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/api/v1/admin/items/{id}": {
            "get": {"tags": ["Items"], "summary": "Get item", "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}], "responses": {"200": {"description": "OK"}}},
            "put": {
                "tags": ["Items"],
                "summary": "Update item",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpsertItemRequest"}}
                ],
                "responses": {"200": {"description": "OK"}}
            },
            "delete": {"tags": ["Items"], "summary": "Delete item", "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}], "responses": {"204": {"description": "No Content"}}}
        },
        "/api/v1/admin/settings": {
            "get": {"tags": ["Settings"], "summary": "Economy and labels", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/api/v1/admin/settings/economy": {
            "put": {
                "tags": ["Settings"],
                "summary": "Replace economy settings",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/EconomySettings"}}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Validation failed"}}
            }
        },
        "/api/v1/admin/settings/labels": {
            "put": {
                "tags": ["Settings"],
                "summary": "Replace currency labels",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CurrencyLabels"}}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/v1/admin/export": {
            "get": {"tags": ["Data"], "summary": "Download the full data set as JSON", "security": [{"BearerAuth": []}], "produces": ["application/json"], "responses": {"200": {"description": "Attachment"}}}
        },
        "/api/v1/admin/import": {
            "post": {
                "tags": ["Data"],
                "summary": "Replace all data with an export",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"type": "object"}}],
                "responses": {"200": {"description": "OK"}, "422": {"description": "INTEGRITY_FAILURE, existing data kept"}}
            }
        },
        "/api/v1/admin/cards.pdf": {
            "get": {
                "tags": ["Students"],
                "summary": "Printable ID cards",
                "security": [{"BearerAuth": []}],
                "produces": ["application/pdf"],
                "parameters": [{"name": "ids", "in": "query", "type": "string", "description": "comma separated student ids, default all active"}],
                "responses": {"200": {"description": "PDF"}}
            }
        },
        "/api/v1/admin/reports/transactions.csv": {
            "get": {
                "tags": ["Data"],
                "summary": "Transaction report as CSV",
                "security": [{"BearerAuth": []}],
                "produces": ["text/csv"],
                "parameters": [
                    {"name": "student_id", "in": "query", "type": "integer"},
                    {"name": "type", "in": "query", "type": "string"},
                    {"name": "from", "in": "query", "type": "string", "format": "date"},
                    {"name": "to", "in": "query", "type": "string", "format": "date"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {"200": {"description": "CSV"}}
            }
        },
        "/api/v1/admin/reports/transactions.pdf": {
            "get": {
                "tags": ["Data"],
                "summary": "Transaction report as PDF",
                "security": [{"BearerAuth": []}],
                "produces": ["application/pdf"],
                "parameters": [
                    {"name": "student_id", "in": "query", "type": "integer"},
                    {"name": "type", "in": "query", "type": "string"},
                    {"name": "from", "in": "query", "type": "string", "format": "date"},
                    {"name": "to", "in": "query", "type": "string", "format": "date"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {"200": {"description": "PDF"}}
            }
        },
        "/api/v1/admin/backups": {
            "get": {"tags": ["Data"], "summary": "List stored backups", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["Data"], "summary": "Queue a backup", "security": [{"BearerAuth": []}], "responses": {"202": {"description": "Accepted"}, "409": {"description": "Backups disabled"}}}
        },
        "/api/v1/admin/backups/jobs/{id}": {
            "get": {"tags": ["Data"], "summary": "Backup job status", "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}, "404": {"description": "Unknown job"}}}
        },
        "/api/v1/backups/download": {
            "get": {
                "tags": ["Data"],
                "summary": "Download a backup with a signed token",
                "produces": ["application/json"],
                "parameters": [{"name": "token", "in": "query", "required": true, "type": "string"}],
                "responses": {"200": {"description": "Attachment"}, "401": {"description": "Invalid or expired token"}}
            }
        }
    },
    "definitions": {
        "LoginRequest": {"type": "object", "required": ["passcode"], "properties": {"passcode": {"type": "string"}}},
        "EarnRequest": {"type": "object", "required": ["type"], "properties": {"type": {"type": "string", "enum": ["attendance", "participation", "memory", "bonus"]}}},
        "BuyRequest": {"type": "object", "required": ["item_id"], "properties": {"item_id": {"type": "integer"}}},
        "AdjustRequest": {"type": "object", "required": ["amount", "reason"], "properties": {"amount": {"type": "integer"}, "reason": {"type": "string"}}},
        "BulkAwardRequest": {"type": "object", "required": ["student_ids", "type"], "properties": {"student_ids": {"type": "array", "items": {"type": "integer"}}, "type": {"type": "string"}}},
        "BulkDeleteRequest": {"type": "object", "required": ["ids"], "properties": {"ids": {"type": "array", "items": {"type": "integer"}}}},
        "CreateStudentRequest": {"type": "object", "required": ["name"], "properties": {"name": {"type": "string"}, "notes": {"type": "string"}, "active": {"type": "boolean"}}},
        "UpdateStudentRequest": {"type": "object", "properties": {"name": {"type": "string"}, "notes": {"type": "string"}, "active": {"type": "boolean"}}},
        "UpsertItemRequest": {
            "type": "object",
            "required": ["name"],
            "properties": {
                "name": {"type": "string"},
                "type": {"type": "string", "enum": ["standard", "group_buy"]},
                "price_shekels": {"type": "integer"},
                "inventory": {"type": "integer"},
                "goal_amount": {"type": "integer"},
                "buy_in_cost": {"type": "integer"},
                "active": {"type": "boolean"},
                "sort_order": {"type": "integer"},
                "category": {"type": "string"},
                "rarity": {"type": "string"}
            }
        },
        "EconomySettings": {
            "type": "object",
            "properties": {
                "attendance_shekels": {"type": "integer"},
                "participation_shekels": {"type": "integer"},
                "memory_verse_shekels": {"type": "integer"},
                "bonus_min": {"type": "integer"},
                "bonus_max": {"type": "integer"},
                "shekels_per_talent": {"type": "integer"}
            }
        },
        "CurrencyLabels": {
            "type": "object",
            "properties": {
                "shekels_label": {"type": "string"},
                "talents_label": {"type": "string"}
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
