// Package docs registers the Swagger document served at /swagger/*any.
// Regenerate with `swag init -g internal/app/app.go` after changing handler annotations.
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
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "paths": {
        "/api/login": {
            "post": {
                "tags": ["auth"], "summary": "Вход в систему",
                "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "401": {"description": "Unauthorized"}}
            }
        },
        "/api/users": {
            "get":  {"tags": ["users"], "summary": "Список пользователей", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["users"], "summary": "Создать пользователя", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created"}, "403": {"description": "Forbidden"}, "409": {"description": "Conflict"}}}
        },
        "/api/users/me": {
            "get": {"tags": ["users"], "summary": "Текущий пользователь", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/api/opportunities": {
            "get": {
                "tags": ["opportunities"], "summary": "Все сделки", "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/Opportunity"}}}}
            },
            "put": {
                "tags": ["opportunities"], "summary": "Массовый upsert", "security": [{"BearerAuth": []}],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"type": "array", "items": {"$ref": "#/definitions/Opportunity"}}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/UpsertResponse"}}, "400": {"description": "Bad Request"}}
            },
            "post": {
                "tags": ["opportunities"], "summary": "Создать сделку", "security": [{"BearerAuth": []}],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/Opportunity"}}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/Opportunity"}}, "409": {"description": "Conflict"}}
            }
        },
        "/api/opportunities/{id}": {
            "get": {
                "tags": ["opportunities"], "summary": "Сделка по id", "security": [{"BearerAuth": []}],
                "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Opportunity"}}, "404": {"description": "Not Found"}}
            }
        },
        "/api/accounts": {
            "get":  {"tags": ["accounts"], "summary": "Список аккаунтов", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["accounts"], "summary": "Создать аккаунт", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created"}}}
        },
        "/api/activities": {
            "get":  {"tags": ["activities"], "summary": "Таймлайн активностей", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["activities"], "summary": "Записать активность", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created"}}}
        },
        "/api/config": {
            "get":  {"tags": ["config"], "summary": "Настройки рабочего пространства", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["config"], "summary": "Сохранить настройки", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/api/ai/score":         {"post": {"tags": ["ai"], "summary": "Оценка лида", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}, "502": {"description": "Bad Gateway"}}}},
        "/api/ai/analysis":      {"post": {"tags": ["ai"], "summary": "Глубокий анализ", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}, "502": {"description": "Bad Gateway"}}}},
        "/api/ai/chat":          {"post": {"tags": ["ai"], "summary": "Чат с советником", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}, "502": {"description": "Bad Gateway"}}}},
        "/api/ai/outreach":      {"post": {"tags": ["ai"], "summary": "Черновик письма", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}, "502": {"description": "Bad Gateway"}}}},
        "/api/ai/outreach/send": {"post": {"tags": ["ai"], "summary": "Отправить письмо", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}, "502": {"description": "Bad Gateway"}}}},
        "/api/ai/brief":         {"get":  {"tags": ["ai"], "summary": "Утренний бриф", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}, "502": {"description": "Bad Gateway"}}}},
        "/api/reports/summary":      {"get": {"tags": ["reports"], "summary": "KPI дашборда", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/api/reports/pipeline.pdf": {"get": {"tags": ["reports"], "summary": "Отчёт по воронке (PDF)", "security": [{"BearerAuth": []}], "produces": ["application/pdf"], "responses": {"200": {"description": "OK"}}}}
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {"email": {"type": "string"}, "password": {"type": "string"}}
        },
        "Opportunity": {
            "type": "object",
            "required": ["id", "company_name", "stage"],
            "properties": {
                "id": {"type": "string"},
                "account_id": {"type": "string"},
                "primary_contact_id": {"type": "string"},
                "company_name": {"type": "string"},
                "contact_name": {"type": "string"},
                "email": {"type": "string"},
                "phone": {"type": "string"},
                "website": {"type": "string"},
                "industry": {"type": "string"},
                "revenue_range": {"type": "string"},
                "stage": {"type": "string", "enum": ["PROSPECT", "OUTREACH", "ENGAGED", "DISCOVERY", "PROPOSAL", "NEGOTIATION", "CLOSED_WON", "CLOSED_LOST"]},
                "score": {"$ref": "#/definitions/Score"},
                "notes": {"type": "string"},
                "assigned_to": {"type": "string"},
                "assigned_to_name": {"type": "string"},
                "last_contact": {"type": "string", "format": "date-time"},
                "created_at": {"type": "string", "format": "date-time"}
            }
        },
        "Score": {
            "type": "object",
            "properties": {
                "fit": {"type": "number"},
                "need": {"type": "number"},
                "timing": {"type": "number"},
                "readiness": {"type": "number"},
                "composite": {"type": "number"},
                "rationale": {"type": "string"}
            }
        },
        "UpsertResponse": {
            "type": "object",
            "properties": {"success": {"type": "boolean"}, "count": {"type": "integer"}}
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Yourgency Sync Gateway API",
	Description:      "Sales pipeline persistence and AI advisor endpoints.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
