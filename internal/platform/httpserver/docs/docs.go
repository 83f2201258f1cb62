// Package docs registers the OpenAPI document served at /swagger/doc.json.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/trace/v1/products": {
            "post": {
                "summary": "Register a product",
                "parameters": [
                    {"name": "X-Account-Id", "in": "header", "type": "string", "required": true},
                    {"name": "Idempotency-Key", "in": "header", "type": "string", "required": true}
                ],
                "responses": {"201": {"description": "Created"}}
            },
            "get": {
                "summary": "List products by owner or manufacturer",
                "parameters": [
                    {"name": "owner", "in": "query", "type": "string"},
                    {"name": "manufacturer", "in": "query", "type": "string"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/trace/v1/products/{product_id}": {
            "get": {
                "summary": "Get a product",
                "parameters": [{"name": "product_id", "in": "path", "type": "integer", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            }
        },
        "/api/trace/v1/products/{product_id}/events": {
            "post": {
                "summary": "Record a lifecycle event",
                "parameters": [
                    {"name": "product_id", "in": "path", "type": "integer", "required": true},
                    {"name": "X-Account-Id", "in": "header", "type": "string", "required": true}
                ],
                "responses": {"200": {"description": "OK"}, "409": {"description": "Invalid transition"}}
            },
            "get": {
                "summary": "Get the event history of a product",
                "parameters": [{"name": "product_id", "in": "path", "type": "integer", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/trace/v1/products/{product_id}/owner": {
            "get": {
                "summary": "Get the current owner of a product",
                "parameters": [{"name": "product_id", "in": "path", "type": "integer", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/trace/v1/products/{product_id}/owners": {
            "get": {
                "summary": "Get the ownership history of a product",
                "parameters": [{"name": "product_id", "in": "path", "type": "integer", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/trace/v1/products/{product_id}/verify": {
            "get": {
                "summary": "Check whether a product carries a verification event",
                "parameters": [{"name": "product_id", "in": "path", "type": "integer", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/authz/v1/accounts/grant": {
            "post": {
                "summary": "Authorize an account (admin only)",
                "parameters": [{"name": "X-Account-Id", "in": "header", "type": "string", "required": true}],
                "responses": {"200": {"description": "OK"}, "403": {"description": "Admin only"}}
            }
        },
        "/api/authz/v1/accounts/revoke": {
            "post": {
                "summary": "Revoke an account (admin only)",
                "parameters": [{"name": "X-Account-Id", "in": "header", "type": "string", "required": true}],
                "responses": {"200": {"description": "OK"}, "403": {"description": "Admin only"}}
            }
        },
        "/api/authz/v1/accounts/{account_id}": {
            "get": {
                "summary": "Check whether an account is authorized",
                "parameters": [{"name": "account_id", "in": "path", "type": "string", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/authz/v1/admin": {
            "get": {
                "summary": "Get the configured admin account",
                "responses": {"200": {"description": "OK"}}
            }
        }
    }
}`

var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "TraceChain API",
	Description:      "Product provenance ledger with lifecycle events, ownership tracking and authorization.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
