// Package docs holds the swagger document of the news proxy
package docs

import "github.com/swaggo/swag"

// @title News Proxy API
// @version 1.0
// @description Thin proxy in front of NewsData.io with cursor pagination

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:3000
// @BasePath /

func init() {
	swag.Register(swag.Name, &swag.Spec{
		InfoInstanceName: "swagger",
		SwaggerTemplate:  docTemplate,
	})
}

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "News Proxy API",
        "description": "Thin proxy in front of NewsData.io. Pages are addressed by the opaque nextPage cursor returned with each response.",
        "version": "1.0.0",
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        }
    },
    "host": "localhost:3000",
    "basePath": "/",
    "schemes": ["http", "https"],
    "produces": ["application/json"],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "operationId": "healthCheck",
                "responses": {
                    "200": {
                        "description": "Service is healthy",
                        "schema": {
                            "type": "object",
                            "properties": {
                                "status": {"type": "string", "example": "healthy"},
                                "service": {"type": "string", "example": "news-proxy"}
                            }
                        }
                    }
                }
            }
        },
        "/all-news": {
            "get": {
                "summary": "Latest news",
                "operationId": "getLatestNews",
                "parameters": [
                    {"$ref": "#/parameters/size"},
                    {"$ref": "#/parameters/page"},
                    {
                        "name": "q",
                        "in": "query",
                        "type": "string",
                        "description": "Free text query, defaults to world"
                    }
                ],
                "responses": {
                    "200": {"$ref": "#/responses/feed"},
                    "400": {"$ref": "#/responses/invalid"},
                    "429": {"$ref": "#/responses/invalid"},
                    "500": {"$ref": "#/responses/failure"}
                }
            }
        },
        "/category/{category}": {
            "get": {
                "summary": "News of a category",
                "operationId": "getCategoryNews",
                "parameters": [
                    {
                        "name": "category",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Category slug such as technology or sports"
                    },
                    {
                        "name": "country",
                        "in": "query",
                        "type": "string",
                        "description": "Optional two-letter country code"
                    },
                    {"$ref": "#/parameters/size"},
                    {"$ref": "#/parameters/page"}
                ],
                "responses": {
                    "200": {"$ref": "#/responses/feed"},
                    "400": {"$ref": "#/responses/invalid"},
                    "429": {"$ref": "#/responses/invalid"},
                    "500": {"$ref": "#/responses/failure"}
                }
            }
        },
        "/country/{iso}": {
            "get": {
                "summary": "News of a country",
                "operationId": "getCountryNews",
                "parameters": [
                    {
                        "name": "iso",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Two-letter country code"
                    },
                    {"$ref": "#/parameters/size"},
                    {"$ref": "#/parameters/page"}
                ],
                "responses": {
                    "200": {"$ref": "#/responses/feed"},
                    "400": {"$ref": "#/responses/invalid"},
                    "429": {"$ref": "#/responses/invalid"},
                    "500": {"$ref": "#/responses/failure"}
                }
            }
        }
    },
    "parameters": {
        "size": {
            "name": "size",
            "in": "query",
            "type": "integer",
            "description": "Page size between 1 and 10, defaults to 10"
        },
        "page": {
            "name": "page",
            "in": "query",
            "type": "string",
            "description": "Opaque cursor from a previous nextPage"
        }
    },
    "responses": {
        "feed": {
            "description": "A page of articles",
            "schema": {"$ref": "#/definitions/FeedResponse"}
        },
        "invalid": {
            "description": "Request rejected before reaching the upstream",
            "schema": {"$ref": "#/definitions/ErrorResponse"}
        },
        "failure": {
            "description": "Upstream failure",
            "schema": {"$ref": "#/definitions/ErrorResponse"}
        }
    },
    "definitions": {
        "Article": {
            "type": "object",
            "properties": {
                "article_id": {"type": "string"},
                "title": {"type": "string"},
                "description": {"type": "string"},
                "link": {"type": "string"},
                "image_url": {"type": "string"},
                "published_at": {"type": "string", "format": "date-time"},
                "source_id": {"type": "string"},
                "source_name": {"type": "string"},
                "creator": {"type": "array", "items": {"type": "string"}},
                "category": {"type": "array", "items": {"type": "string"}},
                "country": {"type": "array", "items": {"type": "string"}},
                "language": {"type": "string"}
            }
        },
        "FeedResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean", "example": true},
                "status": {"type": "integer", "example": 200},
                "message": {"type": "string", "example": "Successfully fetched the data"},
                "data": {"type": "array", "items": {"$ref": "#/definitions/Article"}},
                "nextPage": {"type": "string", "x-nullable": true},
                "totalResults": {"type": "integer"}
            }
        },
        "ErrorResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean", "example": false},
                "status": {"type": "integer", "example": 500},
                "message": {"type": "string", "example": "Failed to fetch data from the API"},
                "error": {"type": "object"}
            }
        }
    }
}`
