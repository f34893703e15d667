// Package docs provides OpenAPI/Swagger documentation for the combat
// simulation API.
package docs

import (
	"github.com/swaggo/swag"
)

// @title Pathfinder 2E Combat Simulation API
// @version 1.0
// @description Runs Monte-Carlo combat simulations between a party and an enemy roster.

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /

// @schemes http https
// @produce json
// @consumes json

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "Pathfinder 2E Combat Simulation API",
	Description:      "Runs Monte-Carlo combat simulations between a party and an enemy roster.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "{{.Title}}",
        "description": "{{.Description}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/v1/simulations": {
            "post": {
                "description": "Builds a party and enemy roster from the request body and runs 100 independent simulations.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["simulations"],
                "summary": "Run a combat simulation batch",
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "Bad Request"
                    }
                }
            }
        },
        "/v1/simulations/async": {
            "post": {
                "description": "Resolves the request's enemies against the bestiary and enqueues a Driver batch job.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["simulations"],
                "summary": "Submit a combat simulation batch for async processing",
                "responses": {
                    "202": {
                        "description": "Accepted"
                    },
                    "400": {
                        "description": "Bad Request"
                    },
                    "503": {
                        "description": "Service Unavailable"
                    }
                }
            }
        },
        "/v1/simulations/async/{taskID}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["simulations"],
                "summary": "Poll an async simulation batch",
                "parameters": [
                    {
                        "name": "taskID",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "404": {
                        "description": "Not Found"
                    }
                }
            }
        }
    }
}`
