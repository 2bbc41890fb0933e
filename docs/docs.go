// Package docs registers the OpenAPI description served under /swagger.
// Regenerate the paths with `swag init -g cmd/server/main.go -o docs`.
package docs

import "github.com/swaggo/swag/v2"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Data Hub API",
        "description": "Companies, contacts, interactions, investment projects and export wins of the trade and investment department.",
        "version": "1.0"
    },
    "basePath": "/",
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "paths": {}
}`

// SwaggerInfo holds the exported Swagger info
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Title:            "Data Hub API",
	Description:      "Companies, contacts, interactions, investment projects and export wins of the trade and investment department.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
