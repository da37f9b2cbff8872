package http

import (
	"context"
	"log/slog"
	"os"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/gofiber/fiber/v2"
)

// DefaultOpenAPIPath is where the API description lives relative to the
// working directory of a deployed binary.
const DefaultOpenAPIPath = "api/openapi.yaml"

const swaggerUIHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>Camslew API</title>
  <link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/swagger-ui-dist@5/swagger-ui.css">
</head>
<body style="margin:0">
  <div id="swagger-ui"></div>
  <script src="https://cdn.jsdelivr.net/npm/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    SwaggerUIBundle({url: '/docs/openapi.json', dom_id: '#swagger-ui', deepLinking: true});
  </script>
</body>
</html>`

// loadOpenAPI reads and validates the API description. The raw YAML is kept
// for /docs/openapi.yaml and a JSON rendering for /docs/openapi.json.
func loadOpenAPI(path string) (yamlDoc, jsonDoc []byte, err error) {
	yamlDoc, err = os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	doc, err := openapi3.NewLoader().LoadFromData(yamlDoc)
	if err != nil {
		return nil, nil, err
	}
	if err := doc.Validate(context.Background()); err != nil {
		return nil, nil, err
	}
	jsonDoc, err = doc.MarshalJSON()
	if err != nil {
		return nil, nil, err
	}
	return yamlDoc, jsonDoc, nil
}

// SetupDocs registers Swagger UI at /docs and the API description under
// /docs/openapi.{yaml,json}. A missing or invalid description is logged
// once and the document routes answer 404.
func SetupDocs(app *fiber.App, path string) {
	if path == "" {
		path = DefaultOpenAPIPath
	}
	yamlDoc, jsonDoc, err := loadOpenAPI(path)
	if err != nil {
		slog.Warn("openapi description unavailable", "path", path, "error", err)
	}

	app.Get("/docs", func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
		return c.SendString(swaggerUIHTML)
	})

	app.Get("/docs/openapi.yaml", func(c *fiber.Ctx) error {
		if yamlDoc == nil {
			return errNotFound(c, "openapi description not found")
		}
		c.Set(fiber.HeaderContentType, "application/yaml")
		return c.Send(yamlDoc)
	})

	app.Get("/docs/openapi.json", func(c *fiber.Ctx) error {
		if jsonDoc == nil {
			return errNotFound(c, "openapi description not found")
		}
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.Send(jsonDoc)
	})
}
