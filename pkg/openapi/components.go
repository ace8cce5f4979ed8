package openapi

import "maps"

// Security scheme names registered by NewComponents.
const (
	BearerAuth = "bearerAuth"
	HeaderAuth = "principalHeader"
)

// NewComponents returns the components every Transflow document shares:
// the page request and error schemas, one response per error status written
// by handlers.RespondError, and both authentication schemes.
func NewComponents() *Components {
	return &Components{
		Schemas: map[string]*Schema{
			"PageRequest": {
				Type: "object",
				Properties: map[string]*Schema{
					"page":      {Type: "integer", Description: "1-based page number", Example: 1},
					"page_size": {Type: "integer", Example: 20},
					"search":    {Type: "string"},
					"sort":      {Type: "string", Description: "Comma-separated fields, - prefix for descending", Example: "status,-created_at"},
				},
			},
			"Error": {
				Type:       "object",
				Properties: map[string]*Schema{"error": {Type: "string"}},
				Required:   []string{"error"},
			},
		},
		Responses: map[string]*Response{
			"BadRequest":      errorResponse("Invalid request or workflow state"),
			"Unauthorized":    errorResponse("Missing or invalid credentials"),
			"Forbidden":       errorResponse("Caller lacks the role or ownership"),
			"NotFound":        errorResponse("Resource not found"),
			"Conflict":        errorResponse("Uniqueness conflict"),
			"TooManyRequests": errorResponse("Rate limit exceeded"),
		},
		SecuritySchemes: map[string]*SecurityScheme{
			BearerAuth: {
				Type:         "http",
				Scheme:       "bearer",
				BearerFormat: "JWT",
				Description:  "OIDC ID token",
			},
			HeaderAuth: {
				Type:        "apiKey",
				In:          "header",
				Name:        "X-Principal-ID",
				Description: "Principal set by a trusted proxy; X-Principal-Role carries the role",
			},
		},
	}
}

func errorResponse(description string) *Response {
	return &Response{Description: description, Content: jsonContent(SchemaRef("Error"))}
}

// AddSchemas merges schemas into the component schemas, replacing same-named entries.
func (c *Components) AddSchemas(schemas map[string]*Schema) {
	maps.Copy(c.Schemas, schemas)
}
