package routes

import (
	"net/http"
	"strings"

	"github.com/JaimeStill/transflow/pkg/openapi"
)

// Group organizes routes under a common prefix with shared tags.
type Group struct {
	Prefix   string
	Tags     []string
	Routes   []Route
	Children []Group
}

// Register adds all routes from the given groups to the mux.
func Register(mux *http.ServeMux, groups ...Group) {
	for _, group := range groups {
		registerGroup(mux, "", group)
	}
}

func registerGroup(mux *http.ServeMux, parentPrefix string, group Group) {
	fullPrefix := parentPrefix + group.Prefix
	for _, route := range group.Routes {
		pattern := route.Method + " " + fullPrefix + route.Pattern
		mux.HandleFunc(pattern, route.Handler)
	}
	for _, child := range group.Children {
		registerGroup(mux, fullPrefix, child)
	}
}

// Describe adds every documented route in groups to spec.Paths. Routes without
// an OpenAPI operation are skipped. Group tags apply to operations that carry none.
func Describe(spec *openapi.Spec, groups ...Group) {
	for _, group := range groups {
		describeGroup(spec, "", nil, group)
	}
}

func describeGroup(spec *openapi.Spec, parentPrefix string, parentTags []string, group Group) {
	fullPrefix := parentPrefix + group.Prefix
	tags := group.Tags
	if len(tags) == 0 {
		tags = parentTags
	}

	for _, route := range group.Routes {
		if route.OpenAPI == nil {
			continue
		}

		op := *route.OpenAPI
		if len(op.Tags) == 0 {
			op.Tags = tags
		}

		path := specPath(fullPrefix + route.Pattern)
		item, ok := spec.Paths[path]
		if !ok {
			item = &openapi.PathItem{}
			spec.Paths[path] = item
		}

		switch route.Method {
		case http.MethodGet:
			item.Get = &op
		case http.MethodPost:
			item.Post = &op
		case http.MethodPut:
			item.Put = &op
		case http.MethodDelete:
			item.Delete = &op
		}
	}

	for _, child := range group.Children {
		describeGroup(spec, fullPrefix, tags, child)
	}
}

// specPath converts a ServeMux pattern to an OpenAPI path template.
func specPath(pattern string) string {
	if pattern == "" {
		return "/"
	}
	return strings.ReplaceAll(pattern, "...}", "}")
}
