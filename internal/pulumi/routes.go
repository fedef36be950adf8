package provider

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed assets/routes.yaml
var routesManifest []byte

type routeManifest struct {
	Routes []string `yaml:"routes"`
}

// loadRoutes parses the embedded route manifest and validates that every
// entry has the "<METHOD> <path>" shape the gateway expects.
func loadRoutes() ([]string, error) {
	var m routeManifest
	if err := yaml.Unmarshal(routesManifest, &m); err != nil {
		return nil, fmt.Errorf("invalid route manifest: %w", err)
	}
	if len(m.Routes) == 0 {
		return nil, fmt.Errorf("route manifest declares no routes")
	}
	for _, rk := range m.Routes {
		method, path, ok := strings.Cut(rk, " ")
		if !ok || method == "" || !strings.HasPrefix(path, "/") {
			return nil, fmt.Errorf("route %q is not of the form \"<METHOD> /path\"", rk)
		}
	}
	return m.Routes, nil
}

// routeResourceName derives a stable resource name fragment from a route key.
func routeResourceName(routeKey string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(routeKey) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
