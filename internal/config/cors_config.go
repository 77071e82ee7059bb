package config

import "strings"

const (
	mockAPIPortVar    = "MOCKAPI_PORT"
	mockAPISecretVar  = "MOCKAPI_SECRET"
	allowedOriginsVar = "MOCKAPI_ALLOWED_ORIGINS"
)

// MockAPI configures the development backend in internal/mockapi.
type MockAPI struct{}

var _ MockAPIConfig = MockAPI{}

type AllowedOrigins map[string]struct{}
type nullValue = struct{}

func (a AllowedOrigins) IsAllowedOrigin(origin string) bool {
	_, ok := a[origin]
	return ok
}

func (a AllowedOrigins) String() string {
	var origins []string
	for k := range a {
		origins = append(origins, k)
	}
	return strings.Join(origins, ", ")
}

func (MockAPI) GetMockAPIPort() string {
	port := GetEnv(mockAPIPortVar, "8000")
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}
	return port
}

func (MockAPI) GetMockAPISecret() string {
	return GetEnv(mockAPISecretVar, "dev-secret-change-me")
}

func (MockAPI) GetAllowedOrigins() AllowedOrigins {
	origins := AllowedOrigins{}
	for _, o := range strings.Split(GetEnv(allowedOriginsVar, "http://localhost:3000"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins[o] = nullValue{}
		}
	}
	return origins
}

func (MockAPI) GetAllowedMethods() string {
	return "GET, POST, OPTIONS"
}

func (MockAPI) GetAllowedHeaders() string {
	return "Content-Type, Authorization, X-Request-ID"
}
