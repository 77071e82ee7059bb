package mockapi

// Route path constants
// All backend routes are defined here to ensure consistency and prevent typos
const (
	// Every route lives under the API prefix the client's base URL points at
	RouteAPIPrefix = "/api"

	// Auth Routes
	RouteAuthLogin    = "/auth/login/"
	RouteAuthRegister = "/auth/register/"
	RouteAuthRevoke   = "/auth/revoke/"

	// Photo Routes (bearer token required)
	RoutePhotosGallery  = "/photos/gallery/"
	RoutePhotosDownload = "/photos/download/:id/"
	RoutePhotosUpload   = "/photos/upload/"

	// Health
	RouteHealth = "/healthz"
)
