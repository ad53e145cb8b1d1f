package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Auth Routes - Login & Logout
	RouteSpotifyLogin = "/spotify-login"
	RouteCallback     = "/callback"
	RouteLogout       = "/logout"

	// API Routes
	RouteMe          = "/me"
	RouteSavedTracks = "/saved-tracks"

	// Companion Routes
	RouteAnalyze     = "/analyze"
	RouteAIRecommend = "/ai-recommend"

	// Operational Routes
	RouteHealth  = "/health"
	RouteMetrics = "/metrics"
)
