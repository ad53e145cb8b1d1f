package server

func (s *Server) initRoutes() {
	// Operational routes: no auth, no rate limit
	s.RegisterRouteFunc("GET "+RouteHealth, s.HealthHandler())
	s.RegisterRouteHandler("GET "+RouteMetrics, s.metrics.Handler())

	// LOGIN
	s.RegisterRouteHandler("GET "+RouteSpotifyLogin, ChainMiddleware(s.SpotifyLoginHandler(), s.APIMiddleware(RouteSpotifyLogin)...))
	s.RegisterRouteHandler("GET "+RouteCallback, ChainMiddleware(s.OAuthCallbackHandler(), s.APIMiddleware(RouteCallback)...))
	s.RegisterRouteHandler("POST "+RouteLogout, ChainMiddleware(s.LogoutHandler(), s.APIMiddleware(RouteLogout)...))

	// Session protected API routes; input is validated before the session is touched
	s.RegisterRouteHandler("GET "+RouteMe, ChainMiddleware(s.MeHandler(), s.APIMiddleware(RouteMe, s.RequireSession())...))
	s.RegisterRouteHandler("GET "+RouteSavedTracks, ChainMiddleware(s.SavedTracksHandler(),
		s.APIMiddleware(RouteSavedTracks, ValidateInput(s.validate, parseSavedTracksQuery), s.RequireSession())...))

	// Companion routes
	s.RegisterRouteHandler("POST "+RouteAnalyze, ChainMiddleware(s.AnalyzeHandler(), s.APIMiddleware(RouteAnalyze)...))
	s.RegisterRouteHandler("POST "+RouteAIRecommend, ChainMiddleware(s.AIRecommendHandler(),
		s.APIMiddleware(RouteAIRecommend, ValidateInput(s.validate, parseMoodRequest), s.RequireSession())...))
}
