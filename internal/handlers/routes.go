package handlers

import "net/http"

// RegisterRoutes wires HTTP handlers into the provided ServeMux.
func RegisterRoutes(mux *http.ServeMux, deps Dependencies) {
	health := HealthHandler{}
	auth := AuthHandler{
		Verifier:   deps.Verifier,
		Identities: deps.Identities,
		Tokens:     deps.Tokens,
		Limiter:    deps.LoginLimiter,
	}
	users := UserHandler{Auth: deps.Auth}
	videos := VideoHandler{Media: deps.Media, Auth: deps.Auth, MaxUploadBytes: deps.MaxUploadBytes}

	mux.HandleFunc("/healthz", health.Handle)
	mux.HandleFunc("POST /api/v1/auth/login", auth.Login)
	mux.HandleFunc("GET /api/v1/users/me", users.Me)
	mux.HandleFunc("GET /api/v1/videos", videos.List)
	mux.HandleFunc("POST /api/v1/videos", videos.Create)
	mux.HandleFunc("GET /api/v1/videos/{id}", videos.Get)
	mux.HandleFunc("DELETE /api/v1/videos/{id}", videos.Delete)
	mux.HandleFunc("GET /api/v1/videos/{id}/stream", videos.Stream)
	mux.HandleFunc("GET /api/v1/videos/{id}/thumbnail", videos.Thumbnail)
}
