package api

import (
	"database/sql"
	"net/http"

	"github.com/erazemk/izposoja/internal/authz"
	"github.com/erazemk/izposoja/internal/model"
)

// Config holds router options.
type Config struct {
	JWTSecret string
	// LoginsPerMinute throttles login attempts per client address. Zero
	// disables throttling.
	LoginsPerMinute int
}

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sql.DB, cfg Config) http.Handler {
	mux := http.NewServeMux()
	policy := authz.NewEngine()

	authHandler := &AuthHandler{DB: db, JWTSecret: cfg.JWTSecret, limiter: newLoginLimiter(cfg.LoginsPerMinute)}
	usersHandler := &UsersHandler{DB: db}
	categoriesHandler := &CategoriesHandler{DB: db, Policy: policy}
	itemsHandler := &ItemsHandler{DB: db, Policy: policy}
	imagesHandler := &ImagesHandler{DB: db, Policy: policy}
	loansHandler := &LoansHandler{DB: db, Policy: policy}
	protocolsHandler := &ProtocolsHandler{DB: db, Policy: policy, loans: loansHandler}
	reviewsHandler := &ReviewsHandler{DB: db, Policy: policy, loans: loansHandler}
	profilesHandler := &ProfilesHandler{DB: db, Policy: policy}

	identity := IdentityMiddleware(cfg.JWTSecret, db)
	requireAdmin := RequireRole(model.RoleAdmin)

	// open runs as guest or user; the policy engine decides per resource.
	open := func(h http.HandlerFunc) http.Handler { return identity(h) }
	// authed rejects guests up front.
	authed := func(h http.HandlerFunc) http.Handler { return identity(RequireAuth(h)) }
	admin := func(h http.HandlerFunc) http.Handler { return identity(requireAdmin(h)) }

	// Auth.
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.Handle("PUT /api/auth/password", authed(authHandler.ChangePassword))
	mux.Handle("POST /api/auth/logout", authed(authHandler.Logout))

	// Users (admin only).
	mux.Handle("GET /api/users", admin(usersHandler.List))
	mux.Handle("POST /api/users", admin(usersHandler.Create))
	mux.Handle("GET /api/users/{id}", admin(usersHandler.Get))
	mux.Handle("PUT /api/users/{id}", admin(usersHandler.Update))
	mux.Handle("PUT /api/users/{id}/password", admin(usersHandler.ResetPassword))
	mux.Handle("DELETE /api/users/{id}", admin(usersHandler.Delete))

	// Categories.
	mux.Handle("GET /api/categories", open(categoriesHandler.List))
	mux.Handle("POST /api/categories", open(categoriesHandler.Create))
	mux.Handle("GET /api/categories/{id}", open(categoriesHandler.Get))
	mux.Handle("PUT /api/categories/{id}", open(categoriesHandler.Update))
	mux.Handle("DELETE /api/categories/{id}", open(categoriesHandler.Delete))

	// Items and their images.
	mux.Handle("GET /api/items", open(itemsHandler.List))
	mux.Handle("POST /api/items", open(itemsHandler.Create))
	mux.Handle("GET /api/items/{id}", open(itemsHandler.Get))
	mux.Handle("PUT /api/items/{id}", open(itemsHandler.Update))
	mux.Handle("DELETE /api/items/{id}", open(itemsHandler.Delete))
	mux.Handle("GET /api/items/{id}/images", open(itemsHandler.ListImages))
	mux.Handle("POST /api/items/{id}/images", open(itemsHandler.UploadImage))

	// Images.
	mux.Handle("GET /api/images/{id}", open(imagesHandler.Get))
	mux.Handle("DELETE /api/images/{id}", open(imagesHandler.Delete))

	// Loans.
	mux.Handle("POST /api/loans", open(loansHandler.Create))
	mux.Handle("GET /api/loans", authed(loansHandler.List))
	mux.Handle("GET /api/loans/{id}", open(loansHandler.Get))
	mux.Handle("PUT /api/loans/{id}/status", open(loansHandler.UpdateStatus))

	// Protocols.
	mux.Handle("GET /api/loans/{id}/pickup-protocol", open(protocolsHandler.GetPickup))
	mux.Handle("PUT /api/loans/{id}/pickup-protocol", open(protocolsHandler.PutPickup))
	mux.Handle("POST /api/loans/{id}/pickup-protocol/images", open(protocolsHandler.UploadPickupImage))
	mux.Handle("GET /api/loans/{id}/return-protocol", open(protocolsHandler.GetReturn))
	mux.Handle("PUT /api/loans/{id}/return-protocol", open(protocolsHandler.PutReturn))
	mux.Handle("POST /api/loans/{id}/return-protocol/images", open(protocolsHandler.UploadReturnImage))

	// Reviews.
	mux.Handle("GET /api/loans/{id}/reviews", open(reviewsHandler.ListForLoan))
	mux.Handle("POST /api/loans/{id}/reviews", open(reviewsHandler.Create))
	mux.Handle("GET /api/reviews/{id}", open(reviewsHandler.Get))
	mux.Handle("PUT /api/reviews/{id}", open(reviewsHandler.Update))
	mux.Handle("DELETE /api/reviews/{id}", open(reviewsHandler.Delete))

	// Profiles.
	mux.Handle("GET /api/profiles/{id}", open(profilesHandler.Get))
	mux.Handle("PUT /api/profiles/{id}", open(profilesHandler.Update))
	mux.Handle("GET /api/profiles/{id}/image", open(profilesHandler.GetImage))
	mux.Handle("PUT /api/profiles/{id}/image", open(profilesHandler.PutImage))

	return mux
}
