package adapthttp

import (
	"net/http"

	"slimmom/internal/app"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

// OIDC bundles the runtime pieces of the optional SSO login path.
type OIDC struct {
	Enabled      bool
	Provider     *oidc.Provider
	OAuth2Config *oauth2.Config
}

// Server is the driving HTTP adapter that routes requests to application
// services.
type Server struct {
	auth     *app.AuthService
	diaries  *app.DiaryService
	products *app.ProductService
	oidc     OIDC
}

// New creates a Server wired to the given application services.
func New(auth *app.AuthService, diaries *app.DiaryService, products *app.ProductService, sso OIDC) *Server {
	return &Server{auth: auth, diaries: diaries, products: products, oidc: sso}
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	api.HandleFunc("/calories", s.handleCalories)
	api.HandleFunc("/signup", s.handleSignup)
	api.HandleFunc("/login", s.handleLogin)
	api.HandleFunc("/verify/{verificationToken}", s.handleVerifyEmail)
	api.HandleFunc("/user/verify", s.handleResendVerification)

	api.HandleFunc("/config", s.handleConfig)
	api.HandleFunc("/auth/sso/login", s.handleSSOLogin)
	api.HandleFunc("/auth/sso/callback", s.handleSSOCallback)

	authed := http.NewServeMux()
	authed.HandleFunc("/logout", s.handleLogout)
	authed.HandleFunc("/current-user", s.handleCurrentUser)
	authed.HandleFunc("/current-user/update", s.handleUpdateUser)
	authed.HandleFunc("/homepage", s.handleSubmitMetrics)
	authed.HandleFunc("/homepage/search", s.handleProductSearch)
	authed.HandleFunc("/homepage/diary", s.handleListDiaries)
	authed.HandleFunc("/homepage/diary/add-product", s.handleAddProducts)
	authed.HandleFunc("/homepage/diary/remove/{productId}", s.handleRemoveProduct)
	api.Handle("/", s.authMiddleware(authed))

	root := http.NewServeMux()
	root.Handle("/api/", http.StripPrefix("/api", api))

	return withRequestLog(withNoCache(root))
}
