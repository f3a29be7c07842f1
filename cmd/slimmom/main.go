package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"

	adapthttp "slimmom/internal/adapter/http"
	"slimmom/internal/adapter/postgres"
	adaptsmtp "slimmom/internal/adapter/smtp"
	"slimmom/internal/app"
	"slimmom/internal/config"
	"slimmom/internal/domain"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := postgres.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	defer func() { _ = db.Close() }()

	if cfg.ProductsFile != "" {
		if err := seedProducts(db, cfg.ProductsFile); err != nil {
			log.Fatalf("seed products: %v", err)
		}
	}

	sessionRepo := postgres.NewSessionRepo(db)
	diaryRepo := postgres.NewDiaryRepo(db)
	mailer := adaptsmtp.New(cfg.SMTP)

	authSvc := app.NewAuthService(db, sessionRepo, mailer)
	diarySvc := app.NewDiaryService(diaryRepo, db)
	productSvc := app.NewProductService(db)

	sso, err := buildOIDC(cfg.OIDC)
	if err != nil {
		log.Fatalf("oidc: %v", err)
	}

	h := adapthttp.New(authSvc, diarySvc, productSvc, sso).Handler()
	log.Printf("listening on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, h); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}

// seedProducts loads a JSON catalog into an empty products table.
func seedProducts(db *postgres.DB, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var products []domain.Product
	if err := json.Unmarshal(raw, &products); err != nil {
		return err
	}
	return db.SeedProducts(context.Background(), products)
}

func buildOIDC(cfg config.OIDCConfig) (adapthttp.OIDC, error) {
	if !cfg.Enabled() {
		return adapthttp.OIDC{}, nil
	}

	provider, err := oidc.NewProvider(context.Background(), cfg.IssuerURL)
	if err != nil {
		return adapthttp.OIDC{}, err
	}

	return adapthttp.OIDC{
		Enabled:  true,
		Provider: provider,
		OAuth2Config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "email", "profile"},
		},
	}, nil
}
