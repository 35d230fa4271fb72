// Command ucp-merchant runs a merchant-side UCP server: discovery,
// product search, and checkout over HTTP.
//
// Configuration comes from the environment (a .env file is honored):
//
//	ADDR           listen address, default :8080
//	BASE_URL       public base URL advertised in the discovery document
//	MERCHANT_ID    merchant identifier, default demo-merchant
//	MERCHANT_NAME  human-readable merchant name
//	DATABASE_URL   optional Postgres DSN; without it a seeded in-memory
//	               catalog is served
package main

import (
	"database/sql"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	ucp "github.com/ucp-foundation/ucp/go"
	"github.com/ucp-foundation/ucp/go/catalog"
	"github.com/ucp-foundation/ucp/go/checkout"
	ucphttp "github.com/ucp-foundation/ucp/go/http"
)

func main() {
	_ = godotenv.Load()

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if os.Getenv("DEBUG") == "1" {
		logger.SetLevel(logrus.DebugLevel)
	}

	addr := envOr("ADDR", ":8080")
	baseURL := envOr("BASE_URL", "http://localhost"+addr)
	merchant := ucp.Merchant{
		ID:      envOr("MERCHANT_ID", "demo-merchant"),
		Name:    envOr("MERCHANT_NAME", "Demo Merchant"),
		BaseURL: baseURL,
	}

	store, products := openCatalog(logger)

	responder := ucp.NewResponder(
		ucp.WithMerchant(merchant),
		ucp.WithCatalog(store),
	)
	svc := ucphttp.NewService(responder,
		ucphttp.WithCheckouts(checkout.NewService(), products),
		ucphttp.WithLogger(logger),
	)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Mount("/", svc.Handler())

	logger.WithFields(logrus.Fields{
		"addr":     addr,
		"merchant": merchant.ID,
		"baseUrl":  baseURL,
	}).Info("serving UCP")

	if err := http.ListenAndServe(addr, router); err != nil {
		logger.WithError(err).Fatal("server stopped")
	}
}

// openCatalog returns the product store: Postgres when DATABASE_URL is
// set, otherwise a seeded in-memory catalog for local runs.
func openCatalog(logger *logrus.Logger) (ucp.Catalog, ucp.ProductGetter) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		mem := catalog.NewMemory(seedProducts()...)
		logger.WithField("products", mem.Len()).Info("using in-memory catalog")
		return mem, mem
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		logger.WithError(err).Fatal("opening database")
	}
	if err := db.Ping(); err != nil {
		logger.WithError(err).Fatal("pinging database")
	}

	pg := catalog.NewPostgres(db)
	logger.Info("using postgres catalog")
	return pg, pg
}

func seedProducts() []ucp.Product {
	return []ucp.Product{
		{ID: "PROD-001", Title: "Chocochip Cookies", Price: 499, Description: "A dozen soft-baked chocolate chip cookies."},
		{ID: "PROD-002", Title: "Oatmeal Raisin Cookies", Price: 449, Description: "A dozen chewy oatmeal raisin cookies."},
		{ID: "PROD-003", Title: "Cold Brew Coffee", Price: 599, Description: "One liter of slow-steeped cold brew."},
		{ID: "PROD-004", Title: "Ceramic Mug", Price: 1250, Description: "A 12oz stoneware mug."},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
