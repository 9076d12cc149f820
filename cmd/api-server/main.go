package main

import (
	"log"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"procurement/db"
	"procurement/db/migrations"
	"procurement/internal/handlers"
)

func main() {
	// .env подхватывается при наличии, иначе читаем окружение напрямую
	_ = godotenv.Load()

	connString := os.Getenv("POSTGRES_CONN")
	if connString == "" {
		log.Fatal("POSTGRES_CONN env variable is not set")
	}

	dbConn, err := sqlx.Connect("postgres", connString)
	if err != nil {
		log.Fatalf("Cannot connect to DB: %v", err)
	}
	defer dbConn.Close()

	if err := migrations.Run(dbConn.DB); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	store := db.NewStorage(dbConn)
	h := handlers.NewHandler(store)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/ping", h.PingHandler)

		r.Route("/tenders", func(r chi.Router) {
			r.Post("/new", h.CreateTenderHandler)
			r.Get("/", h.GetTendersHandler)
			r.Get("/my", h.GetUserTendersHandler)
			r.Patch("/{tenderId}/status", h.ChangeTenderStatusHandler)
			r.Patch("/{tenderId}/edit", h.EditTenderHandler)
			r.Put("/{tenderId}/rollback/{version}", h.RollbackTenderHandler)
			r.Get("/{tenderId}/bids", h.GetTenderBidsHandler)
			r.Get("/{tenderId}/reviews", h.GetBidReviewsHandler)
		})

		r.Route("/bids", func(r chi.Router) {
			r.Post("/new", h.CreateBidHandler)
			r.Get("/", h.GetBidsHandler)
			r.Get("/my", h.GetUserBidsHandler)
			r.Patch("/{bidId}/status", h.UpdateBidStatusHandler)
			r.Patch("/{bidId}/edit", h.EditBidHandler)
			r.Put("/{bidId}/rollback/{version}", h.RollbackBidHandler)
			r.Put("/{bidId}/submit_decision", h.SubmitBidDecisionHandler)
			r.Post("/{bidId}/feedback", h.CreateBidFeedbackHandler)
		})

		r.Post("/employees/new", h.CreateEmployeeHandler)
		r.Get("/employees", h.ListEmployeesHandler)
		r.Post("/organizations/new", h.CreateOrganizationHandler)
		r.Post("/organizations/{organizationId}/responsible", h.AddResponsibleHandler)
		r.Get("/organizations/{organizationId}/tenders", h.GetOrganizationTendersHandler)
	})

	serverAddr := os.Getenv("SERVER_ADDRESS")
	if serverAddr == "" {
		serverAddr = "0.0.0.0:8080"
	}

	log.Printf("Starting server on %s", serverAddr)
	log.Fatal(http.ListenAndServe(serverAddr, r))
}
