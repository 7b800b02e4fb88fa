package main

import (
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"freelancehub/config"
	"freelancehub/db"
	"freelancehub/db/migrations"
	"freelancehub/internal/handlers"
	"freelancehub/internal/service"
)

func main() {
	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatal("load config", zap.Error(err))
	}

	dbConn, err := sqlx.Connect("postgres", cfg.DB.ConnString)
	if err != nil {
		log.Fatal("cannot connect to db", zap.Error(err))
	}
	defer dbConn.Close()

	if err := migrations.Run(cfg.DB.ConnString, cfg.DB.MigrationsDir); err != nil {
		log.Fatal("migrations", zap.Error(err))
	}

	store := db.NewStorage(dbConn)
	svc := service.New(store, log, service.Policy{
		AllowMilestonesBeforeAward: cfg.Engagement.AllowMilestonesBeforeAward,
		AllowCloseFromOpen:         cfg.Engagement.AllowCloseFromOpen,
	})
	h := handlers.NewHandler(svc, cfg.JWT.Secret, log)

	r := chi.NewRouter()
	r.Use(handlers.RequestLogger(log))
	r.Use(middleware.Recoverer)

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/ping", h.PingHandler)
		r.Post("/register", h.RegisterHandler)
		r.Post("/login", h.LoginHandler)

		r.Group(func(r chi.Router) {
			r.Use(h.AuthMiddleware)

			// projects
			r.Get("/projects", h.GetProjectsHandler)
			r.Post("/projects/new", h.CreateProjectHandler)
			r.Get("/projects/my", h.GetMyProjectsHandler)
			r.Get("/projects/{projectId}", h.GetProjectHandler)
			r.Patch("/projects/{projectId}/edit", h.EditProjectHandler)
			r.Post("/projects/{projectId}/close", h.CloseProjectHandler)
			r.Post("/projects/{projectId}/award/{bidId}", h.AwardBidHandler)

			// bids
			r.Post("/projects/{projectId}/bid", h.PlaceBidHandler)
			r.Get("/bids/my", h.GetMyBidsHandler)
			r.Delete("/bids/{bidId}", h.WithdrawBidHandler)

			// milestones
			r.Post("/projects/{projectId}/milestones", h.CreateMilestoneHandler)
			r.Post("/milestones/{milestoneId}/status", h.UpdateMilestoneStatusHandler)

			// reviews
			r.Post("/projects/{projectId}/reviews", h.SubmitReviewHandler)
			r.Get("/users/{userId}/reviews", h.GetUserReviewsHandler)

			// profile
			r.Get("/profile", h.GetProfileHandler)
			r.Patch("/profile/edit", h.EditProfileHandler)

			// admin
			r.Get("/admin/users", h.AdminUsersHandler)
			r.Get("/admin/projects", h.AdminProjectsHandler)
		})
	})

	log.Info("starting server", zap.String("address", cfg.Server.Address))
	if err := http.ListenAndServe(cfg.Server.Address, r); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}
