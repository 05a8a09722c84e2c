// @title           Mikroblog API
// @version         1.0
// @host            localhost
// @schemes         http https
// @BasePath        /api
// @securityDefinitions.basic BasicAuth
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"mikroblog/internal/api"
	"mikroblog/internal/config"
	"mikroblog/internal/database"
	"mikroblog/internal/websocket"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	_ "mikroblog/docs"

	httpSwagger "github.com/swaggo/http-swagger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Nie można wczytać konfiguracji: %v", err)
	}

	dbpool, err := pgxpool.New(context.Background(), cfg.DB.Source)
	if err != nil {
		log.Fatalf("Nie można połączyć się z bazą danych: %v", err)
	}
	defer dbpool.Close()

	if err := dbpool.Ping(context.Background()); err != nil {
		log.Fatalf("Nie można pingować bazy danych: %v", err)
	}
	log.Println("Pomyślnie połączono z bazą danych")

	wsHub := websocket.NewHub()
	go wsHub.Run()

	store := database.NewStore(dbpool)
	server := api.NewServer(cfg, store, wsHub)

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))
	r.Use(api.MetricsMiddleware)

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("http://%s:%d/swagger/doc.json", cfg.AppHost, cfg.Port)),
	))

	r.Get("/ws", server.ServeWsHandler)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Mikroblog działa! Dokumentacja dostępna pod /swagger/index.html"))
	})

	r.Get("/health", server.HealthCheckHandler)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		// Publiczne odczyty i rejestracja.
		r.Get("/posts", server.ListPostsHandler)
		r.Get("/posts/{postId}", server.GetPostHandler)
		r.Post("/users", server.RegisterHandler)
		r.Post("/tokens", server.CreateTokenHandler)

		// Mutacje wymagają uwierzytelnienia (o ile jest włączone).
		r.Group(func(r chi.Router) {
			r.Use(server.AuthMiddleware)
			r.Post("/posts", server.CreatePostHandler)
			r.Put("/posts/{postId}", server.UpdatePostHandler)
			r.Delete("/posts/{postId}", server.DeletePostHandler)
			r.Get("/me", server.GetCurrentUserHandler)
			r.Delete("/tokens", server.RevokeTokenHandler)
		})
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	log.Printf("Uruchamianie serwera na porcie %s", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatalf("Nie można uruchomić serwera: %v", err)
	}
}
