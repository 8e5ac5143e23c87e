package main

import (
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/punchamoorthee/ledgerbot/internal/api"
	"github.com/punchamoorthee/ledgerbot/internal/bot"
	"github.com/punchamoorthee/ledgerbot/internal/config"
	"github.com/punchamoorthee/ledgerbot/internal/ledger"
	"github.com/punchamoorthee/ledgerbot/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	pg, err := store.NewPostgres(cfg.DBSource)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v", err)
	}
	defer pg.Close()

	// Initialize Layers
	ledgerService := ledger.NewService(pg)
	engine := bot.NewEngine(ledgerService, bot.NewMemorySessions())
	handler := api.NewHandler(engine)

	// Router
	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.Handler())
	r.HandleFunc("/health", handler.HealthCheckHandler).Methods("GET")

	apiV1 := r.PathPrefix("/api/v1").Subrouter()
	apiV1.HandleFunc("/messages", handler.MessageHandler).Methods("POST")

	log.Printf("Server starting on :%s (%s)", cfg.Port, cfg.Env)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatal(err)
	}
}
