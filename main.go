package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"food-delivery-relay/config"
	"food-delivery-relay/eventbus"
	"food-delivery-relay/handlers"
	"food-delivery-relay/lifecycle"
	"food-delivery-relay/realtime"
	"food-delivery-relay/routes"
	"food-delivery-relay/store"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Status history
	db, err := config.OpenDB(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	history := store.NewHistoryRepo(db)
	log.Println("✅ History database ready")

	// Optional Kafka mirror
	var mirror realtime.Mirror
	var producer *eventbus.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer = eventbus.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.ServiceName, 1024)
		producer.Start(ctx)
		mirror = producer
		log.Printf("Mirroring events to kafka topic %s", cfg.KafkaTopic)
	}

	hub := realtime.NewHub(cfg.SendBuffer, mirror)
	engine := lifecycle.New(store.New(), hub, history)
	h := handlers.New(cfg, engine, hub, history)
	router := routes.NewRouter(cfg, h)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: router}
	go func() {
		log.Printf("🚀 Relay running on http://localhost:%s (websocket at /ws)", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	// hijacked websocket connections are not tracked by Shutdown
	hub.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown: %v", err)
	}
	cancel()
	if producer != nil {
		producer.WaitClosed()
	}
}
