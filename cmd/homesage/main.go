package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"time"

	"homesage_client/app"
	"homesage_client/config"
)

func main() {
	cfg := config.Load()

	application, err := app.New(cfg, nil)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	startCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	application.Start(startCtx)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)

	sig := <-sigCh
	application.Logger.Infof("Received terminate, graceful shutdown %s", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := application.Shutdown(shutdownCtx); err != nil {
		application.Logger.Errorf("Tracing shutdown failed: %s", err)
	}
}
