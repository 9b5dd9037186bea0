package main

import (
	"log"
	"net/http"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/roompitch/server/internal/handlers"
	"github.com/roompitch/server/internal/journal"
	"github.com/roompitch/server/internal/middleware"
)

func main() {
	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)

	// The journal is optional: without Redis the coordinator still runs,
	// it just stops emitting action records for the historian.
	j, err := journal.Connect()
	if err != nil {
		logger.Warnf("action journal disabled: %v", err)
		j = nil
	} else {
		defer j.Close()
	}

	srv := handlers.NewCoordinatorServer(j)

	mux := http.NewServeMux()
	mux.Handle("/ws", middleware.LogMiddleware(logger)(http.HandlerFunc(
		handlers.RoomWSHandler(logger, srv),
	)))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}
	logger.Infof("Running on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
