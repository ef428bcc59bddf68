package main

import (
	"flag"
	"net/http"
	"os"

	"go.uber.org/zap"

	"durak/internal/app"
	"durak/internal/config"
	"durak/internal/ports/ws"
)

func main() {
	configPath := flag.String("config", "", "path to a JSON server config file")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		os.Exit(1)
	}
	defer logger.Sync()

	if *configPath != "" {
		if err := config.LoadServerConfig(*configPath); err != nil {
			logger.Fatal("config load failed", zap.Error(err))
		}
	}
	cfg := config.GetServerConfig()

	svc := app.NewService(nil)
	svc.ChatHistoryLimit = cfg.ChatHistoryLimit
	hub := ws.NewHub(svc, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/games", hub.HandleCreateGame)
	mux.HandleFunc("GET /ws/{id}", hub.HandleSocket)
	mux.Handle("/", http.FileServer(http.Dir(cfg.StaticDir)))

	logger.Info("server listening",
		zap.String("addr", cfg.Addr),
		zap.String("static_dir", cfg.StaticDir))
	if err := http.ListenAndServe(cfg.Addr, mux); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
