package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/JiggaBS/AutoAndrewProject-sub000/internal/config"
	"github.com/JiggaBS/AutoAndrewProject-sub000/internal/logger"
	"github.com/JiggaBS/AutoAndrewProject-sub000/internal/router"
	"github.com/JiggaBS/AutoAndrewProject-sub000/internal/setup"
)

func main() {
	var configFolder string
	flag.StringVar(&configFolder, "config_folder", "config", "path to folder with configs")
	flag.Parse()

	cfg := config.MustLoad(configFolder)
	logger.Initialize(cfg.Public.LogLevel, cfg.Public.LogJSON)

	deps, err := setup.SetupDependencies(context.Background(), cfg)
	if err != nil {
		logger.Log.Error("setup failed", "error", err)
		os.Exit(1)
	}
	defer deps.Storage.Cleanup()

	r := router.New(deps)

	port := cfg.Public.Http.Port
	if envPort := os.Getenv("PORT"); envPort != "" {
		fmt.Sscanf(envPort, "%d", &port)
	}

	addr := fmt.Sprintf(":%d", port)
	logger.Log.Info("server started", "addr", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		logger.Log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
