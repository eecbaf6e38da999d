package main

import (
	"flag"
	"log"
	"os"

	"FeeCast/internal/di"
	"FeeCast/pkg/config"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	app, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}

	log.Printf("env=%s source=%s window_weeks=%d kafka=%t clickhouse=%t redis=%t",
		cfg.Environment, cfg.Source.Type, cfg.Forecast.WindowWeeks,
		cfg.Kafka.Enabled, cfg.ClickHouse.Enabled, cfg.Redis.Enabled)

	if err := app.Run(); err != nil {
		log.Printf("app error: %v", err)
		os.Exit(1)
	}
}
