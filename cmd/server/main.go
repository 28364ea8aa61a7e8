package main

import (
	"log"

	"magaza-backend/internal/config"
	"magaza-backend/internal/database"
	"magaza-backend/internal/idgen"
	"magaza-backend/internal/server"
)

func main() {
	cfg := config.Load()
	database.Init(cfg)
	idgen.Init()

	app := server.New(cfg)

	log.Println("Server çalışıyor port:", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal(err)
	}
}
