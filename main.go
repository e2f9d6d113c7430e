package main

import (
	"log"

	"github.com/joho/godotenv"

	"travelease_service/startup"
	"travelease_service/startup/config"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file loaded, using process environment")
	}

	cfg := config.NewConfig()
	server := startup.NewServer(cfg)
	server.Start()
}
