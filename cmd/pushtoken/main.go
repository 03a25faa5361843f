// Command pushtoken mints the bearer token an event source presents to the
// access request push endpoint.
package main

import (
	"flag"
	"fmt"
	"log"

	"accreditation-backend/internal/config"
	"accreditation-backend/internal/security"
)

func main() {
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	source := flag.String("source", "firestore-trigger", "Name of the event source the token is issued to")
	ttl := flag.Duration("ttl", 0, "Token lifetime (0 never expires)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if !cfg.PushEnabled() {
		log.Fatalf("Push trigger is disabled (trigger mode %q)", cfg.Trigger.Mode)
	}

	token, err := security.NewTokenManager(cfg.Trigger.PushTokenSecret).GeneratePushToken(*source, *ttl)
	if err != nil {
		log.Fatalf("Failed to generate token: %v", err)
	}
	fmt.Println(token)
}
