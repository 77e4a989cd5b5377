package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"storefront/internal/config"
	"storefront/internal/service/auth"
)

// token mints a bearer token for local testing with the configured secret.
func main() {
	var (
		subject string
		role    string
		ttl     time.Duration
	)
	flag.StringVar(&subject, "sub", "", "Subject id placed in the token")
	flag.StringVar(&role, "role", "", "Role claim, e.g. admin")
	flag.DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime, 0 for no expiry")
	flag.Parse()

	if subject == "" {
		flag.Usage()
		os.Exit(2)
	}

	verifier, err := auth.NewVerifier(config.FromEnv().JWTSecret)
	if err != nil {
		log.Fatalf("init verifier: %v", err)
	}
	token, err := verifier.Issue(subject, role, ttl)
	if err != nil {
		log.Fatalf("sign token: %v", err)
	}
	fmt.Println(token)
}
