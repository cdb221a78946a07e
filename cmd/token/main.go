// Command token issues a bearer token for the /v1 API.
//
//	JWT_SECRET=... go run ./cmd/token -sub gate-operator -ttl 720h
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	jwtmw "plate_reader/internal/platform/jwt"
)

func main() {
	sub := flag.String("sub", "", "token subject (operator or service name)")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	if err := godotenv.Load(".env"); err != nil {
		log.Println("[INFO] .env not found; using system environment variables")
	}

	secret := os.Getenv(jwtmw.EnvKeyJWTSecret)
	if secret == "" {
		log.Fatalf("%s is not set", jwtmw.EnvKeyJWTSecret)
	}
	if *ttl <= 0 {
		log.Fatal("-ttl must be positive")
	}

	token, err := jwtmw.NewGenerator(secret, *ttl).GenerateToken(*sub)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(token)
}
