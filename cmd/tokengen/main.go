// cmd/tokengen mints bearer tokens for dashboard clients.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"campuscafe-reports/internal/config"
	"campuscafe-reports/internal/pkg/jwt"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load().JWT

	subject := flag.String("sub", "dashboard", "client name stored in the sub claim")
	roles := flag.String("roles", "reports:read", "comma-separated roles")
	ttl := flag.Duration("ttl", cfg.TTL, "token lifetime")
	flag.Parse()

	if cfg.PrivPath == "" {
		log.Fatal("[TOKENGEN] JWT_PRIVATE_KEY_PATH is required")
	}
	cfg.TTL = *ttl

	gen, err := jwt.LoadGenerator(cfg)
	if err != nil {
		log.Fatalf("[TOKENGEN] %v", err)
	}

	var roleList []string
	for _, r := range strings.Split(*roles, ",") {
		if r = strings.TrimSpace(r); r != "" {
			roleList = append(roleList, r)
		}
	}

	token, jti, err := gen.Generate(*subject, roleList)
	if err != nil {
		log.Fatalf("[TOKENGEN] failed to sign token: %v", err)
	}

	fmt.Fprintf(os.Stderr, "jti=%s expires=%s\n", jti, time.Now().Add(cfg.TTL).Format(time.RFC3339))
	fmt.Println(token)
}
