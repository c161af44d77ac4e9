// Command hotelrates-token mints a back-office bearer token signed with
// JWT_SECRET.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"hotelrates/internal/infra/config"
	"hotelrates/internal/infra/obs"
	"hotelrates/internal/infra/security"
)

func main() {
	subject := flag.String("sub", "ops", "token subject")
	roles := flag.String("roles", "admin", "comma separated roles")
	ttl := flag.Duration("ttl", 12*time.Hour, "token lifetime")
	flag.Parse()

	logger := obs.NewLogger(os.Getenv("APP_ENV"))
	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	var list []string
	for _, r := range strings.Split(*roles, ",") {
		if r = strings.TrimSpace(r); r != "" {
			list = append(list, r)
		}
	}
	verifier := security.TokenVerifier{Secret: []byte(cfg.JWTSecret), Issuer: security.DefaultIssuer}
	token, err := verifier.Issue(*subject, list, *ttl, time.Now().UTC())
	if err != nil {
		logger.Error("issue token", "error", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
