// Command token prints a signed access token for local testing.
//
//	JWT_SECRET=... go run ./cmd/token -role LOAN_OFFICER
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"lending-engine/internal/adapter/middleware"
	"lending-engine/internal/config"
	"lending-engine/internal/domain/access"
	"lending-engine/pkg/id"
)

func main() {
	sub := flag.String("sub", "", "principal id (32-char hex); random when empty")
	role := flag.String("role", string(access.RoleApplicant), "APPLICANT, LOAN_OFFICER, RISK_ANALYST or ADMIN")
	ttl := flag.Duration("ttl", time.Hour, "token lifetime")
	flag.Parse()

	cfg := config.Load()
	if cfg.JWTSecret == "" {
		fmt.Fprintln(os.Stderr, "JWT_SECRET is not set")
		os.Exit(1)
	}
	r, ok := access.ParseRole(*role)
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown role %q\n", *role)
		os.Exit(2)
	}
	if *sub == "" {
		*sub = id.NewID32()
	}
	if !id.Valid(*sub) {
		fmt.Fprintf(os.Stderr, "invalid sub %q\n", *sub)
		os.Exit(2)
	}

	tok, err := middleware.IssueToken([]byte(cfg.JWTSecret), access.Principal{ID: *sub, Role: r}, *ttl)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println(tok)
}
