// Command devtoken mints an access token for calling the API locally.
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/config"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/jwt"
)

func main() {
	userID := flag.String("user", "dev-user", "user_id claim")
	companyID := flag.String("company", "", "company_id claim")
	role := flag.String("role", string(user.RoleOwner), "role claim: owner, manager or employee")
	flag.Parse()

	if *companyID == "" {
		log.Fatal("-company is required")
	}
	if !user.Role(*role).IsValid() {
		log.Fatalf("%v: %q", user.ErrInvalidRole, *role)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Error loading config: ", err)
	}

	token, expiresAt, err := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration).
		GenerateAccessToken(*userID, *companyID, user.Role(*role))
	if err != nil {
		log.Fatal("Error generating token: ", err)
	}

	fmt.Println(token)
	log.Printf("expires at %s", time.Unix(expiresAt, 0).Format(time.RFC3339))
}
