// Command tokengen mints a signed prefill token for the report form, using
// the same SIGNING_SECRET the server verifies against. Handy for building
// pre-filled links to hand to returning patients:
//
//	tokengen -name "Jane Doe" -email jane@example.com -ttl 24h
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"patientreport/internal/config"
	"patientreport/internal/token"
)

func main() {
	var (
		name      = flag.String("name", "", "patient name")
		email     = flag.String("email", "", "patient email")
		contact   = flag.String("contact", "", "patient phone number")
		allergies = flag.String("allergies", "", "known allergies")
		symptoms  = flag.String("symptoms", "", "symptom description")
		ttl       = flag.Duration("ttl", 24*time.Hour, "token lifetime")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	resolver := token.NewResolver(cfg.SigningSecret)
	signed, err := resolver.Issue(token.Claims{
		Name:      *name,
		Email:     *email,
		Contact:   *contact,
		Allergies: *allergies,
		Symptoms:  *symptoms,
	}, *ttl)
	if err != nil {
		fmt.Fprintln(os.Stderr, "issue token:", err)
		os.Exit(1)
	}

	fmt.Println(signed)
}
