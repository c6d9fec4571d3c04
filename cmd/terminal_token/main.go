// terminal_token emite el JWT con el que una terminal de punto de venta se autentica ante la API.
//
// Uso: go run ./cmd/terminal_token -name "Caja 1" [-role cajero|admin] [-id <uuid>] [-minutes N]
// Usa JWT_SECRET, JWT_ISSUER y JWT_EXPIRATION_MINUTES de la configuración.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/jhoicas/punto-venta/pkg/config"
	"github.com/jhoicas/punto-venta/pkg/jwt"
)

func main() {
	name := flag.String("name", "", "nombre visible de la terminal (obligatorio)")
	role := flag.String("role", jwt.RoleCashier, "rol: cajero o admin")
	id := flag.String("id", "", "UUID de la terminal; vacío genera uno nuevo")
	minutes := flag.Int("minutes", 0, "vigencia en minutos; 0 usa JWT_EXPIRATION_MINUTES")
	flag.Parse()

	if *name == "" {
		fmt.Fprintln(os.Stderr, "-name es obligatorio")
		flag.Usage()
		os.Exit(2)
	}
	if *role != jwt.RoleCashier && *role != jwt.RoleAdmin {
		fmt.Fprintf(os.Stderr, "rol desconocido %q\n", *role)
		os.Exit(2)
	}

	terminalID := *id
	if terminalID == "" {
		terminalID = uuid.NewString()
	} else if parsed, err := uuid.Parse(terminalID); err != nil {
		fmt.Fprintf(os.Stderr, "-id no es un UUID: %v\n", err)
		os.Exit(2)
	} else {
		terminalID = parsed.String()
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	exp := cfg.JWT.Expiration
	if *minutes > 0 {
		exp = *minutes
	}

	token, err := jwt.Generate(cfg.JWT.Secret, terminalID, *name, *role, cfg.JWT.Issuer, exp)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Generar token: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "terminal %s (%s, %s), vigencia %d min\n", terminalID, *name, *role, exp)
	fmt.Println(token)
}
