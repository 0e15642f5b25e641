package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/keitaro-sync/internal/config"
	"github.com/vfg2006/keitaro-sync/internal/usecases/authenticating"
	"github.com/vfg2006/keitaro-sync/pkg/log"
	"github.com/vfg2006/keitaro-sync/pkg/middleware"
)

// Emite um token para a API de administração usando o AUTH_SECRET configurado
func main() {
	email := flag.String("email", "ops@localhost", "e-mail gravado no token")
	userID := flag.Int("user-id", 1, "id do usuário gravado no token")
	role := flag.Int("role", middleware.RoleAdmin, "papel: 1 admin, 2 supervisor, 3 leitura")
	ttl := flag.Duration("ttl", 24*time.Hour, "validade do token")
	flag.Parse()

	log.Configure("warn")

	cfg, err := config.NewConfig()
	if err != nil {
		logrus.WithError(err).Error("Erro ao carregar configuração")
		os.Exit(1)
	}

	token, err := authenticating.NewService(cfg).GenerateToken(*userID, *email, *role, *ttl)
	if err != nil {
		logrus.WithError(err).Error("Erro ao gerar token")
		os.Exit(1)
	}

	fmt.Println(token)
}
