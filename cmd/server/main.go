// Команда quantumeyes: HTTP API дашборда безопасности с квантовым модулем
// и симулятором сетевого трафика.
//
//	quantumeyes serve     # по умолчанию
//	quantumeyes migrate   # только схема БД
//	quantumeyes seed      # схема и демо-данные
//
// Настройки берутся из окружения и .env (см. .env.example).
package main

import (
	"fmt"
	"os"

	"quantumeyes/internal/config"
	"quantumeyes/internal/database"
	"quantumeyes/internal/logging"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var rootCmd = &cobra.Command{
	Use:          "quantumeyes",
	Short:        "QuantumEyes security dashboard backend",
	SilenceUsage: true,
	RunE:         runServe,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// bootstrap: конфиг, логгер и подключение к БД с повторами.
func bootstrap() (*config.Config, *gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	logging.Init(cfg.LogLevel, cfg.LogFormat)

	db, err := database.OpenWithRetry(cfg.DBDSN, dbConnectAttempts, dbConnectDelay)
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}
