package infra_pg_init

import (
	"fmt"
	"log"
	"log/slog"

	"github.com/humanbelnik/singalong/core/internal/config"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// MustEstablishConn connects to the keyword store and logs the size of the pool.
func MustEstablishConn(cfg config.Postgres) *sqlx.DB {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.DBName,
		cfg.SSLMode,
	)
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		log.Fatal("keyword store: ", err)
	}

	logger := slog.Default().With("host", cfg.Host, "db", cfg.DBName)
	var keywords int
	if err := db.Get(&keywords, `SELECT count(*) FROM keyword`); err != nil {
		logger.Warn("keyword table not readable", "error", err)
		return db
	}
	logger.Info("keyword store connected", "keywords", keywords)
	return db
}
