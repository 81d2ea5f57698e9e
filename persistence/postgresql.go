package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/coopgaem/server/models"
)

// PostgreSQL is the raw-SQL RecordStore.
type PostgreSQL struct {
	db *sql.DB
}

func NewPostgreSQL(host string, port int, user, password, dbname string) (*PostgreSQL, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := initTables(db); err != nil {
		return nil, err
	}

	return &PostgreSQL{db: db}, nil
}

func initTables(db *sql.DB) error {
	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS completions (
            id SERIAL PRIMARY KEY,
            room_id TEXT NOT NULL,
            levels INT NOT NULL,
            total_time_ms BIGINT NOT NULL,
            players TEXT[] NOT NULL,
            completed_at TIMESTAMP NOT NULL
        )`)
	return err
}

// SaveCompletion appends one completion record.
func (p *PostgreSQL) SaveCompletion(rec *models.CompletionRecord) error {
	_, err := p.db.Exec(`
        INSERT INTO completions (room_id, levels, total_time_ms, players, completed_at)
        VALUES ($1, $2, $3, $4, $5)`,
		rec.RoomID,
		rec.Levels,
		rec.TotalTime.Milliseconds(),
		pq.Array(rec.Players),
		rec.CompletedAt,
	)
	return err
}

func (p *PostgreSQL) Close() error {
	return p.db.Close()
}
