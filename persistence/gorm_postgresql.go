package persistence

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/coopgaem/server/models"
)

// GormPostgreSQL is the GORM-backed RecordStore.
type GormPostgreSQL struct {
	db *gorm.DB
}

// CompletionModel is the completions table schema.
type CompletionModel struct {
	ID          uint   `gorm:"primaryKey"`
	RoomID      string `gorm:"index;not null"`
	Levels      int    `gorm:"not null"`
	TotalTimeMs int64  `gorm:"not null"`
	Players     string `gorm:"not null"` // comma-joined roster
	CompletedAt time.Time
	CreatedAt   time.Time
}

func (CompletionModel) TableName() string { return "completions_gorm" }

func NewGormPostgreSQL(host string, port int, user, password, dbname string) (*GormPostgreSQL, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: time.Second,
			LogLevel:      logger.Silent,
			Colorful:      false,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&CompletionModel{}); err != nil {
		return nil, err
	}

	return &GormPostgreSQL{db: db}, nil
}

// SaveCompletion appends one completion record.
func (g *GormPostgreSQL) SaveCompletion(rec *models.CompletionRecord) error {
	return g.db.Create(&CompletionModel{
		RoomID:      rec.RoomID,
		Levels:      rec.Levels,
		TotalTimeMs: rec.TotalTime.Milliseconds(),
		Players:     strings.Join(rec.Players, ","),
		CompletedAt: rec.CompletedAt,
	}).Error
}

func (g *GormPostgreSQL) Close() error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
