package db

import (
	"strconv"

	"github.com/vvolodin/tg-care-reminder/pkg/config"
	"github.com/vvolodin/tg-care-reminder/pkg/logger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Open connects to postgres and migrates the reminder schema. The returned
// handle is the only one; components receive it through their constructors.
func Open(cfg config.DatabaseConfig, gormLevel string) (*gorm.DB, error) {
	dsn := "host=" + cfg.Host +
		" user=" + cfg.User +
		" password=" + cfg.Password +
		" dbname=" + cfg.DBName +
		" port=" + strconv.Itoa(cfg.Port) +
		" sslmode=" + cfg.SSLMode
	gormLogger, gormErr := newGormLogger(gormLevel)
	if gormErr != nil {
		logger.Error("invalid gorm log level", "value", gormLevel, "error", gormErr)
	}
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormLogger})
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return nil, err
	}
	if err := Migrate(gdb); err != nil {
		logger.Error("failed to migrate database", "error", err)
		return nil, err
	}
	return gdb, nil
}

func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&Reminder{},
		&ReminderSchedule{},
		&MotivationSchedule{},
		&ReminderEvent{},
		&DailyStat{},
	)
}
