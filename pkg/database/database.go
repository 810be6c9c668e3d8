package database

import (
	"fmt"
	"log"

	"gamify_backend/internal/config"
	"gamify_backend/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	seedDefaults(db)

	return db, nil
}

// Migrate 同步表结构，测试环境也复用
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Employee{},
		&model.EmployeeLog{},
		&model.KarmaHistory{},
		&model.Test{},
		&model.TestQuestion{},
		&model.AnswerOption{},
		&model.TestAttempt{},
		&model.Achievement{},
		&model.EmployeeAchievement{},
	)
}

func seedDefaults(db *gorm.DB) {
	// 默认成就目录
	var count int64
	db.Model(&model.Achievement{}).Count(&count)
	if count == 0 {
		defaults := []model.Achievement{
			{Name: "Perfect Score", Description: "Finish a test with the maximum score", ProgressThreshold: 1, ExperienceReward: 50, AcoinReward: 10},
			{Name: "Perfectionist", Description: "Finish five tests with the maximum score", ProgressThreshold: 5, ExperienceReward: 200, AcoinReward: 50},
		}
		for _, a := range defaults {
			db.Create(&a)
		}
	}
}
