package database

import (
	"course_hub_backend/internal/config"
	"course_hub_backend/internal/model"
	"fmt"
	"log"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitDB opens the connection and, when migrate is set, runs the schema
// migration and seeds the default categories.
func InitDB(cfg *config.DatabaseConfig, migrate bool) (*gorm.DB, error) {
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

	if migrate {
		if err := Migrate(db); err != nil {
			return nil, err
		}

		log.Println("Database migration completed")

		seedCategories(db)
	}

	return db, nil
}

// Migrate runs the schema migration for every table of the platform.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Category{},
		&model.Course{},
		&model.Lesson{},
		&model.Enrollment{},
		&model.LessonProgress{},
		&model.Review{},
		&model.Certificate{},
	)
}

// seedCategories inserts a starting category set when the table is empty.
func seedCategories(db *gorm.DB) {
	var count int64
	db.Model(&model.Category{}).Count(&count)
	if count == 0 {
		defaults := []model.Category{
			{Name: "Programming", Slug: "programming", Description: "Software development and coding"},
			{Name: "Data Science", Slug: "data-science", Description: "Statistics, ML and data analysis"},
			{Name: "Design", Slug: "design", Description: "UI, UX and visual design"},
			{Name: "Business", Slug: "business", Description: "Management, marketing and finance"},
			{Name: "Languages", Slug: "languages", Description: "Foreign language learning"},
		}
		for _, c := range defaults {
			db.Create(&c)
		}
	}
}
