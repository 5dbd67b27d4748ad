package repository

import (
	"testing"
	"time"

	"fashionai/internal/database"
	"fashionai/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	return gormDB, mock
}

func setupSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.AutoMigrate(db))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, email, username string) models.User {
	t.Helper()
	u := models.User{Email: email, Username: username, Password: "hash"}
	require.NoError(t, db.Create(&u).Error)
	return u
}

func seedProduct(t *testing.T, db *gorm.DB, owner models.User, prompt, productType string, createdAt time.Time) models.Product {
	t.Helper()
	p := models.Product{
		UserID:            owner.ID,
		Prompt:            prompt,
		ProductType:       productType,
		GeneratedImageURL: "https://img.test/gen.png",
		ProductImageURL:   "https://img.test/product.png",
		CreatedAt:         createdAt,
	}
	require.NoError(t, db.Create(&p).Error)
	return p
}
