package database

import (
	"context"
	"testing"
	"testing/fstest"

	"fashionai/internal/config"
	"fashionai/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	return db
}

func TestConfigurePool(t *testing.T) {
	db := openSQLite(t)

	cfg := &config.Config{
		DBMaxOpenConns:           10,
		DBMaxIdleConns:           5,
		DBConnMaxLifetimeMinutes: 15,
	}
	require.NoError(t, configurePool(db, cfg))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 10, sqlDB.Stats().MaxOpenConnections)
}

func TestSchemaPolicy(t *testing.T) {
	tests := []struct {
		env, mode       string
		runSQL, runAuto bool
		wantErr         bool
	}{
		{"development", "", true, true, false},
		{"development", "hybrid", true, true, false},
		{"production", "hybrid", true, false, false},
		{"staging", "sql", true, false, false},
		{"test", "auto", false, true, false},
		{"production", "auto", false, false, true},
		{"development", "nope", false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.env+"/"+tt.mode, func(t *testing.T) {
			runSQL, runAuto, err := schemaPolicy(&config.Config{Env: tt.env, DBSchemaMode: tt.mode})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.runSQL, runSQL)
			assert.Equal(t, tt.runAuto, runAuto)
		})
	}
}

func TestEmbeddedMigrations(t *testing.T) {
	all := GetMigrations()
	require.Len(t, all, 2)
	assert.Equal(t, "000001_init_schema", all[0].String())
	assert.Contains(t, all[0].UpScript, "idx_favorites_user_product")
	assert.NotEmpty(t, all[1].DownScript)
	assert.NotNil(t, GetMigrationByVersion(2))
	assert.Nil(t, GetMigrationByVersion(99))
}

func TestLoadMigrations_RequiresDownScript(t *testing.T) {
	fsys := fstest.MapFS{
		"migrations/000001_a.up.sql": {Data: []byte("SELECT 1;")},
	}
	_, err := LoadMigrations(fsys)
	assert.Error(t, err)
}

func TestRunMigrations_AppliesOnceAndRecords(t *testing.T) {
	db := openSQLite(t)
	ctx := context.Background()
	registered := []Migration{
		{Version: 1, Name: "widgets", UpScript: "CREATE TABLE widgets (id INTEGER PRIMARY KEY)", DownScript: "DROP TABLE widgets"},
		{Version: 2, Name: "gadgets", UpScript: "CREATE TABLE gadgets (id INTEGER PRIMARY KEY)", DownScript: "DROP TABLE gadgets"},
	}

	require.NoError(t, runMigrations(ctx, db, registered))
	require.NoError(t, runMigrations(ctx, db, registered))

	applied, err := NewMigrationStore(db).GetAppliedMigrations(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, applied)
	assert.True(t, db.Migrator().HasTable("gadgets"))

	err = runMigrations(ctx, db, registered[:1])
	assert.ErrorContains(t, err, "000002")
}

func TestAutoMigrate_FavoriteUniqueness(t *testing.T) {
	db := openSQLite(t)
	require.NoError(t, AutoMigrate(db))

	user := models.User{Email: "a@example.com", Password: "x"}
	require.NoError(t, db.Create(&user).Error)
	product := models.Product{UserID: user.ID, Prompt: "p", ProductType: "shirt", GeneratedImageURL: "g", ProductImageURL: "i"}
	require.NoError(t, db.Create(&product).Error)

	require.NoError(t, db.Create(&models.Favorite{UserID: user.ID, ProductID: product.ID}).Error)
	assert.Error(t, db.Create(&models.Favorite{UserID: user.ID, ProductID: product.ID}).Error)
	assert.Error(t, db.Create(&models.User{Email: "a@example.com", Password: "y"}).Error)
}

func TestGetSchemaStatus(t *testing.T) {
	db := openSQLite(t)
	ctx := context.Background()

	status, err := GetSchemaStatus(ctx, db, &config.Config{Env: "development", DBSchemaMode: SchemaModeHybrid})
	require.NoError(t, err)
	assert.True(t, status.WillRunSQL)
	assert.True(t, status.WillRunAutoMigrate)
	assert.Empty(t, status.AppliedVersions)
	assert.Len(t, status.PendingMigrations, len(GetMigrations()))

	status, err = GetSchemaStatus(ctx, db, &config.Config{Env: "production", DBSchemaMode: SchemaModeHybrid})
	require.NoError(t, err)
	assert.True(t, status.WillRunSQL)
	assert.False(t, status.WillRunAutoMigrate)

	_, err = GetSchemaStatus(ctx, db, &config.Config{Env: "production", DBSchemaMode: SchemaModeAuto})
	assert.Error(t, err)
}
