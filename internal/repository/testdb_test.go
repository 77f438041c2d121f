package repository

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"onboarding/internal/model"
)

// newTestDB opens a private in-memory SQLite database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// one connection keeps the shared-cache database alive and serializes writers
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Version{},
		&model.TemplateItem{},
		&model.ResourceCategory{},
		&model.Resource{},
		&model.ShareRecord{},
		&model.CloneLog{},
	))
	return db
}

func createUser(t *testing.T, db *gorm.DB, name string) model.User {
	t.Helper()
	user := model.User{Email: name + "@example.com", Name: name}
	require.NoError(t, NewUserRepository(db).Create(context.Background(), &user))
	return user
}

func createVersion(t *testing.T, db *gorm.DB, userID uuid.UUID, name string) model.Version {
	t.Helper()
	version := model.Version{UserID: userID, Name: name}
	require.NoError(t, NewVersionRepository(db).Create(context.Background(), &version))
	return version
}

// seedContent adds one template and one category holding one resource.
func seedContent(t *testing.T, db *gorm.DB, userID uuid.UUID, versionID *uuid.UUID) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, NewTemplateRepository(db).Create(ctx, &model.TemplateItem{
		UserID: userID, VersionID: versionID, Period: model.PeriodFirstDay,
		Title: "Setup laptop", Priority: model.PriorityMedium,
	}))
	require.NoError(t, NewCategoryRepository(db).Create(ctx, &model.ResourceCategory{
		UserID: userID, VersionID: versionID, Category: "Tools",
		Resources: []model.Resource{{Name: "Figma", Type: model.ResourceTypeTool, URL: "https://figma.com"}},
	}))
}

func countRows(t *testing.T, db *gorm.DB, value interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(value).Where(query, args...).Count(&n).Error)
	return n
}

// orphanResources counts resources whose category no longer exists.
func orphanResources(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	existing := db.Model(&model.ResourceCategory{}).Select("id")
	return countRows(t, db, &model.Resource{}, "category_id NOT IN (?)", existing)
}
