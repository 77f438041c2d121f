package repository

import (
	"gorm.io/gorm"

	"onboarding/internal/model"
)

// applyScope narrows a query on a version-tagged table to scope.
func applyScope(db *gorm.DB, scope model.Scope) *gorm.DB {
	switch {
	case scope.All:
		return db
	case scope.VersionID == nil:
		return db.Where("version_id IS NULL")
	default:
		return db.Where("version_id = ?", *scope.VersionID)
	}
}
