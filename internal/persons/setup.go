package persons

import (
	"fmt"

	"gorm.io/gorm"
)

// Init migrates the persons tables.
func Init(db *gorm.DB) error {
	if err := db.AutoMigrate(&MissingPerson{}, &PipelineRun{}); err != nil {
		return fmt.Errorf("migrate persons tables: %w", err)
	}
	return nil
}
