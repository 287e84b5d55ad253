package repositories

import (
	"clave-insights/internal/models"
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InteractionRepository persists one write-once record per pipeline
// invocation. It sits off the primary response path: callers fire writes
// asynchronously and a failed write is logged, never surfaced.
type InteractionRepository interface {
	Create(interaction *models.LLMInteraction) error
	ListRecent(limit int) ([]models.LLMInteraction, error)
}

type interactionRepository struct {
	db *gorm.DB
}

func NewInteractionRepository(db *gorm.DB) InteractionRepository {
	log.Println("🚀 Initialized Repository : LLMInteraction")
	return &interactionRepository{db: db}
}

func (r *interactionRepository) Create(interaction *models.LLMInteraction) error {
	if interaction.ID == uuid.Nil {
		interaction.ID = uuid.New()
	}
	return r.db.Create(interaction).Error
}

func (r *interactionRepository) ListRecent(limit int) ([]models.LLMInteraction, error) {
	var interactions []models.LLMInteraction
	err := r.db.Order("created_at DESC").Limit(limit).Find(&interactions).Error
	return interactions, err
}
