package models

import (
	"time"

	"github.com/google/uuid"
)

// LLMInteraction is the write-once record persisted for every pipeline
// invocation, success or failure. Maps onto the llm_interactions table.
type LLMInteraction struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserPrompt     string    `gorm:"type:text;not null" json:"userPrompt"`
	LLMResponse    *string   `gorm:"type:text" json:"llmResponse,omitempty"`
	ErrorDetails   *string   `gorm:"type:text" json:"errorDetails,omitempty"`
	SuccessStatus  bool      `gorm:"not null" json:"successStatus"`
	AgentAnswered  bool      `gorm:"not null" json:"agentAnswered"`
	StepFailed     *string   `gorm:"size:100" json:"stepFailed,omitempty"`
	ResponseTimeMs *int      `json:"responseTimeMs,omitempty"`
	RetryMetrics   *string   `gorm:"type:text" json:"retryMetrics,omitempty"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (LLMInteraction) TableName() string {
	return "llm_interactions"
}
