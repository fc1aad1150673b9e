package amqp

import (
	"encoding/json"
	"time"

	"costs/internal/core"
)

// CostAddedType is the AMQP message type of CostAddedMessage.
const CostAddedType = "cost.added"

// CostAddedMessage announces a persisted cost. Consumers can rebuild
// derived views from it without reading the store.
type CostAddedMessage struct {
	Type        string    `json:"type"`
	ID          string    `json:"id"`
	UserID      int64     `json:"userid"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Sum         float64   `json:"sum"`
	Date        time.Time `json:"date"`
	Timestamp   time.Time `json:"timestamp"`
}

func NewCostAddedMessage(c core.Cost) *CostAddedMessage {
	return &CostAddedMessage{
		Type:        CostAddedType,
		ID:          c.ID,
		UserID:      c.UserID,
		Category:    string(c.Category),
		Description: c.Description,
		Sum:         c.Sum,
		Date:        c.Date,
		Timestamp:   time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *CostAddedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}
