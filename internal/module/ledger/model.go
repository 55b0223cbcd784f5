package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Party is one of the platform parties revenue is split across.
type Party string

const (
	PartyAdmin    Party = "admin"
	PartySupplier Party = "supplier"
	PartyReseller Party = "reseller"
	PartySystem   Party = "system"
)

// Valid reports whether the party is a known platform party.
func (p Party) Valid() bool {
	switch p {
	case PartyAdmin, PartySupplier, PartyReseller, PartySystem:
		return true
	}
	return false
}

// Entry is one signed monetary posting in the split ledger. The ledger
// is append-only: entries are never edited or deleted, corrections are
// posted as new negative-signed entries.
type Entry struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	StoreID   uuid.UUID      `json:"store_id" gorm:"type:uuid;not null;index"`
	OrderID   uuid.UUID      `json:"order_id" gorm:"type:uuid;not null;index"`
	Party     Party          `json:"party" gorm:"not null"`
	PartyID   uuid.UUID      `json:"party_id" gorm:"type:uuid;not null"`
	Amount    int64          `json:"amount"` // Signed minor currency units
	Currency  string         `json:"currency" gorm:"default:usd"`
	RefundID  *uuid.UUID     `json:"refund_id,omitempty" gorm:"type:uuid;index"`
	Reason    string         `json:"reason"`
	Tags      pq.StringArray `json:"tags" gorm:"type:text[]"`
	CreatedAt time.Time      `json:"created_at"`
}

// TableName returns the database table name.
func (Entry) TableName() string {
	return "ledger_entries"
}
