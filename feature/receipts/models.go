package receipts

import (
	"time"

	"github.com/goccy/go-json"
)

// TableName is the table receipts are stored in.
const TableName = "consent_receipts"

// Receipt records one saved consent decision.
type Receipt struct {
	ID        uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Visitor   string    `gorm:"column:visitor;size:64;index" json:"visitor"`
	CatalogID string    `gorm:"column:catalog_id;size:191" json:"catalog_id"`
	Type      string    `gorm:"column:save_type;size:32" json:"type"`
	Consents  string    `gorm:"column:consents;type:text" json:"-"`
	Changes   string    `gorm:"column:changes;type:text" json:"-"`
	Hostname  string    `gorm:"column:hostname;size:255" json:"hostname,omitempty"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

// TableName overrides the gorm table name.
func (Receipt) TableName() string {
	return TableName
}

// View is the API representation of a receipt.
type View struct {
	Receipt
	Consents map[string]bool `json:"consents"`
	Changes  map[string]bool `json:"changes"`
}

// NewReceipt builds a receipt from a save.
func NewReceipt(visitor, catalogID, saveType, hostname string, consents, changes map[string]bool) (*Receipt, error) {
	c, err := json.Marshal(consents)
	if err != nil {
		return nil, err
	}
	ch, err := json.Marshal(changes)
	if err != nil {
		return nil, err
	}
	return &Receipt{
		Visitor:   visitor,
		CatalogID: catalogID,
		Type:      saveType,
		Consents:  string(c),
		Changes:   string(ch),
		Hostname:  hostname,
	}, nil
}

// View decodes the stored mappings.
func (r Receipt) View() (View, error) {
	v := View{Receipt: r}
	if r.Consents != "" {
		if err := json.Unmarshal([]byte(r.Consents), &v.Consents); err != nil {
			return View{}, err
		}
	}
	if r.Changes != "" {
		if err := json.Unmarshal([]byte(r.Changes), &v.Changes); err != nil {
			return View{}, err
		}
	}
	return v, nil
}
