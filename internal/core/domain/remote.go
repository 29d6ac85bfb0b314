package domain

import "strings"

// Availability values understood by the merchant catalog.
const (
	AvailabilityInStock    = "in stock"
	AvailabilityOutOfStock = "out of stock"
)

// ConditionNew is the only condition the shop sells.
const ConditionNew = "new"

// Field limits enforced by the merchant catalog.
const (
	MaxTitleLength       = 150
	MaxDescriptionLength = 5000
)

// MaxBatchSize is the largest batch the merchant catalog accepts.
const MaxBatchSize = 100

// Price is a decimal amount formatted with two fractional digits.
type Price struct {
	Value    string
	Currency string
}

// RemoteEntry is one product payload in a batch.
type RemoteEntry struct {
	// BatchID is the position of the entry in its batch.
	BatchID int64

	// RemoteID is channel:language:country:sku.
	RemoteID string

	// Key links the entry back to its tracking record.
	Key SyncKey

	OfferID         string
	Title           string
	Description     string
	Link            string
	ImageLink       string
	Price           Price
	Availability    string
	Channel         Channel
	ContentLanguage string
	TargetCountry   string
	Condition       string

	// StoreCode and StoreQuantity are set for local entries only.
	StoreCode     string
	StoreQuantity int
}

// EntryResult is the remote verdict for one entry of a batch.
type EntryResult struct {
	BatchID  int64
	RemoteID string
	Errors   []string
}

// OK reports whether the entry was accepted.
func (r EntryResult) OK() bool {
	return len(r.Errors) == 0
}

// Message joins the entry errors into one line.
func (r EntryResult) Message() string {
	return strings.Join(r.Errors, "; ")
}

// RemoteID builds the merchant product ID for an item.
func RemoteID(channel Channel, language, country, sku string) string {
	return string(channel) + ":" + language + ":" + country + ":" + sku
}
