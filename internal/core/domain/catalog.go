package domain

import (
	"strings"
	"time"
)

// StockStatus mirrors the _stock_status meta value of a product.
type StockStatus string

// Stock statuses used by the shop.
const (
	StockInStock     StockStatus = "instock"
	StockOutOfStock  StockStatus = "outofstock"
	StockOnBackorder StockStatus = "onbackorder"
)

// Visibility is derived from the product_visibility taxonomy.
type Visibility string

// Visibility values.
const (
	VisibilityVisible Visibility = "visible"
	VisibilityHidden  Visibility = "hidden"
)

// CatalogItem is a published product as read from the shop database.
// It is read-only input to the sync.
type CatalogItem struct {
	// ID is the post ID of the product.
	ID int64

	// SKU is the merchant-facing stock keeping unit. Items without one are skipped.
	SKU string

	Title       string
	Description string
	Permalink   string

	// Price is the raw _price meta value. It may be empty or malformed.
	Price string

	StockQuantity int
	StockStatus   StockStatus
	Visibility    Visibility

	// ImageURL may be empty, in which case a placeholder is used.
	ImageURL string

	// LastModified is the post_modified timestamp.
	LastModified time.Time
}

// Key returns the tracking key of the item on a channel.
func (i CatalogItem) Key(channel Channel) SyncKey {
	return SyncKey{ProductID: i.ID, SKU: i.SKU, Channel: channel}
}

// HasSKU reports whether the item can be synced at all.
func (i CatalogItem) HasSKU() bool {
	return strings.TrimSpace(i.SKU) != ""
}

// Channel is the remote destination of an item.
type Channel string

// Channels.
const (
	ChannelOnline Channel = "online"
	ChannelLocal  Channel = "local"
)

// Channels lists every channel in upload order.
var Channels = []Channel{ChannelOnline, ChannelLocal}

// IsValid returns true if the channel is recognised.
func (c Channel) IsValid() bool {
	return c == ChannelOnline || c == ChannelLocal
}

// String returns the string representation.
func (c Channel) String() string {
	return string(c)
}

// ChannelClassifier selects the rule that assigns items to channels.
type ChannelClassifier string

// Classifiers.
const (
	// ClassifyByVisibility routes catalog-hidden products to the local channel.
	ClassifyByVisibility ChannelClassifier = "visibility"

	// ClassifyBySKUPrefix routes products whose SKU carries the local prefix to the local channel.
	ClassifyBySKUPrefix ChannelClassifier = "sku_prefix"
)

// IsValid returns true if the classifier is recognised.
func (c ChannelClassifier) IsValid() bool {
	return c == ClassifyByVisibility || c == ClassifyBySKUPrefix
}

// Partitioner assigns each item to exactly one channel.
type Partitioner struct {
	Classifier  ChannelClassifier
	LocalPrefix string
}

// ChannelOf returns the channel an item belongs to.
func (p Partitioner) ChannelOf(item CatalogItem) Channel {
	switch p.Classifier {
	case ClassifyBySKUPrefix:
		if p.LocalPrefix != "" && strings.HasPrefix(item.SKU, p.LocalPrefix) {
			return ChannelLocal
		}
		return ChannelOnline
	default:
		if item.Visibility == VisibilityHidden {
			return ChannelLocal
		}
		return ChannelOnline
	}
}
