package services

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/omarcs/lia-woocommerce/internal/core/domain"
)

// Validation records which quality criteria an item met.
type Validation struct {
	ValidPrice bool
	RealImage  bool
	InStock    bool
}

// Transformer validates catalog items and builds remote entries.
type Transformer struct {
	language          string
	country           string
	currency          string
	placeholderImage  string
	permalinkTemplate string
}

// NewTransformer creates a transformer from merchant settings.
func NewTransformer(m domain.MerchantSettings) *Transformer {
	return &Transformer{
		language:          m.Language,
		country:           m.Country,
		currency:          m.Currency,
		placeholderImage:  m.PlaceholderImage,
		permalinkTemplate: m.PermalinkTemplate,
	}
}

// Transform validates an item and builds its entry for a channel.
// A rejection is returned as a *domain.ValidationError. For local items
// store and quantity carry the resolved store stock.
func (t *Transformer) Transform(
	item domain.CatalogItem,
	channel domain.Channel,
	store string,
	quantity int,
) (entry domain.RemoteEntry, v Validation, err error) {
	defer func() {
		if r := recover(); r != nil {
			entry = domain.RemoteEntry{}
			err = &domain.ValidationError{Reason: domain.RejectTransform, Message: fmt.Sprint(r)}
		}
	}()

	title := strings.TrimSpace(item.Title)
	if title == "" {
		return entry, v, &domain.ValidationError{Reason: domain.RejectTitle, Message: "title is empty"}
	}

	price, perr := decimal.NewFromString(strings.TrimSpace(item.Price))
	if perr != nil || !price.IsPositive() {
		return entry, v, &domain.ValidationError{
			Reason:  domain.RejectPrice,
			Message: fmt.Sprintf("price %q must be a positive number", item.Price),
		}
	}
	v.ValidPrice = true

	image := strings.TrimSpace(item.ImageURL)
	if image == "" {
		image = t.placeholderImage
	} else {
		v.RealImage = true
	}

	availability := domain.AvailabilityOutOfStock
	if item.StockStatus == domain.StockInStock {
		availability = domain.AvailabilityInStock
		v.InStock = true
	}

	description := strings.TrimSpace(item.Description)
	if description == "" {
		description = title
	}

	entry = domain.RemoteEntry{
		RemoteID:        domain.RemoteID(channel, t.language, t.country, item.SKU),
		Key:             item.Key(channel),
		OfferID:         item.SKU,
		Title:           domain.Truncate(title, domain.MaxTitleLength),
		Description:     domain.Truncate(description, domain.MaxDescriptionLength),
		Link:            t.link(item),
		ImageLink:       image,
		Price:           domain.Price{Value: price.StringFixed(2), Currency: t.currency},
		Availability:    availability,
		Channel:         channel,
		ContentLanguage: t.language,
		TargetCountry:   t.country,
		Condition:       domain.ConditionNew,
	}
	if channel == domain.ChannelLocal {
		entry.StoreCode = store
		entry.StoreQuantity = quantity
	}
	return entry, v, nil
}

func (t *Transformer) link(item domain.CatalogItem) string {
	if p := strings.TrimSpace(item.Permalink); p != "" {
		return p
	}
	return strings.ReplaceAll(t.permalinkTemplate, "{sku}", url.PathEscape(item.SKU))
}
