package merchant

import (
	"context"
	"fmt"

	content "google.golang.org/api/content/v2.1"
	"google.golang.org/api/option"

	"github.com/omarcs/lia-woocommerce/internal/core/domain"
	"github.com/omarcs/lia-woocommerce/internal/core/ports/driven"
	"github.com/omarcs/lia-woocommerce/internal/logger"
)

// Ensure Client implements the interface.
var _ driven.RemoteCatalog = (*Client)(nil)

const methodInsert = "insert"

// Client is the merchant catalog backed by the Content API.
type Client struct {
	svc        *content.APIService
	merchantID uint64
	limiter    *RateLimiter
	log        *logger.Logger
}

// New creates a client for the configured merchant account.
// Extra options are appended after the ones derived from settings.
func New(ctx context.Context, s domain.MerchantSettings, log *logger.Logger, extra ...option.ClientOption) (*Client, error) {
	if s.MerchantID == 0 {
		return nil, fmt.Errorf("%w: merchant id is required", domain.ErrInvalidInput)
	}
	opts, err := clientOptions(ctx, s)
	if err != nil {
		return nil, err
	}
	svc, err := content.NewService(ctx, append(opts, extra...)...)
	if err != nil {
		return nil, fmt.Errorf("%w: creating content service: %w", domain.ErrRemoteUnavailable, err)
	}
	return &Client{
		svc:        svc,
		merchantID: s.MerchantID,
		limiter:    NewRateLimiter(s.RequestsPerSecond),
		log:        log,
	}, nil
}

// InsertBatch upserts entries through products.custombatch. Accepted local
// entries then get their store stock pushed.
func (c *Client) InsertBatch(ctx context.Context, entries []domain.RemoteEntry) ([]domain.EntryResult, error) {
	if len(entries) == 0 {
		return nil, nil
	}
	if len(entries) > domain.MaxBatchSize {
		return nil, fmt.Errorf("%w: batch of %d exceeds %d entries", domain.ErrInvalidInput, len(entries), domain.MaxBatchSize)
	}

	req := &content.ProductsCustomBatchRequest{
		Entries: make([]*content.ProductsCustomBatchRequestEntry, 0, len(entries)),
	}
	byBatchID := make(map[int64]domain.RemoteEntry, len(entries))
	for _, e := range entries {
		byBatchID[e.BatchID] = e
		req.Entries = append(req.Entries, &content.ProductsCustomBatchRequestEntry{
			BatchId:    e.BatchID,
			MerchantId: c.merchantID,
			Method:     methodInsert,
			Product:    toProduct(e),
		})
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	resp, err := c.svc.Products.Custombatch(req).Context(ctx).Do()
	if err != nil {
		return nil, toRemoteError(err)
	}

	results := make([]domain.EntryResult, 0, len(resp.Entries))
	var accepted []domain.RemoteEntry
	for _, re := range resp.Entries {
		if re == nil {
			continue
		}
		sent, known := byBatchID[re.BatchId]
		result := domain.EntryResult{BatchID: re.BatchId, RemoteID: sent.RemoteID, Errors: entryErrors(re.Errors)}
		if re.Product != nil && re.Product.Id != "" {
			result.RemoteID = re.Product.Id
		}
		results = append(results, result)

		if known && result.OK() && sent.Channel == domain.ChannelLocal && sent.StoreCode != "" {
			sent.RemoteID = result.RemoteID
			accepted = append(accepted, sent)
		}
	}

	c.pushLocalInventory(ctx, accepted)
	return results, nil
}

// pushLocalInventory records store stock for accepted local entries.
// Failures are logged; the product itself is already in the catalog.
func (c *Client) pushLocalInventory(ctx context.Context, entries []domain.RemoteEntry) {
	if len(entries) == 0 {
		return
	}

	req := &content.LocalinventoryCustomBatchRequest{
		Entries: make([]*content.LocalinventoryCustomBatchRequestEntry, 0, len(entries)),
	}
	for i, e := range entries {
		req.Entries = append(req.Entries, &content.LocalinventoryCustomBatchRequestEntry{
			BatchId:    int64(i),
			MerchantId: c.merchantID,
			Method:     methodInsert,
			ProductId:  e.RemoteID,
			LocalInventory: &content.LocalInventory{
				StoreCode:    e.StoreCode,
				Quantity:     int64(e.StoreQuantity),
				Availability: e.Availability,
				Price:        &content.Price{Value: e.Price.Value, Currency: e.Price.Currency},
			},
		})
	}

	if err := c.limiter.Wait(ctx); err != nil {
		c.log.Warn("local inventory push skipped: %v", err)
		return
	}
	resp, err := c.svc.Localinventory.Custombatch(req).Context(ctx).Do()
	if err != nil {
		c.log.Warn("local inventory push for %d items failed: %v", len(entries), toRemoteError(err))
		return
	}
	for _, re := range resp.Entries {
		if re == nil || re.Errors == nil {
			continue
		}
		if idx := int(re.BatchId); idx >= 0 && idx < len(entries) {
			c.log.Warn("local inventory for %s rejected: %v", entries[idx].OfferID, entryErrors(re.Errors))
		}
	}
}

// Delete removes a product by its remote ID.
func (c *Client) Delete(ctx context.Context, remoteID string) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	if err := c.svc.Products.Delete(c.merchantID, remoteID).Context(ctx).Do(); err != nil {
		return toRemoteError(err)
	}
	return nil
}

// toProduct maps an entry onto the API product resource.
func toProduct(e domain.RemoteEntry) *content.Product {
	return &content.Product{
		OfferId:         e.OfferID,
		Title:           e.Title,
		Description:     e.Description,
		Link:            e.Link,
		ImageLink:       e.ImageLink,
		ContentLanguage: e.ContentLanguage,
		TargetCountry:   e.TargetCountry,
		Channel:         string(e.Channel),
		Availability:    e.Availability,
		Condition:       e.Condition,
		Price:           &content.Price{Value: e.Price.Value, Currency: e.Price.Currency},
	}
}
