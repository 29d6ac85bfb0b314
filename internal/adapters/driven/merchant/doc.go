// Package merchant implements the remote catalog on the Content API for
// Shopping v2.1.
//
// Products are upserted through products.custombatch and removed through
// products.delete. Local entries that the API accepted get their store
// stock pushed through localinventory.custombatch. All requests share one
// token-bucket limiter.
package merchant
