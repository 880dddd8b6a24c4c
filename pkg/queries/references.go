package queries

import (
	"context"
	"fmt"

	"github.com/thevivek0408/couchsurfing-sub002/pkg/cache"
	"github.com/thevivek0408/couchsurfing-sub002/pkg/pagination"
	"github.com/thevivek0408/couchsurfing-sub002/pkg/service"
)

var referenceFilterTypes = map[ReferenceFilter][]service.ReferenceType{
	ReferencesAll:    nil,
	ReferencesFriend: {service.ReferenceTypeFriend},
	ReferencesSurfed: {service.ReferenceTypeSurfed},
	ReferencesHosted: {service.ReferenceTypeHosted},
}

func allReferences(ctx context.Context, svc *service.Service, req service.ListReferencesReq) ([]service.Reference, error) {
	return pagination.FetchAll(ctx, func(ctx context.Context, token string) (pagination.Page[service.Reference, string], error) {
		req.PageToken = token
		res, err := svc.References.ListReferences(ctx, req)
		if err != nil {
			return pagination.Page[service.Reference, string]{}, err
		}
		return res.Page(), nil
	})
}

// ReferencesGiven returns every reference written by userID.
func (q *Queries) ReferencesGiven(ctx context.Context, userID int64) ([]service.Reference, error) {
	return cache.Fetch(ctx, q.qc, ReferencesGivenKey(userID), func(ctx context.Context) ([]service.Reference, error) {
		return allReferences(ctx, q.svc, service.ListReferencesReq{FromUserID: userID})
	})
}

// ReferencesReceived returns every reference about userID matching filter.
func (q *Queries) ReferencesReceived(ctx context.Context, userID int64, filter ReferenceFilter) ([]service.Reference, error) {
	types, ok := referenceFilterTypes[filter]
	if !ok {
		return nil, fmt.Errorf("unknown reference filter %q", filter)
	}
	return cache.Fetch(ctx, q.qc, ReferencesReceivedKey(userID, filter), func(ctx context.Context) ([]service.Reference, error) {
		return allReferences(ctx, q.svc, service.ListReferencesReq{ToUserID: userID, ReferenceTypeFilter: types})
	})
}

// AvailableWriteReferences returns what the caller may still write about userID.
func (q *Queries) AvailableWriteReferences(ctx context.Context, userID int64) (service.AvailableWriteReferences, error) {
	return cache.Fetch(ctx, q.qc, AvailableWriteReferencesKey(userID), func(ctx context.Context) (service.AvailableWriteReferences, error) {
		return q.svc.References.AvailableWriteReferences(ctx, userID)
	})
}

// InvalidateReferences marks every reference query about userID stale.
func (q *Queries) InvalidateReferences(userID int64) {
	q.qc.Invalidate(ReferencesGivenKey(userID))
	q.qc.Invalidate(AvailableWriteReferencesKey(userID))
	for filter := range referenceFilterTypes {
		q.qc.Invalidate(ReferencesReceivedKey(userID, filter))
	}
}
