package service

import (
	"context"
	"fmt"

	"github.com/thevivek0408/couchsurfing-sub002/pkg/pagination"
	"github.com/thevivek0408/couchsurfing-sub002/pkg/rpc"
)

const (
	methodListHostRequests    = "org.couchers.api.requests.Requests/ListHostRequests"
	methodMarkLastRequestSeen = "org.couchers.api.requests.Requests/MarkLastSeenHostRequest"
)

// HostRequestRole selects which host requests to list.
type HostRequestRole string

const (
	HostRequestsAll     HostRequestRole = "all"
	HostRequestsHosting HostRequestRole = "hosting"
	HostRequestsSurfing HostRequestRole = "surfing"
)

// ParseHostRequestRole validates a role name.
func ParseHostRequestRole(s string) (HostRequestRole, error) {
	switch r := HostRequestRole(s); r {
	case HostRequestsAll, HostRequestsHosting, HostRequestsSurfing:
		return r, nil
	}
	return "", fmt.Errorf("unknown host request type %q", s)
}

// HostRequestStatus is the lifecycle state of a host request.
type HostRequestStatus string

// HostRequest is a stay request between a surfer and a host.
type HostRequest struct {
	HostRequestID     int64             `json:"hostRequestId"`
	SurferUserID      int64             `json:"surferUserId"`
	HostUserID        int64             `json:"hostUserId"`
	Status            HostRequestStatus `json:"status"`
	FromDate          string            `json:"fromDate"`
	ToDate            string            `json:"toDate"`
	LatestMessage     *Message          `json:"latestMessage,omitempty"`
	LastSeenMessageID int64             `json:"lastSeenMessageId"`
}

// HasUnseen reports whether the latest message is newer than the last one
// the caller saw.
func (r HostRequest) HasUnseen() bool {
	return r.LatestMessage != nil && r.LastSeenMessageID < r.LatestMessage.MessageID
}

// ListHostRequestsReq selects one page of host requests.
type ListHostRequestsReq struct {
	LastRequestID int64
	Role          HostRequestRole
	OnlyActive    bool
}

// ListHostRequestsRes is one page of host requests.
type ListHostRequestsRes struct {
	HostRequests  []HostRequest `json:"hostRequestsList"`
	LastRequestID int64         `json:"lastRequestId"`
	NoMore        bool          `json:"noMore"`
}

// Page adapts the response for pagination.FetchAll.
func (r ListHostRequestsRes) Page() pagination.Page[HostRequest, int64] {
	p := pagination.Page[HostRequest, int64]{Items: r.HostRequests}
	if !r.NoMore {
		p.Next = r.LastRequestID
	}
	return p
}

// RequestsService manages host requests.
type RequestsService struct {
	inv rpc.Invoker
}

// ListHostRequests returns one page of host requests.
func (s *RequestsService) ListHostRequests(ctx context.Context, in ListHostRequestsReq) (ListHostRequestsRes, error) {
	req := struct {
		LastRequestID int64 `json:"lastRequestId,omitempty"`
		OnlySurfing   bool  `json:"onlySurfing,omitempty"`
		OnlyHosting   bool  `json:"onlyHosting,omitempty"`
		OnlyActive    bool  `json:"onlyActive,omitempty"`
	}{
		LastRequestID: in.LastRequestID,
		OnlySurfing:   in.Role == HostRequestsSurfing,
		OnlyHosting:   in.Role == HostRequestsHosting,
		OnlyActive:    in.OnlyActive,
	}

	var res ListHostRequestsRes
	if err := s.inv.Invoke(ctx, methodListHostRequests, &req, &res); err != nil {
		return ListHostRequestsRes{}, err
	}
	return res, nil
}

// MarkLastRequestSeen records lastSeenMessageID as read in a host request.
func (s *RequestsService) MarkLastRequestSeen(ctx context.Context, hostRequestID, lastSeenMessageID int64) error {
	req := struct {
		HostRequestID     int64 `json:"hostRequestId"`
		LastSeenMessageID int64 `json:"lastSeenMessageId"`
	}{HostRequestID: hostRequestID, LastSeenMessageID: lastSeenMessageID}
	return s.inv.Invoke(ctx, methodMarkLastRequestSeen, &req, nil)
}
