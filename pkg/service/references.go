package service

import (
	"context"
	"strings"
	"time"

	"github.com/thevivek0408/couchsurfing-sub002/pkg/pagination"
	"github.com/thevivek0408/couchsurfing-sub002/pkg/rpc"
)

const (
	methodListReferences            = "org.couchers.api.references.References/ListReferences"
	methodAvailableWriteReferences  = "org.couchers.api.references.References/AvailableWriteReferences"
	methodWriteFriendReference      = "org.couchers.api.references.References/WriteFriendReference"
	methodWriteHostRequestReference = "org.couchers.api.references.References/WriteHostRequestReference"
)

// ReferenceType is the relation a reference was written about.
type ReferenceType string

const (
	ReferenceTypeFriend ReferenceType = "REFERENCE_TYPE_FRIEND"
	ReferenceTypeSurfed ReferenceType = "REFERENCE_TYPE_SURFED"
	ReferenceTypeHosted ReferenceType = "REFERENCE_TYPE_HOSTED"
)

// Reference is a written reference.
type Reference struct {
	ReferenceID   int64         `json:"referenceId"`
	FromUserID    int64         `json:"fromUserId"`
	ToUserID      int64         `json:"toUserId"`
	ReferenceType ReferenceType `json:"referenceType"`
	Text          string        `json:"text"`
	WrittenTime   time.Time     `json:"writtenTime"`
	HostRequestID int64         `json:"hostRequestId,omitempty"`
}

// ListReferencesReq filters references by author, recipient and type. At
// least one of FromUserID and ToUserID must be set.
type ListReferencesReq struct {
	FromUserID          int64           `json:"fromUserId,omitempty"`
	ToUserID            int64           `json:"toUserId,omitempty"`
	ReferenceTypeFilter []ReferenceType `json:"referenceTypeFilterList,omitempty"`
	PageSize            int             `json:"pageSize,omitempty"`
	PageToken           string          `json:"pageToken,omitempty"`
}

// ListReferencesRes is one page of references.
type ListReferencesRes struct {
	References    []Reference `json:"referencesList"`
	NextPageToken string      `json:"nextPageToken"`
}

// Page adapts the response for pagination.FetchAll.
func (r ListReferencesRes) Page() pagination.Page[Reference, string] {
	return pagination.Page[Reference, string]{Items: r.References, Next: r.NextPageToken}
}

// AvailableWriteReference is a host request the caller may still review.
type AvailableWriteReference struct {
	HostRequestID int64         `json:"hostRequestId"`
	ReferenceType ReferenceType `json:"referenceType"`
	TimeExpires   time.Time     `json:"timeExpires"`
}

// AvailableWriteReferences lists what the caller may write about a user.
type AvailableWriteReferences struct {
	CanWriteFriendReference bool                      `json:"canWriteFriendReference"`
	Available               []AvailableWriteReference `json:"availableWriteReferencesList"`
}

// HasHostRequest reports whether a reference for hostRequestID can be written.
func (a AvailableWriteReferences) HasHostRequest(hostRequestID int64) bool {
	for _, r := range a.Available {
		if r.HostRequestID == hostRequestID {
			return true
		}
	}
	return false
}

// WriteFriendReferenceReq is a reference for a friend.
type WriteFriendReferenceReq struct {
	ToUserID       int64   `json:"toUserId"`
	Text           string  `json:"text"`
	PrivateText    string  `json:"privateText,omitempty"`
	WasAppropriate bool    `json:"wasAppropriate"`
	Rating         float64 `json:"rating"`
}

// WriteHostRequestReferenceReq is a reference for a completed stay.
type WriteHostRequestReferenceReq struct {
	HostRequestID  int64   `json:"hostRequestId"`
	Text           string  `json:"text"`
	PrivateText    string  `json:"privateText,omitempty"`
	WasAppropriate bool    `json:"wasAppropriate"`
	Rating         float64 `json:"rating"`
}

// ReferencesService lists and writes references.
type ReferencesService struct {
	inv rpc.Invoker
}

// ListReferences returns one page of references.
func (s *ReferencesService) ListReferences(ctx context.Context, req ListReferencesReq) (ListReferencesRes, error) {
	var res ListReferencesRes
	if err := s.inv.Invoke(ctx, methodListReferences, &req, &res); err != nil {
		return ListReferencesRes{}, err
	}
	return res, nil
}

// ListReferencesGiven returns one page of references written by userID.
func (s *ReferencesService) ListReferencesGiven(ctx context.Context, userID int64, pageToken string) (ListReferencesRes, error) {
	return s.ListReferences(ctx, ListReferencesReq{FromUserID: userID, PageToken: pageToken})
}

// ListReferencesReceived returns one page of references about userID,
// restricted to types when any are given.
func (s *ReferencesService) ListReferencesReceived(ctx context.Context, userID int64, pageToken string, types ...ReferenceType) (ListReferencesRes, error) {
	return s.ListReferences(ctx, ListReferencesReq{ToUserID: userID, PageToken: pageToken, ReferenceTypeFilter: types})
}

// AvailableWriteReferences returns what the caller may write about userID.
func (s *ReferencesService) AvailableWriteReferences(ctx context.Context, userID int64) (AvailableWriteReferences, error) {
	req := struct {
		ToUserID int64 `json:"toUserId"`
	}{ToUserID: userID}

	var res AvailableWriteReferences
	if err := s.inv.Invoke(ctx, methodAvailableWriteReferences, &req, &res); err != nil {
		return AvailableWriteReferences{}, err
	}
	return res, nil
}

// WriteFriendReference writes a reference for a friend. Text is trimmed.
func (s *ReferencesService) WriteFriendReference(ctx context.Context, req WriteFriendReferenceReq) (Reference, error) {
	req.Text = strings.TrimSpace(req.Text)
	req.PrivateText = strings.TrimSpace(req.PrivateText)

	var res Reference
	if err := s.inv.Invoke(ctx, methodWriteFriendReference, &req, &res); err != nil {
		return Reference{}, err
	}
	return res, nil
}

// WriteHostRequestReference writes a reference for a stay. Text is trimmed.
func (s *ReferencesService) WriteHostRequestReference(ctx context.Context, req WriteHostRequestReferenceReq) (Reference, error) {
	req.Text = strings.TrimSpace(req.Text)
	req.PrivateText = strings.TrimSpace(req.PrivateText)

	var res Reference
	if err := s.inv.Invoke(ctx, methodWriteHostRequestReference, &req, &res); err != nil {
		return Reference{}, err
	}
	return res, nil
}
