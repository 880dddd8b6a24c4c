// Package service is the typed facade over the backend RPC services. Each
// function builds a request message, invokes one backend method and
// unwraps the response. Callers normally go through pkg/queries, which adds
// caching on top.
package service

import (
	"github.com/thevivek0408/couchsurfing-sub002/pkg/rpc"
)

// Service groups the per-backend-service facades.
type Service struct {
	API           *APIService
	User          *UserService
	Pages         *PagesService
	Notifications *NotificationsService
	Donations     *DonationsService
	Search        *SearchService
	References    *ReferencesService
	Conversations *ConversationsService
	Requests      *RequestsService
}

// New creates the facade on top of inv.
func New(inv rpc.Invoker) *Service {
	if inv == nil {
		panic("rpc invoker cannot be nil")
	}
	return &Service{
		API:           &APIService{inv: inv},
		User:          &UserService{inv: inv},
		Pages:         &PagesService{inv: inv},
		Notifications: &NotificationsService{inv: inv},
		Donations:     &DonationsService{inv: inv},
		Search:        &SearchService{inv: inv},
		References:    &ReferencesService{inv: inv},
		Conversations: &ConversationsService{inv: inv},
		Requests:      &RequestsService{inv: inv},
	}
}
