package service

import (
	"context"

	"github.com/thevivek0408/couchsurfing-sub002/pkg/rpc"
)

const (
	methodGetUser              = "org.couchers.api.core.API/GetUser"
	methodListFriends          = "org.couchers.api.core.API/ListFriends"
	methodListFriendRequests   = "org.couchers.api.core.API/ListFriendRequests"
	methodSendFriendRequest    = "org.couchers.api.core.API/SendFriendRequest"
	methodRespondFriendRequest = "org.couchers.api.core.API/RespondFriendRequest"
	methodCancelFriendRequest  = "org.couchers.api.core.API/CancelFriendRequest"
)

// FriendRequestState is the lifecycle state of a friend request.
type FriendRequestState string

const (
	FriendRequestPending  FriendRequestState = "PENDING"
	FriendRequestAccepted FriendRequestState = "ACCEPTED"
	FriendRequestRejected FriendRequestState = "REJECTED"
)

// FriendRequest is a request sent or received by the caller. UserID is the
// other party.
type FriendRequest struct {
	FriendRequestID int64              `json:"friendRequestId"`
	State           FriendRequestState `json:"state"`
	UserID          int64              `json:"userId"`
	Sent            bool               `json:"sent"`
}

// FriendRequests holds both directions of the caller's pending requests.
type FriendRequests struct {
	Sent     []FriendRequest `json:"sentList"`
	Received []FriendRequest `json:"receivedList"`
}

// APIService is the core profile and friendship service.
type APIService struct {
	inv rpc.Invoker
}

// GetUser fetches a profile by user id or username.
func (s *APIService) GetUser(ctx context.Context, user string) (User, error) {
	req := struct {
		User string `json:"user"`
	}{User: user}

	var res User
	if err := s.inv.Invoke(ctx, methodGetUser, &req, &res); err != nil {
		return User{}, err
	}
	return res, nil
}

// ListFriends returns the caller's friends' user ids.
func (s *APIService) ListFriends(ctx context.Context) ([]int64, error) {
	var res struct {
		UserIDs []int64 `json:"userIdsList"`
	}
	if err := s.inv.Invoke(ctx, methodListFriends, nil, &res); err != nil {
		return nil, err
	}
	return res.UserIDs, nil
}

// ListFriendRequests returns the caller's sent and received friend requests.
func (s *APIService) ListFriendRequests(ctx context.Context) (FriendRequests, error) {
	var res FriendRequests
	if err := s.inv.Invoke(ctx, methodListFriendRequests, nil, &res); err != nil {
		return FriendRequests{}, err
	}
	return res, nil
}

// SendFriendRequest asks userID to become the caller's friend.
func (s *APIService) SendFriendRequest(ctx context.Context, userID int64) error {
	req := struct {
		UserID int64 `json:"userId"`
	}{UserID: userID}
	return s.inv.Invoke(ctx, methodSendFriendRequest, &req, nil)
}

// RespondFriendRequest accepts or rejects a received request.
func (s *APIService) RespondFriendRequest(ctx context.Context, friendRequestID int64, accept bool) error {
	req := struct {
		FriendRequestID int64 `json:"friendRequestId"`
		Accept          bool  `json:"accept"`
	}{FriendRequestID: friendRequestID, Accept: accept}
	return s.inv.Invoke(ctx, methodRespondFriendRequest, &req, nil)
}

// CancelFriendRequest withdraws a sent request.
func (s *APIService) CancelFriendRequest(ctx context.Context, friendRequestID int64) error {
	req := struct {
		FriendRequestID int64 `json:"friendRequestId"`
	}{FriendRequestID: friendRequestID}
	return s.inv.Invoke(ctx, methodCancelFriendRequest, &req, nil)
}
