package service

import (
	"context"
	"strconv"

	"github.com/thevivek0408/couchsurfing-sub002/pkg/rpc"
)

const (
	methodGetLiteUser  = "org.couchers.api.core.API/GetLiteUser"
	methodGetLiteUsers = "org.couchers.api.core.API/GetLiteUsers"
)

// LiteUserResponse is one entry of a GetLiteUsers batch. User is nil when
// NotFound is set.
type LiteUserResponse struct {
	Query    string    `json:"query"`
	NotFound bool      `json:"notFound"`
	User     *LiteUser `json:"user,omitempty"`
}

// UserService serves compact profiles.
type UserService struct {
	inv rpc.Invoker
}

// GetLiteUser fetches one compact profile by user id or username.
func (s *UserService) GetLiteUser(ctx context.Context, user string) (LiteUser, error) {
	req := struct {
		User string `json:"user"`
	}{User: user}

	var res LiteUser
	if err := s.inv.Invoke(ctx, methodGetLiteUser, &req, &res); err != nil {
		return LiteUser{}, err
	}
	return res, nil
}

// GetLiteUsers fetches compact profiles for ids in one call. Responses come
// back in request order.
func (s *UserService) GetLiteUsers(ctx context.Context, ids []int64) ([]LiteUserResponse, error) {
	users := make([]string, len(ids))
	for i, id := range ids {
		users[i] = strconv.FormatInt(id, 10)
	}
	req := struct {
		Users []string `json:"usersList"`
	}{Users: users}

	var res struct {
		Responses []LiteUserResponse `json:"responsesList"`
	}
	if err := s.inv.Invoke(ctx, methodGetLiteUsers, &req, &res); err != nil {
		return nil, err
	}
	return res.Responses, nil
}
