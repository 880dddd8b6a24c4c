package service

import (
	"context"
	"errors"

	"github.com/thevivek0408/couchsurfing-sub002/pkg/rpc"
)

const (
	methodInitiateDonation      = "org.couchers.api.donations.Donations/InitiateDonation"
	methodGetDonationPortalLink = "org.couchers.api.donations.Donations/GetDonationPortalLink"
)

// ErrInvalidAmount is returned for non-positive donation amounts.
var ErrInvalidAmount = errors.New("donation amount must be positive")

// DonationsService starts donations and links to their management portal.
type DonationsService struct {
	inv rpc.Invoker
}

// InitiateDonation starts a checkout for amount and returns the checkout
// session id.
func (s *DonationsService) InitiateDonation(ctx context.Context, amount int, recurring bool) (string, error) {
	if amount <= 0 {
		return "", ErrInvalidAmount
	}
	req := struct {
		Amount    int  `json:"amount"`
		Recurring bool `json:"recurring"`
	}{Amount: amount, Recurring: recurring}

	var res struct {
		StripeCheckoutSessionID string `json:"stripeCheckoutSessionId"`
	}
	if err := s.inv.Invoke(ctx, methodInitiateDonation, &req, &res); err != nil {
		return "", err
	}
	return res.StripeCheckoutSessionID, nil
}

// GetDonationPortalLink returns the URL where recurring donations are managed.
func (s *DonationsService) GetDonationPortalLink(ctx context.Context) (string, error) {
	var res struct {
		StripePortalURL string `json:"stripePortalUrl"`
	}
	if err := s.inv.Invoke(ctx, methodGetDonationPortalLink, nil, &res); err != nil {
		return "", err
	}
	return res.StripePortalURL, nil
}
