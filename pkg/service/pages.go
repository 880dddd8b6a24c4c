package service

import (
	"context"

	"github.com/thevivek0408/couchsurfing-sub002/pkg/rpc"
)

const (
	methodCreatePlace = "org.couchers.api.pages.Pages/CreatePlace"
	methodCreateGuide = "org.couchers.api.pages.Pages/CreateGuide"
	methodGetPage     = "org.couchers.api.pages.Pages/GetPage"
	methodUpdatePage  = "org.couchers.api.pages.Pages/UpdatePage"
)

// Coordinate is a point on the map.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// CommunityPage is a place or guide page.
type CommunityPage struct {
	PageID            int64       `json:"pageId"`
	Type              string      `json:"type"`
	Slug              string      `json:"slug"`
	Title             string      `json:"title"`
	Content           string      `json:"content"`
	Address           string      `json:"address,omitempty"`
	Location          *Coordinate `json:"location,omitempty"`
	PhotoURL          string      `json:"photoUrl,omitempty"`
	ParentCommunityID int64       `json:"parentCommunityId,omitempty"`
	CanEdit           bool        `json:"canEdit"`
}

// CreatePlaceInput describes a new place page.
type CreatePlaceInput struct {
	Title    string
	Content  string
	Address  string
	Lat      float64
	Lng      float64
	PhotoKey string
}

// CreateGuideInput describes a new guide page. The location is only sent
// when both Lat and Lng are non-zero.
type CreateGuideInput struct {
	Title             string
	Content           string
	ParentCommunityID int64
	Address           string
	Lat               float64
	Lng               float64
}

// UpdatePageInput lists the fields to change. Empty strings leave the
// field untouched.
type UpdatePageInput struct {
	PageID   int64
	Content  string
	Title    string
	PhotoKey string
}

// PagesService manages community pages.
type PagesService struct {
	inv rpc.Invoker
}

// CreatePlace creates a place page.
func (s *PagesService) CreatePlace(ctx context.Context, in CreatePlaceInput) (CommunityPage, error) {
	req := struct {
		Title    string     `json:"title"`
		Content  string     `json:"content"`
		Address  string     `json:"address"`
		Location Coordinate `json:"location"`
		PhotoKey string     `json:"photoKey,omitempty"`
	}{
		Title:    in.Title,
		Content:  in.Content,
		Address:  in.Address,
		Location: Coordinate{Lat: in.Lat, Lng: in.Lng},
		PhotoKey: in.PhotoKey,
	}

	var res CommunityPage
	if err := s.inv.Invoke(ctx, methodCreatePlace, &req, &res); err != nil {
		return CommunityPage{}, err
	}
	return res, nil
}

// CreateGuide creates a guide page under a community.
func (s *PagesService) CreateGuide(ctx context.Context, in CreateGuideInput) (CommunityPage, error) {
	req := struct {
		Title             string      `json:"title"`
		Content           string      `json:"content"`
		Address           string      `json:"address"`
		Location          *Coordinate `json:"location,omitempty"`
		ParentCommunityID int64       `json:"parentCommunityId"`
	}{
		Title:             in.Title,
		Content:           in.Content,
		Address:           in.Address,
		ParentCommunityID: in.ParentCommunityID,
	}
	if in.Lat != 0 && in.Lng != 0 {
		req.Location = &Coordinate{Lat: in.Lat, Lng: in.Lng}
	}

	var res CommunityPage
	if err := s.inv.Invoke(ctx, methodCreateGuide, &req, &res); err != nil {
		return CommunityPage{}, err
	}
	return res, nil
}

// GetPage fetches a page by id.
func (s *PagesService) GetPage(ctx context.Context, pageID int64) (CommunityPage, error) {
	req := struct {
		PageID int64 `json:"pageId"`
	}{PageID: pageID}

	var res CommunityPage
	if err := s.inv.Invoke(ctx, methodGetPage, &req, &res); err != nil {
		return CommunityPage{}, err
	}
	return res, nil
}

// UpdatePage changes the non-empty fields of in.
func (s *PagesService) UpdatePage(ctx context.Context, in UpdatePageInput) (CommunityPage, error) {
	req := struct {
		PageID   int64   `json:"pageId"`
		Title    *string `json:"title,omitempty"`
		Content  *string `json:"content,omitempty"`
		PhotoKey *string `json:"photoKey,omitempty"`
	}{PageID: in.PageID}
	if in.Title != "" {
		req.Title = &in.Title
	}
	if in.Content != "" {
		req.Content = &in.Content
	}
	if in.PhotoKey != "" {
		req.PhotoKey = &in.PhotoKey
	}

	var res CommunityPage
	if err := s.inv.Invoke(ctx, methodUpdatePage, &req, &res); err != nil {
		return CommunityPage{}, err
	}
	return res, nil
}
