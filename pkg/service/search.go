package service

import (
	"context"
	"time"

	"github.com/thevivek0408/couchsurfing-sub002/pkg/pagination"
	"github.com/thevivek0408/couchsurfing-sub002/pkg/rpc"
)

const methodUserSearch = "org.couchers.api.search.Search/UserSearch"

// Age filter bounds that mean "no filter".
const (
	DefaultAgeMin = 18
	DefaultAgeMax = 120
)

// BoundingBox is [lngMin, latMin, lngMax, latMax]. The zero box means no
// area filter.
type BoundingBox [4]float64

// UserSearchFilters narrows a user search. Zero values leave a filter unset;
// the tri-state booleans use nil for "don't care".
type UserSearchFilters struct {
	Query                  string
	AcceptsKids            bool
	AcceptsPets            bool
	AcceptsLastMinRequests bool
	DrinkingAllowed        *bool
	SmokesAtHome           *bool
	AgeMin                 int
	AgeMax                 int
	BBox                   BoundingBox
	LastActiveDays         int
	HasReferences          bool
	HasStrongVerification  bool
	CompleteProfile        bool
	HostingStatus          []HostingStatus
	NumGuests              int
	SelectedUserID         *int64
}

type rectArea struct {
	LatMin float64 `json:"latMin"`
	LngMin float64 `json:"lngMin"`
	LatMax float64 `json:"latMax"`
	LngMax float64 `json:"lngMax"`
}

type userSearchReq struct {
	PageToken                  string          `json:"pageToken,omitempty"`
	Query                      *string         `json:"query,omitempty"`
	AcceptsKids                *bool           `json:"acceptsKids,omitempty"`
	AcceptsPets                *bool           `json:"acceptsPets,omitempty"`
	LastMinute                 *bool           `json:"lastMinute,omitempty"`
	DrinkingAllowed            *bool           `json:"drinkingAllowed,omitempty"`
	SmokesAtHome               *bool           `json:"smokesAtHome,omitempty"`
	ProfileCompleted           *bool           `json:"profileCompleted,omitempty"`
	SearchInRectangle          *rectArea       `json:"searchInRectangle,omitempty"`
	LastActive                 *time.Time      `json:"lastActive,omitempty"`
	OnlyWithReferences         bool            `json:"onlyWithReferences,omitempty"`
	OnlyWithStrongVerification bool            `json:"onlyWithStrongVerification,omitempty"`
	HostingStatusFilter        []HostingStatus `json:"hostingStatusFilterList,omitempty"`
	AgeMin                     *int            `json:"ageMin,omitempty"`
	AgeMax                     *int            `json:"ageMax,omitempty"`
	Guests                     *int            `json:"guests,omitempty"`
	ExactlyUserIDs             []int64         `json:"exactlyUserIdsList,omitempty"`
}

// UserSearchResult is one ranked hit.
type UserSearchResult struct {
	Rank    float64 `json:"rank"`
	Snippet string  `json:"snippet,omitempty"`
	User    User    `json:"user"`
}

// UserSearchRes is one page of search results.
type UserSearchRes struct {
	Results       []UserSearchResult `json:"resultsList"`
	NextPageToken string             `json:"nextPageToken"`
	TotalItems    int                `json:"totalItems"`
}

// Page adapts the response for pagination.FetchAll.
func (r UserSearchRes) Page() pagination.Page[UserSearchResult, string] {
	return pagination.Page[UserSearchResult, string]{Items: r.Results, Next: r.NextPageToken}
}

// SearchService searches users.
type SearchService struct {
	inv rpc.Invoker
	now func() time.Time
}

func ptr[T any](v T) *T { return &v }

func (s *SearchService) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}

func (s *SearchService) buildUserSearch(f UserSearchFilters, pageToken string) userSearchReq {
	req := userSearchReq{PageToken: pageToken}
	if f.Query != "" {
		req.Query = ptr(f.Query)
	}
	if f.AcceptsKids {
		req.AcceptsKids = ptr(true)
	}
	if f.AcceptsPets {
		req.AcceptsPets = ptr(true)
	}
	if f.AcceptsLastMinRequests {
		req.LastMinute = ptr(true)
	}
	req.DrinkingAllowed = f.DrinkingAllowed
	req.SmokesAtHome = f.SmokesAtHome
	if f.CompleteProfile {
		req.ProfileCompleted = ptr(true)
	}
	if f.BBox != (BoundingBox{}) {
		req.SearchInRectangle = &rectArea{
			LngMin: f.BBox[0],
			LatMin: f.BBox[1],
			LngMax: f.BBox[2],
			LatMax: f.BBox[3],
		}
	}
	if f.LastActiveDays > 0 {
		req.LastActive = ptr(s.clock().Add(-time.Duration(f.LastActiveDays) * 24 * time.Hour))
	}
	req.OnlyWithReferences = f.HasReferences
	req.OnlyWithStrongVerification = f.HasStrongVerification
	if len(f.HostingStatus) > 0 {
		req.HostingStatusFilter = f.HostingStatus
	}
	if f.AgeMin != 0 && f.AgeMin != DefaultAgeMin {
		req.AgeMin = ptr(f.AgeMin)
	}
	if f.AgeMax != 0 && f.AgeMax != DefaultAgeMax {
		req.AgeMax = ptr(f.AgeMax)
	}
	if f.NumGuests > 0 {
		req.Guests = ptr(f.NumGuests)
	}
	if f.SelectedUserID != nil {
		req.ExactlyUserIDs = []int64{*f.SelectedUserID}
	}
	return req
}

// UserSearch returns one page of users matching f.
func (s *SearchService) UserSearch(ctx context.Context, f UserSearchFilters, pageToken string) (UserSearchRes, error) {
	req := s.buildUserSearch(f, pageToken)

	var res UserSearchRes
	if err := s.inv.Invoke(ctx, methodUserSearch, &req, &res); err != nil {
		return UserSearchRes{}, err
	}
	return res, nil
}
