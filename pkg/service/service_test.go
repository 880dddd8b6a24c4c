package service

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/thevivek0408/couchsurfing-sub002/pkg/pagination"
	"github.com/thevivek0408/couchsurfing-sub002/pkg/rpc"
)

// fakeInvoker records the last call and answers with a canned JSON body.
type fakeInvoker struct {
	method   string
	req      map[string]any
	response string
	err      error
	calls    int
}

func (f *fakeInvoker) Invoke(ctx context.Context, method string, req, resp any) error {
	f.calls++
	f.method = method
	f.req = nil
	if req != nil {
		data, err := json.Marshal(req)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(data, &f.req); err != nil {
			return err
		}
	}
	if f.err != nil {
		return f.err
	}
	if resp != nil && f.response != "" {
		return json.Unmarshal([]byte(f.response), resp)
	}
	return nil
}

func TestNew_PanicsOnNilInvoker(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Expected panic for nil invoker")
		}
	}()
	New(nil)
}

func TestAPI_GetUser(t *testing.T) {
	inv := &fakeInvoker{response: `{"userId":5,"username":"alice","friends":"FRIENDS"}`}
	svc := New(inv)

	user, err := svc.API.GetUser(context.Background(), "alice")
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if inv.method != methodGetUser {
		t.Errorf("method = %s", inv.method)
	}
	if inv.req["user"] != "alice" {
		t.Errorf("req = %v", inv.req)
	}
	if user.UserID != 5 || user.Friends != FriendFriends {
		t.Errorf("user = %+v", user)
	}
}

func TestAPI_PropagatesErrors(t *testing.T) {
	backendErr := &rpc.Error{Method: methodGetUser, Code: rpc.CodeNotFound, Message: "User not found."}
	svc := New(&fakeInvoker{err: backendErr})

	_, err := svc.API.GetUser(context.Background(), "ghost")
	if !rpc.IsNotFound(err) {
		t.Errorf("Expected NOT_FOUND, got %v", err)
	}
}

func TestAPI_FriendRequests(t *testing.T) {
	inv := &fakeInvoker{response: `{"sentList":[{"friendRequestId":1,"userId":2,"state":"PENDING","sent":true}],"receivedList":[{"friendRequestId":3,"userId":4}]}`}
	svc := New(inv)

	reqs, err := svc.API.ListFriendRequests(context.Background())
	if err != nil {
		t.Fatalf("ListFriendRequests failed: %v", err)
	}
	if len(reqs.Sent) != 1 || reqs.Sent[0].UserID != 2 || len(reqs.Received) != 1 {
		t.Errorf("requests = %+v", reqs)
	}

	if err := svc.API.SendFriendRequest(context.Background(), 9); err != nil {
		t.Fatalf("SendFriendRequest failed: %v", err)
	}
	if inv.method != methodSendFriendRequest || inv.req["userId"] != float64(9) {
		t.Errorf("call = %s %v", inv.method, inv.req)
	}
}

func TestUser_GetLiteUsers(t *testing.T) {
	inv := &fakeInvoker{response: `{"responsesList":[{"query":"1","user":{"userId":1,"name":"A"}},{"query":"2","notFound":true}]}`}
	svc := New(inv)

	res, err := svc.User.GetLiteUsers(context.Background(), []int64{1, 2})
	if err != nil {
		t.Fatalf("GetLiteUsers failed: %v", err)
	}
	if !reflect.DeepEqual(inv.req["usersList"], []any{"1", "2"}) {
		t.Errorf("usersList = %v", inv.req["usersList"])
	}
	if len(res) != 2 || res[0].User == nil || !res[1].NotFound || res[1].User != nil {
		t.Errorf("responses = %+v", res)
	}
}

func TestPages_OptionalFields(t *testing.T) {
	inv := &fakeInvoker{response: `{"pageId":3}`}
	svc := New(inv)
	ctx := context.Background()

	if _, err := svc.Pages.CreateGuide(ctx, CreateGuideInput{Title: "t", ParentCommunityID: 1, Lat: 1}); err != nil {
		t.Fatal(err)
	}
	if _, ok := inv.req["location"]; ok {
		t.Error("Guide location sent with only Lat set")
	}

	if _, err := svc.Pages.CreateGuide(ctx, CreateGuideInput{Title: "t", Lat: 1, Lng: 2}); err != nil {
		t.Fatal(err)
	}
	if _, ok := inv.req["location"]; !ok {
		t.Error("Guide location missing")
	}

	if _, err := svc.Pages.UpdatePage(ctx, UpdatePageInput{PageID: 3, Title: "new"}); err != nil {
		t.Fatal(err)
	}
	want := map[string]any{"pageId": float64(3), "title": "new"}
	if !reflect.DeepEqual(inv.req, want) {
		t.Errorf("update req = %v, want %v", inv.req, want)
	}
}

func TestNotifications_MarkNotificationSeenRequiresID(t *testing.T) {
	inv := &fakeInvoker{}
	svc := New(inv)

	err := svc.Notifications.MarkNotificationSeen(context.Background(), 0, true)
	if !errors.Is(err, ErrNotificationIDRequired) {
		t.Errorf("Expected ErrNotificationIDRequired, got %v", err)
	}
	if inv.calls != 0 {
		t.Error("Invalid request reached the backend")
	}

	if err := svc.Notifications.MarkNotificationSeen(context.Background(), 4, true); err != nil {
		t.Fatal(err)
	}
	if inv.req["notificationId"] != float64(4) || inv.req["setSeen"] != true {
		t.Errorf("req = %v", inv.req)
	}
}

func TestNotifications_SetPreference(t *testing.T) {
	inv := &fakeInvoker{response: `{"doNotEmailEnabled":false}`}
	svc := New(inv)

	_, err := svc.Notifications.SetNotificationPreference(context.Background(), NotificationPreference{
		Topic: "chat", Action: "message", DeliveryMethod: DeliveryEmail, Enabled: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	prefs, ok := inv.req["preferencesList"].([]any)
	if !ok || len(prefs) != 1 {
		t.Fatalf("preferencesList = %v", inv.req["preferencesList"])
	}
}

func TestDonations(t *testing.T) {
	inv := &fakeInvoker{response: `{"stripeCheckoutSessionId":"cs_1","stripePortalUrl":"https://portal"}`}
	svc := New(inv)
	ctx := context.Background()

	if _, err := svc.Donations.InitiateDonation(ctx, 0, false); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("Expected ErrInvalidAmount, got %v", err)
	}

	id, err := svc.Donations.InitiateDonation(ctx, 25, true)
	if err != nil || id != "cs_1" {
		t.Errorf("InitiateDonation = %q, %v", id, err)
	}
	url, err := svc.Donations.GetDonationPortalLink(ctx)
	if err != nil || url != "https://portal" {
		t.Errorf("GetDonationPortalLink = %q, %v", url, err)
	}
}

func TestSearch_BuildUserSearch(t *testing.T) {
	now := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
	s := &SearchService{now: func() time.Time { return now }}
	no := false
	selected := int64(8)

	tests := []struct {
		name    string
		filters UserSearchFilters
		check   func(t *testing.T, req userSearchReq)
	}{
		{
			name:    "empty filters",
			filters: UserSearchFilters{},
			check: func(t *testing.T, req userSearchReq) {
				if !reflect.DeepEqual(req, userSearchReq{PageToken: "tok"}) {
					t.Errorf("req = %+v", req)
				}
			},
		},
		{
			name:    "default ages are not sent",
			filters: UserSearchFilters{AgeMin: DefaultAgeMin, AgeMax: DefaultAgeMax},
			check: func(t *testing.T, req userSearchReq) {
				if req.AgeMin != nil || req.AgeMax != nil {
					t.Errorf("ages sent: %v %v", req.AgeMin, req.AgeMax)
				}
			},
		},
		{
			name:    "last active days",
			filters: UserSearchFilters{LastActiveDays: 7},
			check: func(t *testing.T, req userSearchReq) {
				if req.LastActive == nil || !req.LastActive.Equal(now.Add(-7*24*time.Hour)) {
					t.Errorf("LastActive = %v", req.LastActive)
				}
			},
		},
		{
			name:    "bbox and tri-state",
			filters: UserSearchFilters{BBox: BoundingBox{1, 2, 3, 4}, DrinkingAllowed: &no, SelectedUserID: &selected},
			check: func(t *testing.T, req userSearchReq) {
				if req.SearchInRectangle == nil || req.SearchInRectangle.LatMin != 2 || req.SearchInRectangle.LngMax != 3 {
					t.Errorf("rect = %+v", req.SearchInRectangle)
				}
				if req.DrinkingAllowed == nil || *req.DrinkingAllowed {
					t.Error("DrinkingAllowed should be sent as false")
				}
				if !reflect.DeepEqual(req.ExactlyUserIDs, []int64{8}) {
					t.Errorf("ExactlyUserIDs = %v", req.ExactlyUserIDs)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, s.buildUserSearch(tt.filters, "tok"))
		})
	}
}

func TestReferences_WriteTrimsText(t *testing.T) {
	inv := &fakeInvoker{response: `{"referenceId":1}`}
	svc := New(inv)

	_, err := svc.References.WriteFriendReference(context.Background(), WriteFriendReferenceReq{
		ToUserID: 2, Text: "  great host \n", WasAppropriate: true, Rating: 0.8,
	})
	if err != nil {
		t.Fatal(err)
	}
	if inv.req["text"] != "great host" || inv.req["wasAppropriate"] != true {
		t.Errorf("req = %v", inv.req)
	}
}

func TestAvailableWriteReferences_HasHostRequest(t *testing.T) {
	a := AvailableWriteReferences{Available: []AvailableWriteReference{{HostRequestID: 4}, {HostRequestID: 9}}}
	if !a.HasHostRequest(9) || a.HasHostRequest(5) {
		t.Error("HasHostRequest mismatch")
	}
}

func TestPageAdapters(t *testing.T) {
	chats := ListGroupChatsRes{GroupChats: []GroupChat{{GroupChatID: 1}}, LastMessageID: 50}
	if p := chats.Page(); p.Next != 50 || p.Done() {
		t.Errorf("chat page = %+v", p)
	}
	chats.NoMore = true
	if p := chats.Page(); !p.Done() {
		t.Error("NoMore page should be done")
	}

	reqs := ListHostRequestsRes{LastRequestID: 7, NoMore: true}
	if !reqs.Page().Done() {
		t.Error("NoMore host request page should be done")
	}

	refs := ListReferencesRes{NextPageToken: "12"}
	if refs.Page().Next != "12" {
		t.Error("reference page token lost")
	}
}

func TestFetchAllGroupChats(t *testing.T) {
	pages := map[int64]string{
		0:  `{"groupChatsList":[{"groupChatId":1},{"groupChatId":2}],"lastMessageId":20}`,
		20: `{"groupChatsList":[{"groupChatId":3}],"lastMessageId":10,"noMore":true}`,
	}
	inv := &pagedInvoker{pages: pages}
	svc := New(inv)

	chats, err := pagination.FetchAll(context.Background(), func(ctx context.Context, after int64) (pagination.Page[GroupChat, int64], error) {
		res, err := svc.Conversations.ListGroupChats(ctx, after)
		return res.Page(), err
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(chats) != 3 || chats[2].GroupChatID != 3 {
		t.Errorf("chats = %+v", chats)
	}
}

type pagedInvoker struct {
	pages map[int64]string
}

func (p *pagedInvoker) Invoke(ctx context.Context, method string, req, resp any) error {
	data, _ := json.Marshal(req)
	var r struct {
		LastMessageID int64 `json:"lastMessageId"`
	}
	_ = json.Unmarshal(data, &r)
	body, ok := p.pages[r.LastMessageID]
	if !ok {
		return errors.New("unexpected cursor")
	}
	return json.Unmarshal([]byte(body), resp)
}

func TestHostRequest_HasUnseen(t *testing.T) {
	tests := []struct {
		name string
		req  HostRequest
		want bool
	}{
		{"no messages", HostRequest{}, false},
		{"seen", HostRequest{LatestMessage: &Message{MessageID: 5}, LastSeenMessageID: 5}, false},
		{"unseen", HostRequest{LatestMessage: &Message{MessageID: 6}, LastSeenMessageID: 5}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.req.HasUnseen(); got != tt.want {
				t.Errorf("HasUnseen() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseHostRequestRole(t *testing.T) {
	if r, err := ParseHostRequestRole("hosting"); err != nil || r != HostRequestsHosting {
		t.Errorf("ParseHostRequestRole = %q, %v", r, err)
	}
	if _, err := ParseHostRequestRole("sleeping"); err == nil {
		t.Error("Expected error for unknown role")
	}
}
