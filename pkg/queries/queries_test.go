package queries

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"testing"

	"github.com/thevivek0408/couchsurfing-sub002/internal/testutil"
	"github.com/thevivek0408/couchsurfing-sub002/pkg/cache"
	"github.com/thevivek0408/couchsurfing-sub002/pkg/rpc"
	"github.com/thevivek0408/couchsurfing-sub002/pkg/service"
)

const (
	getUser                  = "org.couchers.api.core.API/GetUser"
	getLiteUser              = "org.couchers.api.core.API/GetLiteUser"
	getLiteUsers             = "org.couchers.api.core.API/GetLiteUsers"
	listFriendRequests       = "org.couchers.api.core.API/ListFriendRequests"
	sendFriendRequest        = "org.couchers.api.core.API/SendFriendRequest"
	listGroupChats           = "org.couchers.api.conversations.Conversations/ListGroupChats"
	markLastSeenGroupChat    = "org.couchers.api.conversations.Conversations/MarkLastSeenGroupChat"
	listHostRequests         = "org.couchers.api.requests.Requests/ListHostRequests"
	markLastRequestSeen      = "org.couchers.api.requests.Requests/MarkLastSeenHostRequest"
	listNotifications        = "org.couchers.notifications.Notifications/ListNotifications"
	markAllNotificationsSeen = "org.couchers.notifications.Notifications/MarkAllNotificationsSeen"
	listReferences           = "org.couchers.api.references.References/ListReferences"
)

func newTestQueries(t *testing.T) (*Queries, *testutil.MockBackend) {
	t.Helper()
	mock := testutil.NewMockBackend()
	t.Cleanup(mock.Close)

	cfg := rpc.DefaultConfig(mock.URL(), "couchers-test")
	cfg.Resolver = nil
	client, err := rpc.New(cfg)
	if err != nil {
		t.Fatalf("rpc.New failed: %v", err)
	}
	return New(service.New(client), cache.New(cache.DefaultConfig())), mock
}

func decodeBody(t *testing.T, body []byte) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(body, &m); err != nil {
		t.Fatalf("invalid request body %q: %v", body, err)
	}
	return m
}

func requestField(r *http.Request, field string) any {
	var m map[string]any
	_ = json.NewDecoder(r.Body).Decode(&m)
	return m[field]
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func TestUser_CachedWithinStaleTime(t *testing.T) {
	q, mock := newTestQueries(t)
	mock.SetJSON(getUser, service.User{UserID: 5, Username: "alice", Friends: service.FriendNotFriends})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		u, err := q.User(ctx, 5)
		if err != nil {
			t.Fatalf("User failed: %v", err)
		}
		if u.Username != "alice" {
			t.Errorf("user = %+v", u)
		}
	}
	if n := mock.CallCount(getUser); n != 1 {
		t.Errorf("GetUser calls = %d, want 1", n)
	}
	if got := decodeBody(t, mock.Requests(getUser)[0])["user"]; got != "5" {
		t.Errorf("user param = %v, want \"5\"", got)
	}
}

func TestSendFriendRequest_RevertsWhenRejected(t *testing.T) {
	q, mock := newTestQueries(t)
	ctx := context.Background()
	before := service.User{UserID: 7, Username: "bob", Friends: service.FriendNotFriends}
	mock.SetJSON(getUser, before)

	if _, err := q.User(ctx, 7); err != nil {
		t.Fatalf("User failed: %v", err)
	}

	var during service.FriendshipStatus
	mock.SetHandler(sendFriendRequest, func(w http.ResponseWriter, r *http.Request) {
		u, _ := cache.GetData[service.User](q.Cache(), UserKey(7))
		during = u.Friends
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"code":"PERMISSION_DENIED","message":"You can't send a friend request to this user."}`))
	})

	err := q.SendFriendRequest(ctx, 7)
	if rpc.CodeOf(err) != rpc.CodePermissionDenied {
		t.Fatalf("Expected PERMISSION_DENIED, got %v", err)
	}
	if during != service.FriendPending {
		t.Errorf("friends during request = %q, want PENDING", during)
	}

	after, ok := cache.GetData[service.User](q.Cache(), UserKey(7))
	if !ok || after != before {
		t.Errorf("cached user after rejection = %+v, want %+v", after, before)
	}
}

func TestSendFriendRequest_SuccessRefetchesUser(t *testing.T) {
	q, mock := newTestQueries(t)
	ctx := context.Background()
	mock.SetJSON(getUser, service.User{UserID: 7, Friends: service.FriendNotFriends})
	mock.SetResponse(sendFriendRequest, testutil.NewJSONResponse(`{}`))

	if _, err := q.User(ctx, 7); err != nil {
		t.Fatal(err)
	}
	if err := q.SendFriendRequest(ctx, 7); err != nil {
		t.Fatalf("SendFriendRequest failed: %v", err)
	}

	e, _ := q.Cache().Get(UserKey(7))
	if !e.Invalidated {
		t.Error("user key should be invalidated after success")
	}

	mock.SetJSON(getUser, service.User{UserID: 7, Friends: service.FriendPending})
	u, err := q.User(ctx, 7)
	if err != nil {
		t.Fatal(err)
	}
	if u.Friends != service.FriendPending || mock.CallCount(getUser) != 2 {
		t.Errorf("user = %+v after %d calls", u, mock.CallCount(getUser))
	}
}

func TestSendFriendRequest_NothingCached(t *testing.T) {
	q, mock := newTestQueries(t)
	mock.SetError(sendFriendRequest, rpc.CodeFailedPrecondition, "Already friends")

	if err := q.SendFriendRequest(context.Background(), 7); err == nil {
		t.Fatal("Expected error")
	}
	if _, ok := q.Cache().Get(UserKey(7)); ok {
		t.Error("Failed mutation created a user entry")
	}
}

func TestUniqueIDs(t *testing.T) {
	tests := []struct {
		name string
		ids  []int64
		want []int64
	}{
		{"nil", nil, []int64{}},
		{"zeros dropped", []int64{0, 1, 0}, []int64{1}},
		{"duplicates dropped", []int64{3, 1, 3, 2, 1}, []int64{3, 1, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UniqueIDs(tt.ids); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("UniqueIDs(%v) = %v, want %v", tt.ids, got, tt.want)
			}
		})
	}
}

func TestLiteUsers(t *testing.T) {
	q, mock := newTestQueries(t)
	mock.SetResponse(getLiteUsers, testutil.NewJSONResponse(`{"responsesList":[
		{"query":"1","user":{"userId":1,"name":"Funny Cat"}},
		{"query":"2","notFound":true},
		{"query":"3","user":{"userId":3,"name":"Funny Dog"}}
	]}`))
	ctx := context.Background()

	users, err := q.LiteUsers(ctx, []int64{1, 0, 2, 3, 1})
	if err != nil {
		t.Fatalf("LiteUsers failed: %v", err)
	}
	if len(users) != 2 || users[1].Name != "Funny Cat" || users[3].Name != "Funny Dog" {
		t.Errorf("users = %+v", users)
	}
	if got := decodeBody(t, mock.Requests(getLiteUsers)[0])["usersList"]; !reflect.DeepEqual(got, []any{"1", "2", "3"}) {
		t.Errorf("usersList = %v", got)
	}

	list, err := q.LiteUsersList(ctx, []int64{3, 2, 0, 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 4 || list[0].UserID != 3 || list[1] != nil || list[2] != nil || list[3].UserID != 1 {
		t.Errorf("list = %+v", list)
	}
}

func TestLiteUsers_EmptyIsDisabled(t *testing.T) {
	q, mock := newTestQueries(t)

	users, err := q.LiteUsers(context.Background(), []int64{0, 0})
	if err != nil || users != nil {
		t.Errorf("LiteUsers = %v, %v; want nil, nil", users, err)
	}
	if mock.GetRequestCount() != 0 {
		t.Error("Disabled query reached the backend")
	}
}

func TestLiteUser_Retry(t *testing.T) {
	tests := []struct {
		name      string
		code      rpc.Code
		wantCalls int
	}{
		{"not found is not retried", rpc.CodeNotFound, 1},
		{"unavailable is retried once", rpc.CodeUnavailable, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, mock := newTestQueries(t)
			mock.SetError(getLiteUser, tt.code, "nope")

			_, err := q.LiteUser(context.Background(), 9)
			if rpc.CodeOf(err) != tt.code {
				t.Errorf("code = %s, want %s", rpc.CodeOf(err), tt.code)
			}
			if n := mock.CallCount(getLiteUser); n != tt.wantCalls {
				t.Errorf("calls = %d, want %d", n, tt.wantCalls)
			}
		})
	}
}

func TestLiteUser_ZeroIDDisabled(t *testing.T) {
	q, mock := newTestQueries(t)

	_, err := q.LiteUser(context.Background(), 0)
	if !errors.Is(err, cache.ErrDisabled) {
		t.Errorf("Expected ErrDisabled, got %v", err)
	}
	if mock.GetRequestCount() != 0 {
		t.Error("Disabled query reached the backend")
	}
}

func TestFriendRequests_JoinsLiteUsers(t *testing.T) {
	q, mock := newTestQueries(t)
	mock.SetResponse(listFriendRequests, testutil.NewJSONResponse(`{
		"sentList":[{"friendRequestId":1,"userId":2,"state":"PENDING","sent":true}],
		"receivedList":[{"friendRequestId":3,"userId":4},{"friendRequestId":5,"userId":6}]
	}`))
	mock.SetResponse(getLiteUsers, testutil.NewJSONResponse(`{"responsesList":[
		{"query":"4","user":{"userId":4,"name":"Four"}},
		{"query":"6","notFound":true}
	]}`))

	got, err := q.FriendRequests(context.Background(), FriendRequestsReceived)
	if err != nil {
		t.Fatalf("FriendRequests failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d requests, want 2", len(got))
	}
	if got[0].FriendRequestID != 3 || got[0].Friend == nil || got[0].Friend.Name != "Four" {
		t.Errorf("first = %+v", got[0])
	}
	if got[1].Friend != nil {
		t.Errorf("unknown user should have no profile: %+v", got[1])
	}
}

func TestMarkAllRead_Chats(t *testing.T) {
	q, mock := newTestQueries(t)
	ctx := context.Background()

	mock.SetHandler(listGroupChats, func(w http.ResponseWriter, r *http.Request) {
		switch requestField(r, "lastMessageId") {
		case nil:
			writeJSON(w, map[string]any{
				"groupChatsList": []map[string]any{
					{"groupChatId": 1, "lastSeenMessageId": 10, "latestMessage": map[string]any{"messageId": 12}},
					{"groupChatId": 2, "lastSeenMessageId": 9, "latestMessage": map[string]any{"messageId": 9}},
				},
				"lastMessageId": 9,
			})
		case float64(9):
			writeJSON(w, map[string]any{
				"groupChatsList": []map[string]any{
					{"groupChatId": 3, "lastSeenMessageId": 0, "latestMessage": map[string]any{"messageId": 4}},
					{"groupChatId": 4},
				},
				"lastMessageId": 4,
				"noMore":        true,
			})
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	})
	mock.SetResponse(markLastSeenGroupChat, testutil.NewJSONResponse(`{}`))

	q.Cache().Set(GroupChatsListKey, []service.GroupChat{})
	q.Cache().Set(HostRequestsListKey(false, "all"), []service.HostRequest{})

	n, err := q.MarkAllRead(ctx, KindChats)
	if err != nil {
		t.Fatalf("MarkAllRead failed: %v", err)
	}
	if n != 2 {
		t.Errorf("marked = %d, want 2", n)
	}

	marked := map[float64]float64{}
	for _, body := range mock.Requests(markLastSeenGroupChat) {
		m := decodeBody(t, body)
		marked[m["groupChatId"].(float64)] = m["lastSeenMessageId"].(float64)
	}
	if want := map[float64]float64{1: 12, 3: 4}; !reflect.DeepEqual(marked, want) {
		t.Errorf("marked = %v, want %v", marked, want)
	}

	for _, key := range []cache.Key{GroupChatsListKey, HostRequestsListKey(false, "all")} {
		if e, _ := q.Cache().Get(key); !e.Invalidated {
			t.Errorf("%s not invalidated", key)
		}
	}
}

func TestMarkAllRead_HostRequests(t *testing.T) {
	q, mock := newTestQueries(t)

	mock.SetHandler(listHostRequests, func(w http.ResponseWriter, r *http.Request) {
		if requestField(r, "onlyHosting") != true {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		writeJSON(w, map[string]any{
			"hostRequestsList": []map[string]any{
				{"hostRequestId": 5, "lastSeenMessageId": 1, "latestMessage": map[string]any{"messageId": 2}},
			},
			"noMore": true,
		})
	})
	mock.SetResponse(markLastRequestSeen, testutil.NewJSONResponse(`{}`))

	n, err := q.MarkAllRead(context.Background(), KindHosting)
	if err != nil {
		t.Fatalf("MarkAllRead failed: %v", err)
	}
	if n != 1 || mock.CallCount(markLastRequestSeen) != 1 {
		t.Errorf("marked = %d, calls = %d", n, mock.CallCount(markLastRequestSeen))
	}
}

func TestMarkAllRead_ListFailureMarksNothing(t *testing.T) {
	q, mock := newTestQueries(t)
	mock.SetResponse(listGroupChats, testutil.NewUpstreamErrorResponse())
	q.Cache().Set(GroupChatsListKey, []service.GroupChat{})

	_, err := q.MarkAllRead(context.Background(), KindChats)
	if err == nil {
		t.Fatal("Expected error")
	}
	if got := rpc.FriendlyError(err); got == rpc.Message(err) {
		t.Errorf("upstream error not mapped to friendly text: %q", got)
	}
	if mock.CallCount(markLastSeenGroupChat) != 0 {
		t.Error("Marks sent despite list failure")
	}
	if e, _ := q.Cache().Get(GroupChatsListKey); e.Invalidated {
		t.Error("Failed mutation invalidated the list")
	}
}

func TestMarkAllRead_UnknownKind(t *testing.T) {
	q, _ := newTestQueries(t)
	_, err := q.MarkAllRead(context.Background(), ConversationKind("archive"))
	if !errors.Is(err, ErrUnknownConversationKind) {
		t.Errorf("Expected ErrUnknownConversationKind, got %v", err)
	}
}

func TestNotifications_AllPages(t *testing.T) {
	q, mock := newTestQueries(t)
	mock.SetHandler(listNotifications, func(w http.ResponseWriter, r *http.Request) {
		if requestField(r, "pageToken") == "p2" {
			writeJSON(w, map[string]any{"notificationsList": []map[string]any{{"notificationId": 1}}})
			return
		}
		writeJSON(w, map[string]any{
			"notificationsList": []map[string]any{{"notificationId": 3}, {"notificationId": 2}},
			"nextPageToken":     "p2",
		})
	})
	mock.SetResponse(markAllNotificationsSeen, testutil.NewJSONResponse(`{}`))
	ctx := context.Background()

	feed, err := q.Notifications(ctx, false)
	if err != nil {
		t.Fatalf("Notifications failed: %v", err)
	}
	if len(feed) != 3 || feed[0].NotificationID != 3 || feed[2].NotificationID != 1 {
		t.Errorf("feed = %+v", feed)
	}

	latest, err := q.MarkAllNotificationsSeen(ctx)
	if err != nil {
		t.Fatalf("MarkAllNotificationsSeen failed: %v", err)
	}
	if latest != 3 {
		t.Errorf("latest = %d, want 3", latest)
	}
	if got := decodeBody(t, mock.Requests(markAllNotificationsSeen)[0])["latestNotificationId"]; got != float64(3) {
		t.Errorf("latestNotificationId = %v", got)
	}
	if e, _ := q.Cache().Get(NotificationsKey(false)); !e.Invalidated {
		t.Error("feed not invalidated")
	}
}

func TestReferencesReceived_Filter(t *testing.T) {
	q, mock := newTestQueries(t)
	mock.SetResponse(listReferences, testutil.NewJSONResponse(`{"referencesList":[{"referenceId":1}]}`))
	ctx := context.Background()

	if _, err := q.ReferencesReceived(ctx, 4, ReferencesHosted); err != nil {
		t.Fatal(err)
	}
	body := decodeBody(t, mock.Requests(listReferences)[0])
	if body["toUserId"] != float64(4) || !reflect.DeepEqual(body["referenceTypeFilterList"], []any{"REFERENCE_TYPE_HOSTED"}) {
		t.Errorf("request = %v", body)
	}

	if _, err := q.ReferencesReceived(ctx, 4, ReferenceFilter("bogus")); err == nil {
		t.Error("Expected error for unknown filter")
	}
}

func TestInvalidateReferences(t *testing.T) {
	q, _ := newTestQueries(t)
	keys := []cache.Key{
		ReferencesGivenKey(4),
		ReferencesReceivedKey(4, ReferencesAll),
		ReferencesReceivedKey(4, ReferencesFriend),
		AvailableWriteReferencesKey(4),
	}
	for _, k := range keys {
		q.Cache().Set(k, 1)
	}
	q.Cache().Set(ReferencesGivenKey(5), 1)

	q.InvalidateReferences(4)

	for _, k := range keys {
		if e, _ := q.Cache().Get(k); !e.Invalidated {
			t.Errorf("%s not invalidated", k)
		}
	}
	if e, _ := q.Cache().Get(ReferencesGivenKey(5)); e.Invalidated {
		t.Error("other user's references invalidated")
	}
}
