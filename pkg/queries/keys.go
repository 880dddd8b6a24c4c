package queries

import (
	"github.com/thevivek0408/couchsurfing-sub002/pkg/cache"
)

// Query key families. Keys built from the same family share their first
// part, so the family key alone works as an invalidation prefix.
var (
	UserBaseKey                     = cache.Key{"user"}
	LiteUserBaseKey                 = cache.Key{"liteUser"}
	LiteUsersBaseKey                = cache.Key{"liteUsers"}
	FriendIDsKey                    = cache.Key{"friendIds"}
	FriendRequestsBaseKey           = cache.Key{"friendRequests"}
	ReferencesGivenBaseKey          = cache.Key{"referencesGiven"}
	ReferencesReceivedBaseKey       = cache.Key{"referencesReceived"}
	AvailableWriteReferencesBaseKey = cache.Key{"availableWriteReferences"}
	GroupChatsListKey               = cache.Key{"groupChatsList"}
	HostRequestsBaseKey             = cache.Key{"hostRequests"}
	NotificationsBaseKey            = cache.Key{"notifications"}
	NotificationSettingsKey         = cache.Key{"notificationSettings"}
	SearchBaseKey                   = cache.Key{"search"}
	PageBaseKey                     = cache.Key{"page"}
)

// FriendRequestType selects the direction of friend requests.
type FriendRequestType string

const (
	FriendRequestsSent     FriendRequestType = "sent"
	FriendRequestsReceived FriendRequestType = "received"
)

// ReferenceFilter selects received references by type; "all" disables the
// filter.
type ReferenceFilter string

const (
	ReferencesAll    ReferenceFilter = "all"
	ReferencesFriend ReferenceFilter = "friend"
	ReferencesSurfed ReferenceFilter = "surfed"
	ReferencesHosted ReferenceFilter = "hosted"
)

func UserKey(userID int64) cache.Key {
	return cache.Key{"user", userID}
}

func LiteUserKey(userID int64) cache.Key {
	return cache.Key{"liteUser", userID}
}

func LiteUsersKey(userIDs []int64) cache.Key {
	return cache.Key{"liteUsers", userIDs}
}

func FriendRequestKey(t FriendRequestType) cache.Key {
	return cache.Key{"friendRequests", map[string]any{"type": t}}
}

func ReferencesGivenKey(userID int64) cache.Key {
	return cache.Key{"referencesGiven", map[string]any{"userId": userID}}
}

func ReferencesReceivedKey(userID int64, filter ReferenceFilter) cache.Key {
	return cache.Key{"referencesReceived", map[string]any{"type": filter, "userId": userID}}
}

func AvailableWriteReferencesKey(userID int64) cache.Key {
	return cache.Key{"availableWriteReferences", map[string]any{"userId": userID}}
}

// HostRequestsListKey keys one filtered host request list. Use
// HostRequestsBaseKey to address all of them.
func HostRequestsListKey(onlyActive bool, role string) cache.Key {
	return cache.Key{"hostRequests", map[string]any{"onlyActive": onlyActive, "type": role}}
}

func NotificationsKey(onlyUnread bool) cache.Key {
	return cache.Key{"notifications", map[string]any{"onlyUnread": onlyUnread}}
}

func SearchKey(filters any, pageToken string) cache.Key {
	return cache.Key{"search", filters, pageToken}
}

func PageKey(pageID int64) cache.Key {
	return cache.Key{"page", pageID}
}
