package service

import (
	"context"

	"github.com/thevivek0408/couchsurfing-sub002/pkg/pagination"
	"github.com/thevivek0408/couchsurfing-sub002/pkg/rpc"
)

const (
	methodListGroupChats        = "org.couchers.api.conversations.Conversations/ListGroupChats"
	methodMarkLastSeenGroupChat = "org.couchers.api.conversations.Conversations/MarkLastSeenGroupChat"
)

// GroupChat is a conversation summary.
type GroupChat struct {
	GroupChatID        int64    `json:"groupChatId"`
	Title              string   `json:"title"`
	MemberUserIDs      []int64  `json:"memberUserIdsList"`
	IsDM               bool     `json:"isDm"`
	LatestMessage      *Message `json:"latestMessage,omitempty"`
	LastSeenMessageID  int64    `json:"lastSeenMessageId"`
	UnseenMessageCount int      `json:"unseenMessageCount"`
}

// HasUnseen reports whether the latest message is newer than the last one
// the caller saw.
func (c GroupChat) HasUnseen() bool {
	return c.LatestMessage != nil && c.LastSeenMessageID < c.LatestMessage.MessageID
}

// ListGroupChatsRes is one page of conversations, newest first.
type ListGroupChatsRes struct {
	GroupChats    []GroupChat `json:"groupChatsList"`
	LastMessageID int64       `json:"lastMessageId"`
	NoMore        bool        `json:"noMore"`
}

// Page adapts the response for pagination.FetchAll. The cursor is the last
// message id unless the backend reported no more pages.
func (r ListGroupChatsRes) Page() pagination.Page[GroupChat, int64] {
	p := pagination.Page[GroupChat, int64]{Items: r.GroupChats}
	if !r.NoMore {
		p.Next = r.LastMessageID
	}
	return p
}

// ConversationsService manages group chats.
type ConversationsService struct {
	inv rpc.Invoker
}

// ListGroupChats returns the page of conversations older than lastMessageID;
// zero starts from the newest.
func (s *ConversationsService) ListGroupChats(ctx context.Context, lastMessageID int64) (ListGroupChatsRes, error) {
	req := struct {
		LastMessageID int64 `json:"lastMessageId,omitempty"`
	}{LastMessageID: lastMessageID}

	var res ListGroupChatsRes
	if err := s.inv.Invoke(ctx, methodListGroupChats, &req, &res); err != nil {
		return ListGroupChatsRes{}, err
	}
	return res, nil
}

// MarkLastSeenGroupChat records lastSeenMessageID as read in a chat.
func (s *ConversationsService) MarkLastSeenGroupChat(ctx context.Context, groupChatID, lastSeenMessageID int64) error {
	req := struct {
		GroupChatID       int64 `json:"groupChatId"`
		LastSeenMessageID int64 `json:"lastSeenMessageId"`
	}{GroupChatID: groupChatID, LastSeenMessageID: lastSeenMessageID}
	return s.inv.Invoke(ctx, methodMarkLastSeenGroupChat, &req, nil)
}
