package service

import (
	"time"
)

// FriendshipStatus is the relation between the caller and another user.
type FriendshipStatus string

const (
	FriendNotFriends FriendshipStatus = "NOT_FRIENDS"
	FriendFriends    FriendshipStatus = "FRIENDS"
	FriendPending    FriendshipStatus = "PENDING"
	FriendNA         FriendshipStatus = "NA"
)

// HostingStatus is whether a user currently hosts.
type HostingStatus string

const (
	HostingStatusUnknown  HostingStatus = "HOSTING_STATUS_UNKNOWN"
	HostingStatusCanHost  HostingStatus = "HOSTING_STATUS_CAN_HOST"
	HostingStatusMaybe    HostingStatus = "HOSTING_STATUS_MAYBE"
	HostingStatusCantHost HostingStatus = "HOSTING_STATUS_CANT_HOST"
)

// User is a full profile.
type User struct {
	UserID        int64            `json:"userId"`
	Username      string           `json:"username"`
	Name          string           `json:"name"`
	City          string           `json:"city"`
	Hometown      string           `json:"hometown,omitempty"`
	AboutMe       string           `json:"aboutMe,omitempty"`
	AvatarURL     string           `json:"avatarUrl,omitempty"`
	Verification  float64          `json:"verification"`
	NumReferences int              `json:"numReferences"`
	Friends       FriendshipStatus `json:"friends"`
	HostingStatus HostingStatus    `json:"hostingStatus,omitempty"`
	LastActive    *time.Time       `json:"lastActive,omitempty"`
}

// LiteUser is the compact profile used in lists.
type LiteUser struct {
	UserID          int64  `json:"userId"`
	Username        string `json:"username"`
	Name            string `json:"name"`
	City            string `json:"city"`
	AvatarURL       string `json:"avatarUrl,omitempty"`
	AvatarThumbnail string `json:"avatarThumbnailUrl,omitempty"`
	IsGhost         bool   `json:"isGhost,omitempty"`
}

// Message is a single chat or host request message.
type Message struct {
	MessageID    int64     `json:"messageId"`
	AuthorUserID int64     `json:"authorUserId"`
	Text         string    `json:"text,omitempty"`
	Time         time.Time `json:"time"`
}
