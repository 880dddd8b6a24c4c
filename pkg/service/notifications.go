package service

import (
	"context"
	"errors"
	"time"

	"github.com/thevivek0408/couchsurfing-sub002/pkg/pagination"
	"github.com/thevivek0408/couchsurfing-sub002/pkg/rpc"
)

const (
	methodGetNotificationSettings  = "org.couchers.notifications.Notifications/GetNotificationSettings"
	methodSetNotificationSettings  = "org.couchers.notifications.Notifications/SetNotificationSettings"
	methodGetVapidPublicKey        = "org.couchers.notifications.Notifications/GetVapidPublicKey"
	methodRegisterPushSubscription = "org.couchers.notifications.Notifications/RegisterPushNotificationSubscription"
	methodSendTestPushNotification = "org.couchers.notifications.Notifications/SendTestPushNotification"
	methodListNotifications        = "org.couchers.notifications.Notifications/ListNotifications"
	methodMarkAllNotificationsSeen = "org.couchers.notifications.Notifications/MarkAllNotificationsSeen"
	methodMarkNotificationSeen     = "org.couchers.notifications.Notifications/MarkNotificationSeen"
)

// ErrNotificationIDRequired is returned by MarkNotificationSeen for a zero id.
var ErrNotificationIDRequired = errors.New("notification ID is required to mark notification as seen")

// DeliveryMethod is how a notification reaches the user.
type DeliveryMethod string

const (
	DeliveryPush  DeliveryMethod = "push"
	DeliveryEmail DeliveryMethod = "email"
)

// NotificationPreference toggles one topic/action pair for one delivery method.
type NotificationPreference struct {
	Topic          string         `json:"topic"`
	Action         string         `json:"action"`
	DeliveryMethod DeliveryMethod `json:"deliveryMethod"`
	Enabled        bool           `json:"enabled"`
}

// NotificationGroup is a settings group as rendered on the settings page.
type NotificationGroup struct {
	Heading string              `json:"heading"`
	Topics  []NotificationTopic `json:"topicsList"`
}

// NotificationTopic lists the configurable items of one topic.
type NotificationTopic struct {
	Topic string                   `json:"topic"`
	Items []NotificationPreference `json:"itemsList"`
}

// NotificationSettings is the caller's notification configuration.
type NotificationSettings struct {
	DoNotEmailEnabled bool                `json:"doNotEmailEnabled"`
	Groups            []NotificationGroup `json:"groupsList"`
}

// Notification is one feed item.
type Notification struct {
	NotificationID int64     `json:"notificationId"`
	Created        time.Time `json:"created"`
	Topic          string    `json:"topic"`
	Action         string    `json:"action"`
	Key            string    `json:"key,omitempty"`
	Title          string    `json:"title"`
	Body           string    `json:"body"`
	Icon           string    `json:"icon,omitempty"`
	URL            string    `json:"url,omitempty"`
	IsSeen         bool      `json:"isSeen"`
}

// ListNotificationsRes is one page of the feed.
type ListNotificationsRes struct {
	Notifications []Notification `json:"notificationsList"`
	NextPageToken string         `json:"nextPageToken"`
}

// Page adapts the response for pagination.FetchAll.
func (r ListNotificationsRes) Page() pagination.Page[Notification, string] {
	return pagination.Page[Notification, string]{Items: r.Notifications, Next: r.NextPageToken}
}

// NotificationsService manages the notification feed and its settings.
type NotificationsService struct {
	inv rpc.Invoker
}

// GetNotificationSettings returns the caller's settings.
func (s *NotificationsService) GetNotificationSettings(ctx context.Context) (NotificationSettings, error) {
	var res NotificationSettings
	if err := s.inv.Invoke(ctx, methodGetNotificationSettings, nil, &res); err != nil {
		return NotificationSettings{}, err
	}
	return res, nil
}

// SetNotificationSettings toggles the global do-not-email switch.
func (s *NotificationsService) SetNotificationSettings(ctx context.Context, enableDoNotEmail bool) (NotificationSettings, error) {
	req := struct {
		EnableDoNotEmail bool `json:"enableDoNotEmail"`
	}{EnableDoNotEmail: enableDoNotEmail}

	var res NotificationSettings
	if err := s.inv.Invoke(ctx, methodSetNotificationSettings, &req, &res); err != nil {
		return NotificationSettings{}, err
	}
	return res, nil
}

// SetNotificationPreference changes a single preference.
func (s *NotificationsService) SetNotificationPreference(ctx context.Context, pref NotificationPreference) (NotificationSettings, error) {
	req := struct {
		Preferences []NotificationPreference `json:"preferencesList"`
	}{Preferences: []NotificationPreference{pref}}

	var res NotificationSettings
	if err := s.inv.Invoke(ctx, methodSetNotificationSettings, &req, &res); err != nil {
		return NotificationSettings{}, err
	}
	return res, nil
}

// GetVapidPublicKey returns the key push subscriptions are created with.
func (s *NotificationsService) GetVapidPublicKey(ctx context.Context) (string, error) {
	var res struct {
		VapidPublicKey string `json:"vapidPublicKey"`
	}
	if err := s.inv.Invoke(ctx, methodGetVapidPublicKey, nil, &res); err != nil {
		return "", err
	}
	return res.VapidPublicKey, nil
}

// RegisterPushSubscription registers a push subscription, given as its
// full JSON encoding.
func (s *NotificationsService) RegisterPushSubscription(ctx context.Context, subscriptionJSON, userAgent string) error {
	req := struct {
		FullSubscriptionJSON string `json:"fullSubscriptionJson"`
		UserAgent            string `json:"userAgent"`
	}{FullSubscriptionJSON: subscriptionJSON, UserAgent: userAgent}
	return s.inv.Invoke(ctx, methodRegisterPushSubscription, &req, nil)
}

// SendTestPushNotification asks the backend to push a test notification.
func (s *NotificationsService) SendTestPushNotification(ctx context.Context) error {
	return s.inv.Invoke(ctx, methodSendTestPushNotification, nil, nil)
}

// ListNotifications returns one page of the feed.
func (s *NotificationsService) ListNotifications(ctx context.Context, onlyUnread bool, pageToken string) (ListNotificationsRes, error) {
	req := struct {
		OnlyUnread bool   `json:"onlyUnread,omitempty"`
		PageToken  string `json:"pageToken,omitempty"`
	}{OnlyUnread: onlyUnread, PageToken: pageToken}

	var res ListNotificationsRes
	if err := s.inv.Invoke(ctx, methodListNotifications, &req, &res); err != nil {
		return ListNotificationsRes{}, err
	}
	return res, nil
}

// MarkAllNotificationsSeen marks every notification up to latestID as seen.
func (s *NotificationsService) MarkAllNotificationsSeen(ctx context.Context, latestID int64) error {
	req := struct {
		LatestNotificationID int64 `json:"latestNotificationId"`
	}{LatestNotificationID: latestID}
	return s.inv.Invoke(ctx, methodMarkAllNotificationsSeen, &req, nil)
}

// MarkNotificationSeen sets or clears the seen flag of one notification.
func (s *NotificationsService) MarkNotificationSeen(ctx context.Context, notificationID int64, seen bool) error {
	if notificationID == 0 {
		return ErrNotificationIDRequired
	}
	req := struct {
		NotificationID int64 `json:"notificationId"`
		SetSeen        bool  `json:"setSeen,omitempty"`
	}{NotificationID: notificationID, SetSeen: seen}
	return s.inv.Invoke(ctx, methodMarkNotificationSeen, &req, nil)
}
