package queries

import (
	"context"

	"github.com/thevivek0408/couchsurfing-sub002/pkg/cache"
	"github.com/thevivek0408/couchsurfing-sub002/pkg/pagination"
	"github.com/thevivek0408/couchsurfing-sub002/pkg/service"
)

// Notifications returns the whole notification feed, newest first.
func (q *Queries) Notifications(ctx context.Context, onlyUnread bool) ([]service.Notification, error) {
	return cache.Fetch(ctx, q.qc, NotificationsKey(onlyUnread), func(ctx context.Context) ([]service.Notification, error) {
		return pagination.FetchAll(ctx, func(ctx context.Context, token string) (pagination.Page[service.Notification, string], error) {
			res, err := q.svc.Notifications.ListNotifications(ctx, onlyUnread, token)
			if err != nil {
				return pagination.Page[service.Notification, string]{}, err
			}
			return res.Page(), nil
		})
	})
}

// MarkAllNotificationsSeen marks the feed seen up to its newest
// notification and returns that notification's id, or 0 when the feed is
// empty.
func (q *Queries) MarkAllNotificationsSeen(ctx context.Context) (int64, error) {
	return cache.Mutate(ctx, q.qc, struct{}{}, func(ctx context.Context, _ struct{}) (int64, error) {
		first, err := q.svc.Notifications.ListNotifications(ctx, false, "")
		if err != nil {
			return 0, err
		}
		if len(first.Notifications) == 0 {
			return 0, nil
		}
		latest := first.Notifications[0].NotificationID
		if err := q.svc.Notifications.MarkAllNotificationsSeen(ctx, latest); err != nil {
			return 0, err
		}
		return latest, nil
	}, cache.MutationOptions[struct{}, int64]{
		Invalidate: []cache.Key{NotificationsBaseKey},
	})
}

// MarkNotificationSeen sets or clears the seen flag of one notification.
func (q *Queries) MarkNotificationSeen(ctx context.Context, notificationID int64, seen bool) error {
	_, err := cache.Mutate(ctx, q.qc, notificationID, func(ctx context.Context, id int64) (struct{}, error) {
		return struct{}{}, q.svc.Notifications.MarkNotificationSeen(ctx, id, seen)
	}, cache.MutationOptions[int64, struct{}]{
		Invalidate: []cache.Key{NotificationsBaseKey},
	})
	return err
}

// NotificationSettings returns the caller's notification settings.
func (q *Queries) NotificationSettings(ctx context.Context) (service.NotificationSettings, error) {
	return cache.Fetch(ctx, q.qc, NotificationSettingsKey, q.svc.Notifications.GetNotificationSettings)
}

// SetNotificationPreference changes one preference and caches the settings
// the backend returns.
func (q *Queries) SetNotificationPreference(ctx context.Context, pref service.NotificationPreference) (service.NotificationSettings, error) {
	return cache.Mutate(ctx, q.qc, pref, q.svc.Notifications.SetNotificationPreference, cache.MutationOptions[service.NotificationPreference, service.NotificationSettings]{
		OnSuccess: func(ctx context.Context, _ service.NotificationPreference, settings service.NotificationSettings) {
			q.qc.Set(NotificationSettingsKey, settings)
		},
	})
}
