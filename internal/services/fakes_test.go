package services

import (
	"sort"
	"time"

	"bizdir_backend/internal/directory"
	"bizdir_backend/internal/models"
	"bizdir_backend/internal/repositories"

	"github.com/google/uuid"
)

// fakeNotificationRepo is an in-memory NotificationRepository for unit
// tests. It mirrors the SQL semantics of the real repository: one
// delivery per (notification, recipient id, recipient kind), recipient
// matching by id pair or email, forward-only read transitions.
type fakeNotificationRepo struct {
	notifications []*models.Notification
	deliveries    []*models.Delivery
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{}
}

func (r *fakeNotificationRepo) CreateNotification(notification *models.Notification) error {
	notification.ID = uuid.NewString()
	notification.CreatedAt = time.Now()
	r.notifications = append(r.notifications, notification)
	return nil
}

func (r *fakeNotificationRepo) FindNotificationByID(id string) (*models.Notification, error) {
	for _, n := range r.notifications {
		if n.ID == id {
			return n, nil
		}
	}
	return nil, repositories.ErrNotificationNotFound
}

func (r *fakeNotificationRepo) FindAllNotifications(criteria repositories.NotificationCriteria) ([]models.Notification, int64, error) {
	var matched []models.Notification
	for _, n := range r.notifications {
		if criteria.Target != "" && n.Target != criteria.Target {
			continue
		}
		matched = append(matched, *n)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	start := (criteria.Page - 1) * criteria.PageSize
	if start > len(matched) {
		start = len(matched)
	}
	end := start + criteria.PageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (r *fakeNotificationRepo) GetDeliveryStats(notificationIDs []string) (map[string]repositories.DeliveryStats, error) {
	stats := make(map[string]repositories.DeliveryStats, len(notificationIDs))
	for _, id := range notificationIDs {
		entry := repositories.DeliveryStats{NotificationID: id}
		for _, d := range r.deliveries {
			if d.NotificationID != id {
				continue
			}
			entry.Delivered++
			if d.IsRead {
				entry.Read++
			}
		}
		stats[id] = entry
	}
	return stats, nil
}

func (r *fakeNotificationRepo) CreateDelivery(delivery *models.Delivery) (bool, error) {
	for _, existing := range r.deliveries {
		if existing.NotificationID == delivery.NotificationID &&
			existing.RecipientID == delivery.RecipientID &&
			existing.RecipientKind == delivery.RecipientKind {
			return false, nil
		}
	}

	delivery.ID = uuid.NewString()
	delivery.CreatedAt = time.Now()
	r.deliveries = append(r.deliveries, delivery)
	return true, nil
}

func (r *fakeNotificationRepo) FindDeliveryByID(id string) (*models.Delivery, error) {
	for _, d := range r.deliveries {
		if d.ID == id {
			return d, nil
		}
	}
	return nil, repositories.ErrDeliveryNotFound
}

func (r *fakeNotificationRepo) matches(d *models.Delivery, match repositories.RecipientMatch) bool {
	if d.RecipientID == match.ID && d.RecipientKind == match.Kind {
		return true
	}
	return match.Email != "" && d.RecipientEmail == match.Email
}

func (r *fakeNotificationRepo) FindRecipientDeliveries(match repositories.RecipientMatch) ([]models.Delivery, error) {
	var result []models.Delivery
	for _, d := range r.deliveries {
		if !r.matches(d, match) {
			continue
		}
		row := *d
		if n, err := r.FindNotificationByID(d.NotificationID); err == nil {
			row.Notification = *n
		}
		result = append(result, row)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Notification.CreatedAt.After(result[j].Notification.CreatedAt)
	})
	return result, nil
}

func (r *fakeNotificationRepo) GetUnreadCount(match repositories.RecipientMatch) (int64, error) {
	var count int64
	for _, d := range r.deliveries {
		if r.matches(d, match) && !d.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *fakeNotificationRepo) MarkDeliveryRead(deliveryID string) error {
	for _, d := range r.deliveries {
		if d.ID != deliveryID {
			continue
		}
		if !d.IsRead {
			now := time.Now()
			d.IsRead = true
			d.ReadAt = &now
		}
		return nil
	}
	return repositories.ErrDeliveryNotFound
}

func (r *fakeNotificationRepo) MarkAllRead(match repositories.RecipientMatch) (int64, error) {
	var marked int64
	now := time.Now()
	for _, d := range r.deliveries {
		if r.matches(d, match) && !d.IsRead {
			d.IsRead = true
			d.ReadAt = &now
			marked++
		}
	}
	return marked, nil
}

// fakeDirectory is an in-memory Directory. A non-nil err makes every
// read fail, simulating an unreachable store.
type fakeDirectory struct {
	kind       models.RecipientKind
	recipients []directory.Recipient
	err        error
}

func (d *fakeDirectory) Kind() models.RecipientKind { return d.kind }

func (d *fakeDirectory) ListAll() ([]directory.Recipient, error) {
	if d.err != nil {
		return nil, d.err
	}
	return append([]directory.Recipient(nil), d.recipients...), nil
}

func (d *fakeDirectory) FindByEmail(email string) ([]directory.Recipient, error) {
	if d.err != nil {
		return nil, d.err
	}
	var found []directory.Recipient
	for _, r := range d.recipients {
		if r.Email == email {
			found = append(found, r)
		}
	}
	return found, nil
}
