package repositories

import (
	"errors"
	"time"

	"bizdir_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrDeliveryNotFound     = errors.New("delivery not found")
)

// RecipientMatch identifies a recipient for delivery queries. A row
// matches on (ID, Kind) or, when Email is set, on the denormalized
// recipient email. The email path exists because a custom dispatch may
// have been keyed by email before the caller knew the recipient's id.
type RecipientMatch struct {
	ID    string
	Kind  models.RecipientKind
	Email string
}

// Admin listing criteria
type NotificationCriteria struct {
	Target   models.NotificationTarget
	Page     int
	PageSize int
}

// DeliveryStats aggregates per-notification delivery counters for the
// admin listing.
type DeliveryStats struct {
	NotificationID string
	Delivered      int64
	Read           int64
}

type NotificationRepository interface {
	// Notification operations
	CreateNotification(notification *models.Notification) error
	FindNotificationByID(id string) (*models.Notification, error)
	FindAllNotifications(criteria NotificationCriteria) ([]models.Notification, int64, error)
	GetDeliveryStats(notificationIDs []string) (map[string]DeliveryStats, error)

	// Delivery operations
	CreateDelivery(delivery *models.Delivery) (created bool, err error)
	FindRecipientDeliveries(match RecipientMatch) ([]models.Delivery, error)
	GetUnreadCount(match RecipientMatch) (int64, error)
	MarkDeliveryRead(deliveryID string) error
	MarkAllRead(match RecipientMatch) (int64, error)
}

type NotificationRepositoryImpl struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &NotificationRepositoryImpl{db: db}
}

// Notification operations

func (r *NotificationRepositoryImpl) CreateNotification(notification *models.Notification) error {
	return r.db.Create(notification).Error
}

func (r *NotificationRepositoryImpl) FindNotificationByID(id string) (*models.Notification, error) {
	var notification models.Notification
	err := r.db.First(&notification, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotificationNotFound
		}
		return nil, err
	}
	return &notification, nil
}

func (r *NotificationRepositoryImpl) FindAllNotifications(criteria NotificationCriteria) ([]models.Notification, int64, error) {
	var notifications []models.Notification
	query := r.db.Model(&models.Notification{})

	if criteria.Target != "" {
		query = query.Where("target = ?", criteria.Target)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := criteria.PageSize
	offset := (criteria.Page - 1) * criteria.PageSize

	err := query.Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&notifications).Error

	return notifications, total, err
}

func (r *NotificationRepositoryImpl) GetDeliveryStats(notificationIDs []string) (map[string]DeliveryStats, error) {
	stats := make(map[string]DeliveryStats, len(notificationIDs))
	if len(notificationIDs) == 0 {
		return stats, nil
	}

	var rows []struct {
		NotificationID string
		Delivered      int64
		Read           int64
	}

	err := r.db.Model(&models.Delivery{}).
		Select("notification_id, COUNT(*) as delivered, SUM(CASE WHEN is_read THEN 1 ELSE 0 END) as read").
		Where("notification_id IN ?", notificationIDs).
		Group("notification_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		stats[row.NotificationID] = DeliveryStats{
			NotificationID: row.NotificationID,
			Delivered:      row.Delivered,
			Read:           row.Read,
		}
	}

	return stats, nil
}

// Delivery operations

// CreateDelivery inserts one delivery row. Idempotent per recipient:
// an existing (notification_id, recipient_id, recipient_kind) row makes
// this a no-op reporting created=false. The composite unique index
// backs the same invariant against concurrent re-dispatch.
func (r *NotificationRepositoryImpl) CreateDelivery(delivery *models.Delivery) (bool, error) {
	var count int64
	err := r.db.Model(&models.Delivery{}).
		Where("notification_id = ? AND recipient_id = ? AND recipient_kind = ?",
			delivery.NotificationID, delivery.RecipientID, delivery.RecipientKind).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	if err := r.db.Create(delivery).Error; err != nil {
		// Lost the race against a concurrent re-dispatch; the row exists.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// recipientScope narrows a delivery query to one recipient. Rows are
// selected by primary key, so a delivery matched by both the id pair
// and the email never appears twice.
func (r *NotificationRepositoryImpl) recipientScope(match RecipientMatch) *gorm.DB {
	query := r.db.Model(&models.Delivery{})
	if match.Email != "" {
		return query.Where(
			"(recipient_id = ? AND recipient_kind = ?) OR recipient_email = ?",
			match.ID, match.Kind, match.Email,
		)
	}
	return query.Where("recipient_id = ? AND recipient_kind = ?", match.ID, match.Kind)
}

func (r *NotificationRepositoryImpl) FindRecipientDeliveries(match RecipientMatch) ([]models.Delivery, error) {
	var deliveries []models.Delivery
	err := r.recipientScope(match).
		Joins("Notification").
		Order("\"Notification\".created_at DESC").
		Find(&deliveries).Error
	return deliveries, err
}

func (r *NotificationRepositoryImpl) GetUnreadCount(match RecipientMatch) (int64, error) {
	var count int64
	err := r.recipientScope(match).
		Where("is_read = ?", false).
		Count(&count).Error
	return count, err
}

// MarkDeliveryRead sets is_read/read_at on the first call only; a
// delivery already read keeps its original read_at.
func (r *NotificationRepositoryImpl) MarkDeliveryRead(deliveryID string) error {
	result := r.db.Model(&models.Delivery{}).
		Where("id = ? AND is_read = ?", deliveryID, false).
		Updates(map[string]interface{}{
			"is_read": true,
			"read_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	// Nothing updated: either already read (fine) or missing.
	var count int64
	if err := r.db.Model(&models.Delivery{}).Where("id = ?", deliveryID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrDeliveryNotFound
	}
	return nil
}

// MarkAllRead flips every currently-unread delivery of the recipient
// in one UPDATE, so a delivery dispatched concurrently is never
// silently caught by it.
func (r *NotificationRepositoryImpl) MarkAllRead(match RecipientMatch) (int64, error) {
	result := r.recipientScope(match).
		Where("is_read = ?", false).
		Updates(map[string]interface{}{
			"is_read": true,
			"read_at": time.Now(),
		})
	return result.RowsAffected, result.Error
}
