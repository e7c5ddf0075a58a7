package services

import (
	"encoding/json"

	"bizdir_backend/internal/logger"
	"bizdir_backend/internal/models"
	"bizdir_backend/internal/repositories"
	"bizdir_backend/internal/services/dto"
	"bizdir_backend/pkg/apperrors"
)

// NotificationService is the query/read-state API: a recipient's
// delivery list, their unread count, and forward-only read transitions.
type NotificationService interface {
	ListDeliveries(ref dto.RecipientRef) (*dto.DeliveryListResponse, error)
	UnreadCount(ref dto.RecipientRef) (int64, error)
	MarkRead(deliveryID string) error
	MarkAllRead(ref dto.RecipientRef) (int64, error)

	// Admin operations
	ListNotifications(criteria dto.NotificationCriteria) (*dto.NotificationListResponse, error)
	GetNotification(notificationID string) (*dto.NotificationSummary, error)
}

type notificationService struct {
	notificationRepo repositories.NotificationRepository
}

func NewNotificationService(notificationRepo repositories.NotificationRepository) NotificationService {
	return &notificationService{
		notificationRepo: notificationRepo,
	}
}

func toMatch(ref dto.RecipientRef) (repositories.RecipientMatch, error) {
	kind := models.RecipientKind(ref.Kind)
	if !kind.Valid() {
		return repositories.RecipientMatch{}, apperrors.ErrInvalidRecipientKind
	}
	return repositories.RecipientMatch{
		ID:    ref.ID,
		Kind:  kind,
		Email: ref.Email,
	}, nil
}

func (s *notificationService) ListDeliveries(ref dto.RecipientRef) (*dto.DeliveryListResponse, error) {
	match, err := toMatch(ref)
	if err != nil {
		return nil, err
	}

	deliveries, err := s.notificationRepo.FindRecipientDeliveries(match)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	var unread int64
	responses := make([]*dto.DeliveryResponse, 0, len(deliveries))
	for i := range deliveries {
		if !deliveries[i].IsRead {
			unread++
		}
		responses = append(responses, buildDeliveryResponse(&deliveries[i]))
	}

	return &dto.DeliveryListResponse{
		Deliveries:  responses,
		Total:       len(responses),
		UnreadCount: unread,
	}, nil
}

func (s *notificationService) UnreadCount(ref dto.RecipientRef) (int64, error) {
	match, err := toMatch(ref)
	if err != nil {
		return 0, err
	}

	count, err := s.notificationRepo.GetUnreadCount(match)
	if err != nil {
		return 0, apperrors.InternalError(err)
	}
	return count, nil
}

// MarkRead is idempotent: an already-read delivery is a no-op, and an
// unknown delivery id is treated as a no-op success as well, so
// multi-tab races never surface errors to the caller.
func (s *notificationService) MarkRead(deliveryID string) error {
	err := s.notificationRepo.MarkDeliveryRead(deliveryID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrDeliveryNotFound) {
			logger.Warn("mark-read for unknown delivery", "delivery_id", deliveryID)
			return nil
		}
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *notificationService) MarkAllRead(ref dto.RecipientRef) (int64, error) {
	match, err := toMatch(ref)
	if err != nil {
		return 0, err
	}

	marked, err := s.notificationRepo.MarkAllRead(match)
	if err != nil {
		return 0, apperrors.InternalError(err)
	}
	return marked, nil
}

// ---------------- Admin operations ----------------

func (s *notificationService) ListNotifications(criteria dto.NotificationCriteria) (*dto.NotificationListResponse, error) {
	repoCriteria := repositories.NotificationCriteria{
		Target:   models.NotificationTarget(criteria.Target),
		Page:     criteria.Page,
		PageSize: criteria.PageSize,
	}

	notifications, total, err := s.notificationRepo.FindAllNotifications(repoCriteria)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	ids := make([]string, 0, len(notifications))
	for i := range notifications {
		ids = append(ids, notifications[i].ID)
	}

	stats, err := s.notificationRepo.GetDeliveryStats(ids)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	summaries := make([]*dto.NotificationSummary, 0, len(notifications))
	for i := range notifications {
		summaries = append(summaries, buildNotificationSummary(&notifications[i], stats[notifications[i].ID]))
	}

	return &dto.NotificationListResponse{
		Notifications: summaries,
		Total:         total,
		Page:          criteria.Page,
		PageSize:      criteria.PageSize,
		TotalPages:    calculateTotalPages(total, criteria.PageSize),
	}, nil
}

// GetNotification returns one broadcast with its delivery counters,
// for the admin detail screen.
func (s *notificationService) GetNotification(notificationID string) (*dto.NotificationSummary, error) {
	notification, err := s.notificationRepo.FindNotificationByID(notificationID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrNotificationNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}

	stats, err := s.notificationRepo.GetDeliveryStats([]string{notification.ID})
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	return buildNotificationSummary(notification, stats[notification.ID]), nil
}

// ---------------- Helpers ----------------

func buildDeliveryResponse(delivery *models.Delivery) *dto.DeliveryResponse {
	response := &dto.DeliveryResponse{
		ID:             delivery.ID,
		NotificationID: delivery.NotificationID,
		Message:        delivery.Notification.Message,
		IsRead:         delivery.IsRead,
		ReadAt:         delivery.ReadAt,
		CreatedAt:      delivery.Notification.CreatedAt,
	}

	if len(delivery.Notification.Metadata) > 0 {
		var metadata map[string]interface{}
		if err := json.Unmarshal(delivery.Notification.Metadata, &metadata); err == nil {
			response.Metadata = metadata
		}
	}

	return response
}

func buildNotificationSummary(notification *models.Notification, stats repositories.DeliveryStats) *dto.NotificationSummary {
	summary := &dto.NotificationSummary{
		ID:             notification.ID,
		Message:        notification.Message,
		Target:         string(notification.Target),
		TargetEmail:    notification.TargetEmail,
		CreatedBy:      notification.CreatedBy,
		CreatedAt:      notification.CreatedAt,
		DeliveredCount: stats.Delivered,
		ReadCount:      stats.Read,
	}

	if len(notification.Metadata) > 0 {
		var metadata map[string]interface{}
		if err := json.Unmarshal(notification.Metadata, &metadata); err == nil {
			summary.Metadata = metadata
		}
	}

	return summary
}

func calculateTotalPages(total int64, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	pages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		pages++
	}
	return pages
}
