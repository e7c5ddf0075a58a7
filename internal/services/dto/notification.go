package dto

import "time"

// ---------------- Requests ----------------

type DispatchNotificationRequest struct {
	Message     string                 `json:"message" validate:"required,max=2000"`
	Target      string                 `json:"target" validate:"required,oneof=all users companies custom"`
	TargetEmail string                 `json:"target_email" validate:"required_if=Target custom,omitempty,email"`
	Metadata    map[string]interface{} `json:"metadata"`
}

// RecipientRef identifies the calling recipient for delivery queries.
// Email is optional; when present the query also matches deliveries
// fanned out under a custom target keyed by this email.
type RecipientRef struct {
	ID    string `json:"recipient_id"`
	Kind  string `json:"recipient_kind"`
	Email string `json:"recipient_email,omitempty"`
}

// ---------------- Responses ----------------

type DispatchResponse struct {
	NotificationID string `json:"notification_id"`
	DeliveredCount int    `json:"delivered_count"`
}

type DeliveryResponse struct {
	ID             string                 `json:"id"`
	NotificationID string                 `json:"notification_id"`
	Message        string                 `json:"message"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
	IsRead         bool                   `json:"is_read"`
	ReadAt         *time.Time             `json:"read_at,omitempty"`
	CreatedAt      time.Time              `json:"created_at"`
}

type DeliveryListResponse struct {
	Deliveries  []*DeliveryResponse `json:"deliveries"`
	Total       int                 `json:"total"`
	UnreadCount int64               `json:"unread_count"`
}

type NotificationSummary struct {
	ID             string                 `json:"id"`
	Message        string                 `json:"message"`
	Target         string                 `json:"target"`
	TargetEmail    string                 `json:"target_email,omitempty"`
	CreatedBy      string                 `json:"created_by,omitempty"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt      time.Time              `json:"created_at"`
	DeliveredCount int64                  `json:"delivered_count"`
	ReadCount      int64                  `json:"read_count"`
}

type NotificationListResponse struct {
	Notifications []*NotificationSummary `json:"notifications"`
	Total         int64                  `json:"total"`
	Page          int                    `json:"page"`
	PageSize      int                    `json:"page_size"`
	TotalPages    int                    `json:"total_pages"`
}

// ---------------- Criteria ----------------

type NotificationCriteria struct {
	Target   string
	Page     int
	PageSize int
}
