package handlers

import (
	"net/http"

	"bizdir_backend/internal/middleware"
	"bizdir_backend/internal/models"
	"bizdir_backend/internal/services"
	"bizdir_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	*BaseHandler
	fanoutService       services.FanoutService
	notificationService services.NotificationService
}

func NewNotificationHandler(
	base *BaseHandler,
	fanoutService services.FanoutService,
	notificationService services.NotificationService,
) *NotificationHandler {
	return &NotificationHandler{
		BaseHandler:         base,
		fanoutService:       fanoutService,
		notificationService: notificationService,
	}
}

func (h *NotificationHandler) RegisterRoutes(r *gin.RouterGroup) {
	// Recipient routes - any authenticated recipient
	notifications := r.Group("/notifications")
	notifications.Use(middleware.AuthMiddleware())
	{
		notifications.GET("", h.ListDeliveries)
		notifications.GET("/unread-count", h.GetUnreadCount)
		notifications.PUT("/:deliveryId/read", h.MarkRead)
		notifications.PUT("/read-all", h.MarkAllRead)
	}

	// Admin routes
	admin := r.Group("/admin/notifications")
	admin.Use(middleware.AuthMiddleware(), middleware.RoleMiddleware(models.UserRoleAdmin))
	{
		admin.POST("", h.CreateNotification)
		admin.GET("", h.ListNotifications)
		admin.GET("/:notificationId", h.GetNotification)
	}
}

// --- Admin handlers ---

// CreateNotification dispatches a broadcast and reports how many
// recipients actually received a delivery row.
func (h *NotificationHandler) CreateNotification(c *gin.Context) {
	var req dto.DispatchNotificationRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	result, err := h.fanoutService.Dispatch(h.GetActorID(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	page, pageSize := ParsePagination(c)

	criteria := dto.NotificationCriteria{
		Target:   c.Query("target"),
		Page:     page,
		PageSize: pageSize,
	}

	response, err := h.notificationService.ListNotifications(criteria)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *NotificationHandler) GetNotification(c *gin.Context) {
	notificationID := c.Param("notificationId")

	summary, err := h.notificationService.GetNotification(notificationID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// --- Recipient handlers ---

func (h *NotificationHandler) ListDeliveries(c *gin.Context) {
	ref, ok := h.GetRecipientRef(c)
	if !ok {
		return
	}

	response, err := h.notificationService.ListDeliveries(ref)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *NotificationHandler) GetUnreadCount(c *gin.Context) {
	ref, ok := h.GetRecipientRef(c)
	if !ok {
		return
	}

	count, err := h.notificationService.UnreadCount(ref)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"unread_count": count})
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	if _, ok := h.GetRecipientRef(c); !ok {
		return
	}
	deliveryID := c.Param("deliveryId")

	if err := h.notificationService.MarkRead(deliveryID); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Delivery marked as read"})
}

func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	ref, ok := h.GetRecipientRef(c)
	if !ok {
		return
	}

	marked, err := h.notificationService.MarkAllRead(ref)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "All deliveries marked as read", "marked_count": marked})
}
