package handlers

// AppHandlers groups the HTTP handlers for route registration.
type AppHandlers struct {
	NotificationHandler *NotificationHandler
}
