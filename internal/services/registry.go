package services

// ServiceContainer groups the core services for wiring.
type ServiceContainer struct {
	FanoutService       FanoutService
	NotificationService NotificationService
}
