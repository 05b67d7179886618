package services

// ServiceContainer bundles every application service for wiring into the
// handlers.
type ServiceContainer struct {
	AuthService         AuthService
	UserService         UserService
	TenderService       TenderService
	BidService          BidService
	AttachmentService   AttachmentService
	NotificationService NotificationService
}
