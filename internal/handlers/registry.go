package handlers

// AppHandlers bundles every HTTP handler for route registration.
type AppHandlers struct {
	Auth         *AuthHandler
	User         *UserHandler
	Tender       *TenderHandler
	Bid          *BidHandler
	Notification *NotificationHandler
}
