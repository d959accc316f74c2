package config

import "time"

const (
	DefaultMongoURI           = "mongodb://localhost:27017"
	DefaultMongoDatabaseName  = "akoben"
	DefaultMongoConnTimeout   = 10 * time.Second
	DefaultTransactionTimeout = 10 * time.Second

	DefaultPort = "8080"

	DefaultRateLimitRequests = 10
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultPaginationLimit = 100

	DefaultPhoneRegion = "GH"

	DefaultPaystackBaseURL = "https://api.paystack.co"
	DefaultPaymentCurrency = "GHS"
	DefaultPaymentTimeout  = 5 * time.Second

	DefaultArkeselBaseURL = "https://sms.arkesel.com"
	DefaultOTPSenderID    = "Fie ne Fie"
	DefaultOTPCooldown    = 60 * time.Second

	DefaultSMTPPort = 587

	DefaultNotificationTopic    = "booking-notifications"
	DefaultNotificationDLQTopic = "booking-notifications-dlq"
	DefaultNotificationGroupID  = "notifier"
	DefaultNotificationTimeout  = 10 * time.Second
)
