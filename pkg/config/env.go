package config

const (
	EnvMongoURI           = "MONGO_URI"
	EnvMongoDatabaseName  = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout   = "MONGO_CONN_TIMEOUT"
	EnvTransactionTimeout = "TRANSACTION_TIMEOUT"

	EnvRedisURL = "REDIS_URL"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"
	EnvLogFile  = "LOG_FILE"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvDefaultPhoneRegion = "DEFAULT_PHONE_REGION"

	EnvPaystackSecretKey = "PAYSTACK_SECRET_KEY"
	EnvPaystackBaseURL   = "PAYSTACK_BASE_URL"
	EnvPaymentCurrency   = "PAYMENT_CURRENCY"
	EnvPaymentTimeout    = "PAYMENT_TIMEOUT"

	EnvArkeselAPIKey  = "ARKESEL_API_KEY"
	EnvArkeselBaseURL = "ARKESEL_BASE_URL"
	EnvOTPSenderID    = "OTP_SENDER_ID"
	EnvOTPCooldown    = "OTP_COOLDOWN"

	EnvSMTPHost     = "SMTP_HOST"
	EnvSMTPPort     = "SMTP_PORT"
	EnvSMTPUsername = "SMTP_USERNAME"
	EnvSMTPPassword = "SMTP_PASSWORD"
	EnvFromEmail    = "FROM_EMAIL"

	EnvNotificationTopic    = "NOTIFICATION_TOPIC"
	EnvNotificationDLQTopic = "NOTIFICATION_DLQ_TOPIC"
	EnvNotificationGroupID  = "NOTIFICATION_GROUP_ID"
	EnvNotificationTimeout  = "NOTIFICATION_TIMEOUT"
	EnvNotificationsEnabled = "NOTIFICATIONS_ENABLED"
)
