package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "roombook"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRateLimitRequests = 60
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultJWTIssuer        = "directory-gateway"
	DefaultCalendarTimezone = "UTC"

	DefaultRedisDB = 0

	BookingSourceMongo     = "mongo"
	BookingSourceConnector = "connector"

	DefaultBookingSource    = BookingSourceMongo
	DefaultConnectorTable   = "Bookings"
	DefaultConnectorTimeout = 10 * time.Second

	DefaultSMTPPort = 587
	DefaultSMTPFrom = "no-reply@roombook.local"

	DefaultPaginationLimit = 100
)
