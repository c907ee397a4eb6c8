package domain

import "errors"

var (
	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrBasketTooLarge is returned when a comparison request exceeds the product limit
	ErrBasketTooLarge = errors.New("basket exceeds maximum product count")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrInvalidTTL is returned when a cache entry is stored with a negative TTL
	ErrInvalidTTL = errors.New("cache TTL must not be negative")

	// ErrFlyerAPIFailure is returned when a flyer-search API request fails
	ErrFlyerAPIFailure = errors.New("flyer search API request failed")

	// ErrStoreUnavailable is returned when the promotion store cannot be queried
	ErrStoreUnavailable = errors.New("promotion store unavailable")
)
