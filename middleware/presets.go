package middleware

import "time"

// Preset rate-limit profiles for recognizable endpoint classes. They differ
// only in window, budget, and key strategy; callers may adjust any field
// before use.

// PerUserPreset limits authenticated traffic per user id.
func PerUserPreset() RateLimitConfig {
	return RateLimitConfig{
		Window:      15 * time.Minute,
		MaxRequests: 100,
		KeyFunc:     UserBasedKey,
	}
}

// PerIPPreset limits anonymous traffic per client address.
func PerIPPreset() RateLimitConfig {
	return RateLimitConfig{
		Window:      15 * time.Minute,
		MaxRequests: 300,
		KeyFunc:     IPBasedKey,
	}
}

// StrictPreset is for sensitive endpoints that should see little traffic.
func StrictPreset() RateLimitConfig {
	return RateLimitConfig{
		Window:      15 * time.Minute,
		MaxRequests: 10,
		KeyFunc:     IPBasedKey,
	}
}

// AIEndpointPreset keeps expensive model-backed endpoints on a short leash.
func AIEndpointPreset() RateLimitConfig {
	return RateLimitConfig{
		Window:      time.Minute,
		MaxRequests: 20,
		KeyFunc:     UserBasedKey,
	}
}

// AuthPreset guards login endpoints: only failed attempts consume budget, so
// legitimate users are not locked out by their own successful logins.
func AuthPreset() RateLimitConfig {
	return RateLimitConfig{
		Window:         15 * time.Minute,
		MaxRequests:    5,
		KeyFunc:        IPBasedKey,
		SkipSuccessful: true,
	}
}
