// Package redis provides the Redis client wrapper behind the shared
// rate-limit store, built on go-redis with structured logging and
// connection pooling.
//
// # Quick Start
//
//	client, err := redis.New(redis.Config{Enabled: true, Addr: "localhost:6379"}, log)
//	if err != nil { ... }
//	defer client.Close()
//
//	store := ratelimit.NewRedisStore(client.Unwrap(), "guardrail:rl")
package redis
