package types

// IdempotencyBackend selects the store backing the idempotency gate
type IdempotencyBackend string

const (
	IdempotencyBackendRedis    IdempotencyBackend = "redis"
	IdempotencyBackendDynamoDB IdempotencyBackend = "dynamodb"
	IdempotencyBackendMemory   IdempotencyBackend = "memory"
)
