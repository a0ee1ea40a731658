package types

// PublishDestination determines where domain events are published
type PublishDestination string

const (
	PublishToKafka    PublishDestination = "kafka"
	PublishToDynamoDB PublishDestination = "dynamodb"
	PublishToMemory   PublishDestination = "memory"
	PublishToAll      PublishDestination = "all"
)
