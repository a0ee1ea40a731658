package types

type RunMode string

const (
	// ModeLocal runs the HTTP webhook endpoint, the kafka consumers and the temporal worker together
	ModeLocal RunMode = "local"
	// ModeAPI runs just the HTTP webhook endpoint
	ModeAPI RunMode = "api"
	// ModeConsumer runs just the kafka consumers
	ModeConsumer RunMode = "consumer"
	// ModeTemporalWorker runs just the temporal worker that executes fired triggers
	ModeTemporalWorker RunMode = "temporal_worker"
	// ModeAWSLambdaAPI runs the HTTP webhook endpoint in AWS Lambda
	ModeAWSLambdaAPI RunMode = "aws_lambda_api"
	// ModeAWSLambdaUsage consumes usage batches from SQS in AWS Lambda
	ModeAWSLambdaUsage RunMode = "aws_lambda_usage"
)

type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
)
