package messaging

type consumeOptions struct {
	// group is the consumer group: NSQ channel, NATS queue group, Kafka
	// group id or Pub/Sub subscription.
	group       string
	concurrency int
	maxInFlight int
	maxAttempts int
}

// ConsumeOption configures consumer behavior.
type ConsumeOption func(*consumeOptions)

func newConsumeOptions(opts ...ConsumeOption) consumeOptions {
	co := consumeOptions{concurrency: 1, maxInFlight: 10, maxAttempts: 5}
	for _, opt := range opts {
		if opt != nil {
			opt(&co)
		}
	}
	if co.concurrency < 1 {
		co.concurrency = 1
	}
	if co.maxInFlight < co.concurrency {
		co.maxInFlight = co.concurrency
	}
	if co.maxAttempts < 1 {
		co.maxAttempts = 1
	}
	return co
}

// WithGroup sets the consumer group. Consumers sharing a group split the
// stream; distinct groups each receive every message.
func WithGroup(group string) ConsumeOption {
	return func(o *consumeOptions) { o.group = group }
}

// WithConcurrency sets how many handler goroutines process messages in parallel.
func WithConcurrency(n int) ConsumeOption {
	return func(o *consumeOptions) { o.concurrency = n }
}

// WithMaxInFlight limits unacknowledged messages held by the consumer.
func WithMaxInFlight(n int) ConsumeOption {
	return func(o *consumeOptions) { o.maxInFlight = n }
}

// WithMaxAttempts bounds deliveries of a failing message before it is dropped.
func WithMaxAttempts(n int) ConsumeOption {
	return func(o *consumeOptions) { o.maxAttempts = n }
}
