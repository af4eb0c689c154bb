// Package messaging provides a broker-agnostic API for publishing and
// consuming messages.
//
// Use cases publish through Publisher and consume through Consumer, so the
// broker (in-process memory, NATS, NSQ, Kafka or Google Pub/Sub) is picked
// by configuration alone. A handler returning nil acknowledges the message;
// a non-nil error asks the broker to redeliver it where the broker supports
// redelivery.
package messaging
