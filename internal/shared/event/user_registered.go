package event

import "time"

const UserRegisteredDestination string = "user_registered"
const UserRegisteredDestinationConsumerNotification string = "user_registered_notification"

// HeaderCorrelationID carries the request correlation id across the broker.
const HeaderCorrelationID string = "cID"

type UserRegisteredMessage struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}
