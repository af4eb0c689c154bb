package messaging

import (
	"testing"

	nsq "github.com/nsqio/go-nsq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNSQEnvelope(t *testing.T) {
	body, err := encodeNSQ(OutgoingMessage{
		Key:     []byte("k"),
		Body:    []byte(`{"id":"1"}`),
		Headers: map[string]string{"cID": "abc"},
	})
	require.NoError(t, err)

	m := nsq.NewMessage(nsq.MessageID{'0', '1'}, body)
	m.Attempts = 2

	msg, err := decodeNSQ("user_registered", m)
	require.NoError(t, err)
	assert.Equal(t, "user_registered", msg.Topic)
	assert.Equal(t, []byte("k"), msg.Key)
	assert.JSONEq(t, `{"id":"1"}`, string(msg.Body))
	assert.Equal(t, "abc", msg.Header("cID"))
	assert.Equal(t, 2, msg.Attempt)

	_, err = decodeNSQ("t", nsq.NewMessage(nsq.MessageID{}, []byte("not json")))
	assert.Error(t, err)
}
