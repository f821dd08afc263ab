package nats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishWithoutServer(t *testing.T) {
	assert.ErrorIs(t, Publish("pfemem.resources", []byte("{}")), ErrUnavailable)
	assert.ErrorIs(t, Subscribe("test", "pfemem.resources", func([]byte) error { return nil }), ErrUnavailable)
	assert.Empty(t, ClientURL())
}

func TestPublish(t *testing.T) {
	require.NoError(t, StartServer(Config{
		Host:        "127.0.0.1:-1",
		MaxPayload:  1024 * 1024,
		StoreDir:    t.TempDir(),
		StoreType:   "MEMORY",
		StoreMaxAge: time.Hour,
		Subjects:    []string{"pfemem.>"},
	}))
	t.Cleanup(StopServer)
	assert.NotEmpty(t, ClientURL())

	require.NoError(t, Publish("pfemem.resources", []byte(`{"resources":[]}`)))

	received := make(chan []byte, 1)
	require.NoError(t, Subscribe("test", "pfemem.resources", func(p []byte) error {
		received <- p
		return nil
	}))
	select {
	case p := <-received:
		assert.JSONEq(t, `{"resources":[]}`, string(p))
	case <-time.After(time.Second * 5):
		t.Fatal("message not received")
	}

	assert.Error(t, Publish("other.subject", []byte("{}")))
}

func TestServerOptions(t *testing.T) {
	opts, err := Config{Host: "0.0.0.0:4222", MaxPayload: 8, StoreDir: "natsstore"}.serverOptions()
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0", opts.Host)
	assert.Equal(t, 4222, opts.Port)
	assert.True(t, opts.JetStream)
	assert.Equal(t, "natsstore", opts.StoreDir)

	_, err = Config{Host: "no-port"}.serverOptions()
	assert.Error(t, err)
}
