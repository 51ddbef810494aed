package events

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	events []Event
	err    error
}

func (r *recordingPublisher) Publish(_ context.Context, e Event) error {
	r.events = append(r.events, e)
	return r.err
}

func TestMulti_PublishesToAll(t *testing.T) {
	ok := &recordingPublisher{}
	failing := &recordingPublisher{err: errors.New("broker down")}
	m := Multi{failing, ok}

	e := New(TypeBillCreated, "bill-1", 0, time.Now(), nil)
	err := m.Publish(context.Background(), e)

	assert.ErrorContains(t, err, "broker down")
	require.Len(t, ok.events, 1)
	assert.Equal(t, e.ID, ok.events[0].ID)
}

func TestNop(t *testing.T) {
	assert.NoError(t, Nop{}.Publish(context.Background(), Event{}))
}

func TestNew(t *testing.T) {
	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	e := New(TypeFormSaved, "form-1", 42, at, map[string]string{"kind": "prescription"})

	assert.NotEmpty(t, e.ID)
	assert.Equal(t, TypeFormSaved, e.Type)
	assert.Equal(t, int64(42), e.DoctorID)
	assert.Equal(t, at, e.OccurredAt)
}

func TestEventRecord(t *testing.T) {
	e := New(TypeBillCreated, "bill-9", 0, time.Now(), nil)
	rec := eventRecord(context.Background(), "portal.events", e, []byte(`{}`))

	assert.Equal(t, "portal.events", rec.Topic)
	assert.Equal(t, []byte("bill-9"), rec.Key)
	require.NotEmpty(t, rec.Headers)
	assert.Equal(t, "event_type", rec.Headers[0].Key)
	assert.Equal(t, []byte(TypeBillCreated), rec.Headers[0].Value)
}

// dialHub connects a client and returns once the hub has registered it.
func dialHub(t *testing.T, hub *Hub, doctorID int64) *websocket.Conn {
	t.Helper()
	registered := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := hub.ServeWS(w, r, doctorID); err == nil {
			close(registered)
		}
	}))
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	select {
	case <-registered:
	case <-time.After(2 * time.Second):
		t.Fatal("client never registered")
	}
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var e Event
	require.NoError(t, json.Unmarshal(data, &e))
	return e
}

func TestHub_FiltersByDoctor(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(nil, nil)
	go hub.Run(ctx)

	conn := dialHub(t, hub, 7)

	require.NoError(t, hub.Publish(ctx, New(TypeFormSaved, "other", 8, time.Now(), nil)))
	require.NoError(t, hub.Publish(ctx, New(TypeFormSaved, "mine", 7, time.Now(), nil)))
	require.NoError(t, hub.Publish(ctx, New(TypeBillCreated, "everyone", 0, time.Now(), nil)))

	assert.Equal(t, "mine", readEvent(t, conn).Key)
	assert.Equal(t, "everyone", readEvent(t, conn).Key)
}

func TestHub_RejectsOrigin(t *testing.T) {
	hub := NewHub(nil, func(origin string) bool { return origin == "http://allowed" })
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = hub.ServeWS(w, r, 1)
	}))
	defer srv.Close()

	header := http.Header{"Origin": []string{"http://evil"}}
	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestHub_PublishAfterStop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(nil, nil)
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	assert.NoError(t, hub.Publish(context.Background(), New(TypeBillCreated, "x", 0, time.Now(), nil)))
}
