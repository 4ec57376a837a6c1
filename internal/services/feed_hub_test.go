package services

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"challenge-feed-backend/internal/models"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dialHub upgrades a test connection and registers it with the hub under userID.
// It returns the client side of the connection.
func dialHub(t *testing.T, hub *FeedHub, userID string) *websocket.Conn {
	t.Helper()

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		hub.Register(userID, conn)
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	// Register happens in the server handler; wait for it to land.
	require.Eventually(t, func() bool { return hub.IsOnline(userID) }, time.Second, 10*time.Millisecond)
	return client
}

func readMessage(t *testing.T, conn *websocket.Conn) WSMessage {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var msg WSMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestSendToUserNotConnected(t *testing.T) {
	hub := NewFeedHub()
	err := hub.SendToUser("nobody", WSMessage{Type: "friend_status"})
	assert.Error(t, err)
}

func TestRegisterAndSend(t *testing.T) {
	hub := NewFeedHub()
	client := dialHub(t, hub, "u1")

	require.NoError(t, hub.SendToUser("u1", WSMessage{Type: "friend_status", UserID: "u2"}))

	msg := readMessage(t, client)
	assert.Equal(t, "friend_status", msg.Type)
	assert.Equal(t, "u2", msg.UserID)
}

func TestUnregisterDropsConnection(t *testing.T) {
	hub := NewFeedHub()
	dialHub(t, hub, "u1")

	hub.Unregister("u1")

	assert.False(t, hub.IsOnline("u1"))
	assert.Error(t, hub.SendToUser("u1", WSMessage{Type: "friend_status"}))
}

func TestNotifyChallengeCompletedSkipsOfflineFriends(t *testing.T) {
	hub := NewFeedHub()
	online := dialHub(t, hub, "friend-online")

	user := models.User{ID: "u1"}
	cc := models.CompletedChallenge{ChallengeID: "ch1"}
	hub.NotifyChallengeCompleted(user, []string{"friend-online", "friend-offline"}, cc)

	msg := readMessage(t, online)
	assert.Equal(t, "friend_completed_challenge", msg.Type)
	assert.Equal(t, "u1", msg.UserID)
	assert.NotZero(t, msg.Timestamp)
	assert.NotNil(t, msg.Data)
}

func TestNotifyPresence(t *testing.T) {
	hub := NewFeedHub()
	friend := dialHub(t, hub, "friend1")

	hub.NotifyPresence("u1", []string{"friend1"}, true)

	msg := readMessage(t, friend)
	assert.Equal(t, "friend_status", msg.Type)
	assert.Equal(t, "u1", msg.UserID)
	require.NotNil(t, msg.Online)
	assert.True(t, *msg.Online)
}
