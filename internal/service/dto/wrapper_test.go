package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTryUnwrapRejectsTypeMismatch(t *testing.T) {
	wrapper := RequestWrapper{
		ReqType: REQ_VOTE,
		Data:    json.RawMessage(`{"room_id":"travel","target_id":"a1"}`),
	}

	assert.Nil(t, TryUnwrapJoinRoomRequest(wrapper))

	req := TryUnwrapVoteRequest(wrapper)
	require.NotNil(t, req)
	assert.Equal(t, "travel", req.RoomID)
	assert.Equal(t, "a1", req.TargetID)
}

func TestTryUnwrapRejectsMalformedPayload(t *testing.T) {
	wrapper := RequestWrapper{
		ReqType: REQ_JOIN_ROOM,
		Data:    json.RawMessage(`{"room_id":`),
	}

	assert.Nil(t, TryUnwrapJoinRoomRequest(wrapper))
}

func TestRoomIDOf(t *testing.T) {
	roomID, ok := RoomIDOf(RequestWrapper{
		ReqType: REQ_START_GAME,
		Data:    json.RawMessage(`{"room_id":"travel"}`),
	})
	require.True(t, ok)
	assert.Equal(t, "travel", roomID)

	_, ok = RoomIDOf(RequestWrapper{Data: json.RawMessage(`not-json`)})
	assert.False(t, ok)
}
