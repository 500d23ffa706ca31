package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"liar-game-be/internal/service/dto"
	"liar-game-be/internal/words"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct{}

func (stubSource) SuggestTopics(context.Context, []string) []string {
	return []string{"美食"}
}

func (stubSource) GenerateWordPair(context.Context, string) words.Pair {
	return words.Pair{Civilian: "Pizza", Liar: "Pasta"}
}

func joinWrapper(t *testing.T, roomID, name string) dto.RequestWrapper {
	t.Helper()

	data, err := json.Marshal(dto.JoinRoomRequest{RoomID: roomID, JoinerName: name})
	require.NoError(t, err)

	return dto.RequestWrapper{
		ReqType: dto.REQ_JOIN_ROOM,
		Data:    data,
	}
}

func waitPlayers(t *testing.T, rs *RoomService, roomID string, count int) {
	t.Helper()

	require.Eventually(t, func() bool {
		snap, ok := rs.RoomSnapshot(roomID)
		return ok && len(snap.Players) == count
	}, 2*time.Second, 5*time.Millisecond, "等待房间 %s 达到 %d 人超时", roomID, count)
}

func TestDispatchCreatesRoomOnJoin(t *testing.T) {
	rs := NewRoomService(stubSource{})
	defer rs.Close()

	_, ok := rs.RoomSnapshot("travel")
	assert.False(t, ok, "加入之前不应该有房间")

	respCh := make(chan dto.ResponseWrapper, 64)
	rs.Dispatch(joinWrapper(t, "travel", "A"), "a1", respCh)

	waitPlayers(t, rs, "travel", 1)

	snap, ok := rs.RoomSnapshot("travel")
	require.True(t, ok)
	assert.Equal(t, "travel", snap.ID)
	assert.Equal(t, "A", snap.Players[0].Name)
}

func TestDispatchDefaultsEmptyRoomID(t *testing.T) {
	rs := NewRoomService(stubSource{})
	defer rs.Close()

	respCh := make(chan dto.ResponseWrapper, 64)
	rs.Dispatch(joinWrapper(t, "", "A"), "a1", respCh)

	waitPlayers(t, rs, dto.DEFAULT_ROOM_ID, 1)
}

func TestDispatchIgnoresUnknownRoom(t *testing.T) {
	rs := NewRoomService(stubSource{})
	defer rs.Close()

	data, err := json.Marshal(dto.VoteRequest{RoomID: "nowhere", TargetID: "a1"})
	require.NoError(t, err)

	// 指向不存在房间的请求被丢弃，不会创建房间
	rs.Dispatch(dto.RequestWrapper{
		ReqType: dto.REQ_VOTE,
		Data:    data,
	}, "a1", make(chan dto.ResponseWrapper, 64))

	_, ok := rs.RoomSnapshot("nowhere")
	assert.False(t, ok)
}

func TestDisconnectDestroysEmptiedRoom(t *testing.T) {
	rs := NewRoomService(stubSource{})
	defer rs.Close()

	respCh := make(chan dto.ResponseWrapper, 64)
	rs.Dispatch(joinWrapper(t, "travel", "A"), "a1", respCh)
	waitPlayers(t, rs, "travel", 1)

	rs.Disconnect("a1")

	require.Eventually(t, func() bool {
		_, ok := rs.RoomSnapshot("travel")
		return !ok
	}, 2*time.Second, 5*time.Millisecond, "最后一名玩家离开后房间应立即销毁")
}

// 唯一玩家断线重连：断开和紧随其后的加入可能排进同一个
// 正在销毁的房间队列，加入必须重建房间而不是被丢弃
func TestJoinQueuedBehindTeardownIsNotLost(t *testing.T) {
	rs := NewRoomService(stubSource{})
	defer rs.Close()

	chA := make(chan dto.ResponseWrapper, 64)
	rs.Dispatch(joinWrapper(t, "travel", "A"), "a1", chA)
	waitPlayers(t, rs, "travel", 1)

	chB := make(chan dto.ResponseWrapper, 64)
	rs.Disconnect("a1")
	rs.Dispatch(joinWrapper(t, "travel", "B"), "b1", chB)

	require.Eventually(t, func() bool {
		snap, ok := rs.RoomSnapshot("travel")
		return ok && len(snap.Players) == 1 && snap.Players[0].Name == "B"
	}, 2*time.Second, 5*time.Millisecond, "房间销毁期间排队的加入请求被丢弃了")
}

func TestDisconnectReachesAllRooms(t *testing.T) {
	rs := NewRoomService(stubSource{})
	defer rs.Close()

	chA := make(chan dto.ResponseWrapper, 64)
	chB := make(chan dto.ResponseWrapper, 64)

	rs.Dispatch(joinWrapper(t, "travel", "A"), "a1", chA)
	rs.Dispatch(joinWrapper(t, "movie", "B"), "b1", chB)
	waitPlayers(t, rs, "travel", 1)
	waitPlayers(t, rs, "movie", 1)

	rs.Disconnect("b1")

	require.Eventually(t, func() bool {
		_, ok := rs.RoomSnapshot("movie")
		return !ok
	}, 2*time.Second, 5*time.Millisecond)

	// 其他房间不受影响
	snap, ok := rs.RoomSnapshot("travel")
	require.True(t, ok)
	assert.Len(t, snap.Players, 1)
}
