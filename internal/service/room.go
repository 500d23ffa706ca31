package service

import (
	"sync"

	"liar-game-be/internal/service/dto"
	"liar-game-be/internal/service/game"
	"liar-game-be/internal/words"

	"go.uber.org/zap"
)

// RoomService 是进程级的房间注册表
// 房间在第一次加入时创建，最后一名玩家离开时立刻删除
type RoomService struct {
	src words.Source

	mu       sync.RWMutex
	machines map[string]*game.Machine

	// 服务关闭信号，所有房间事件循环都会监听
	doneCh chan struct{}
}

func NewRoomService(src words.Source) *RoomService {
	return &RoomService{
		src:      src,
		machines: make(map[string]*game.Machine),
		doneCh:   make(chan struct{}),
	}
}

func (rs *RoomService) Close() {
	close(rs.doneCh)
}

// Dispatch 把一条客户端请求路由到目标房间的事件循环
// JoinRoom 按需创建房间；其余请求指向不存在的房间时静默忽略
//
// 投递在持锁状态下完成：排进队列的请求必然先于房间从注册表
// 删除，销毁路径清空队列时一定能看到它，不会有请求落在一个
// 已经退出的事件循环上
func (rs *RoomService) Dispatch(
	wrapper dto.RequestWrapper,
	connID string,
	respCh chan dto.ResponseWrapper,
) {
	req := game.Request{
		Wrapper: wrapper,
		ConnID:  connID,
		RespCh:  respCh,
	}

	if wrapper.ReqType == dto.REQ_JOIN_ROOM {
		joinReq := dto.TryUnwrapJoinRoomRequest(wrapper)
		if joinReq == nil {
			return
		}

		rs.mu.Lock()
		rs.getOrCreateLocked(normalizeRoomID(joinReq.RoomID)).Send(req)
		rs.mu.Unlock()

		return
	}

	roomID, ok := dto.RoomIDOf(wrapper)
	if !ok {
		return
	}

	rs.mu.RLock()
	m := rs.machines[normalizeRoomID(roomID)]
	if m != nil {
		m.Send(req)
	}
	rs.mu.RUnlock()

	if m == nil {
		zap.L().Debug(
			"忽略指向不存在房间的请求",
			zap.String("room_id", roomID),
			zap.String("request_type", wrapper.ReqType),
		)
	}
}

// Disconnect 在传输层连接断开时调用一次
// 把该连接从它出现过的所有房间里清理掉
func (rs *RoomService) Disconnect(connID string) {
	rs.mu.RLock()
	for _, m := range rs.machines {
		m.Send(game.Request{
			Disconnect: &game.DisconnectEvent{ConnID: connID},
		})
	}
	rs.mu.RUnlock()
}

// RoomSnapshot 返回房间最近一次广播的快照
func (rs *RoomService) RoomSnapshot(roomID string) (dto.RoomSnapshot, bool) {
	rs.mu.RLock()
	m := rs.machines[roomID]
	rs.mu.RUnlock()

	if m == nil {
		return dto.RoomSnapshot{}, false
	}

	return m.LatestSnapshot(), true
}

// 调用方必须持有写锁
func (rs *RoomService) getOrCreateLocked(roomID string) *game.Machine {
	if m, ok := rs.machines[roomID]; ok {
		return m
	}

	m := game.NewMachine(roomID, rs.src, rs.doneCh, rs.removeRoom, rs.redispatch)
	rs.machines[roomID] = m

	// 每个房间一个独立协程，串行处理房间内的全部事件
	go m.Start()

	zap.L().Info("创建房间", zap.String("room_id", roomID))

	return m
}

// 房间销毁时队列里尚未处理的请求由这里重新路由
// 加入请求会按需重建房间，其余请求按指向不存在的房间处理
func (rs *RoomService) redispatch(req game.Request) {
	// 房间已销毁，里面不会再有这个连接的玩家
	if req.Disconnect != nil {
		return
	}

	rs.Dispatch(req.Wrapper, req.ConnID, req.RespCh)
}

func (rs *RoomService) removeRoom(roomID string) {
	rs.mu.Lock()
	delete(rs.machines, roomID)
	rs.mu.Unlock()

	zap.L().Info("删除房间", zap.String("room_id", roomID))
}

func normalizeRoomID(roomID string) string {
	if roomID == "" {
		return dto.DEFAULT_ROOM_ID
	}

	return roomID
}
