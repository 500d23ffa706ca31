package game

import (
	"sync/atomic"

	"liar-game-be/internal/service/dto"
	"liar-game-be/internal/words"

	"go.uber.org/zap"
)

// Request 是进入房间事件循环的统一事件
// 来自客户端的请求带 Wrapper，内部事件只设置对应的指针字段
type Request struct {
	Wrapper dto.RequestWrapper
	// 发起请求的连接标识，同时是房间内的玩家 ID
	ConnID string
	RespCh chan dto.ResponseWrapper

	// 内部事件，不走客户端协议
	WordsReady  *WordsReadyEvent
	TopicsReady *TopicsReadyEvent
	Disconnect  *DisconnectEvent
}

// 词语生成完成，开始游戏流程的后半段
type WordsReadyEvent struct {
	Civilian string
	Liar     string
}

// 主题推荐完成
type TopicsReadyEvent struct {
	Topics []string
}

// 传输层连接断开
type DisconnectEvent struct {
	ConnID string
}

// Machine 是单个房间的状态机，所有状态变更都在 Start 的
// 事件循环里串行执行，房间内不需要任何锁
type Machine struct {
	room *Room
	src  words.Source

	reqCh chan Request
	// 内部事件通道，生成协程通过它回到事件循环
	evCh   chan Request
	doneCh <-chan struct{}

	// 房间清空时回调注册表删除自己
	onEmpty func(roomID string)
	// 销毁时把队列里积压的客户端请求交回注册表重新路由
	redispatch func(req Request)

	// 最近一次广播的快照，供事件循环之外的读取方（REST）使用
	lastSnap atomic.Pointer[dto.RoomSnapshot]
}

func NewMachine(
	roomID string,
	src words.Source,
	doneCh <-chan struct{},
	onEmpty func(roomID string),
	redispatch func(req Request),
) *Machine {
	m := &Machine{
		room:       NewRoom(roomID),
		src:        src,
		reqCh:      make(chan Request, 64),
		evCh:       make(chan Request, 16),
		doneCh:     doneCh,
		onEmpty:    onEmpty,
		redispatch: redispatch,
	}

	snap := m.room.Snapshot()
	m.lastSnap.Store(&snap)

	return m
}

// Send 向事件循环投递一个事件，循环繁忙时丢弃并告警
func (m *Machine) Send(req Request) {
	select {
	case m.reqCh <- req:
	default:
		zap.L().Warn(
			"投递房间事件失败：请求通道已满",
			zap.String("room_id", m.room.ID),
		)
	}
}

// LatestSnapshot 返回最近一次广播的快照，任意协程可读
func (m *Machine) LatestSnapshot() dto.RoomSnapshot {
	return *m.lastSnap.Load()
}

// Start 运行事件循环，房间清空或服务关闭时返回
func (m *Machine) Start() {
	for {
		var req Request

		select {
		case req = <-m.reqCh:
		case req = <-m.evCh:
		case <-m.doneCh:
			zap.L().Info(
				"收到退出信号，结束房间事件循环",
				zap.String("room_id", m.room.ID),
			)
			return
		}

		m.handle(req)

		// 房间一旦清空就立即销毁，不保留空房间
		if len(m.room.Players) == 0 {
			if m.onEmpty != nil {
				m.onEmpty(m.room.ID)
			}

			// 注册表已经删掉本房间，之后不会再有新请求落进来，
			// 此刻清空的就是队列里的全部积压
			m.drainPending()

			zap.L().Info(
				"房间已空，销毁房间",
				zap.String("room_id", m.room.ID),
			)
			return
		}
	}
}

func (m *Machine) handle(req Request) {
	switch {
	case req.Disconnect != nil:
		m.handleDisconnect(req.Disconnect.ConnID)
		return
	case req.WordsReady != nil:
		m.handleWordsReady(*req.WordsReady)
		return
	case req.TopicsReady != nil:
		m.handleTopicsReady(*req.TopicsReady)
		return
	}

	switch req.Wrapper.ReqType {
	case dto.REQ_JOIN_ROOM:
		if r := dto.TryUnwrapJoinRoomRequest(req.Wrapper); r != nil {
			m.handleJoin(req.ConnID, r.JoinerName, req.RespCh)
		}
	case dto.REQ_SELECT_TOPIC:
		if r := dto.TryUnwrapSelectTopicRequest(req.Wrapper); r != nil {
			m.handleSelectTopic(r.Topic)
		}
	case dto.REQ_SUGGEST_TOPIC:
		if r := dto.TryUnwrapSuggestTopicRequest(req.Wrapper); r != nil {
			m.handleSuggestTopic()
		}
	case dto.REQ_ADD_TOPIC:
		if r := dto.TryUnwrapAddTopicRequest(req.Wrapper); r != nil {
			m.handleAddTopic(r.Topic)
		}
	case dto.REQ_START_GAME:
		if r := dto.TryUnwrapStartGameRequest(req.Wrapper); r != nil {
			m.handleStartGame(req.RespCh)
		}
	case dto.REQ_START_VOTE:
		if r := dto.TryUnwrapStartVoteRequest(req.Wrapper); r != nil {
			m.handleStartVote()
		}
	case dto.REQ_VOTE:
		if r := dto.TryUnwrapVoteRequest(req.Wrapper); r != nil {
			m.handleVote(req.ConnID, r.TargetID)
		}
	case dto.REQ_RESET_GAME:
		if r := dto.TryUnwrapResetGameRequest(req.Wrapper); r != nil {
			m.handleReset()
		}
	default:
		zap.L().Debug(
			"忽略未知的请求类型",
			zap.String("room_id", m.room.ID),
			zap.String("request_type", req.Wrapper.ReqType),
		)
	}
}

// 每次状态变更后推送快照，保证所有成员看到单调递增的状态
func (m *Machine) broadcastUpdate() {
	snap := m.room.Snapshot()
	m.lastSnap.Store(&snap)

	m.room.Broadcast(dto.WrapResponse(dto.RESP_ROOM_UPDATE, snap))
}

// 销毁时刻仍排在队列里的客户端请求不能丢，交回注册表重新路由
// 典型场景：唯一玩家断线重连，加入请求排在断开事件后面
func (m *Machine) drainPending() {
	for {
		select {
		case req := <-m.reqCh:
			if m.redispatch != nil {
				m.redispatch(req)
			}
		default:
			return
		}
	}
}

// 把内部事件送回事件循环；房间可能已销毁，投递失败直接丢弃
func (m *Machine) postEvent(req Request) {
	select {
	case m.evCh <- req:
	default:
		zap.L().Warn(
			"投递内部事件失败：事件通道已满",
			zap.String("room_id", m.room.ID),
		)
	}
}
