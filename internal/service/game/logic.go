package game

import (
	"context"
	"math/rand/v2"
	"strings"

	"liar-game-be/internal/service/dto"

	"go.uber.org/zap"
)

// 两类用户可见的前置条件告警，只发给发起请求的连接
const (
	ERR_NO_TOPIC_SELECTED  = "⚠️ 请先选择主题，才能开始游戏！"
	ERR_NOT_ENOUGH_PLAYERS = "至少需要 3 名玩家。"
)

// 开始游戏的最低人数
const MIN_PLAYERS = 3

// 加入没有阶段限制，任何状态下都合法
func (m *Machine) handleJoin(connID, name string, respCh chan dto.ResponseWrapper) {
	// 同一连接重复加入视为幂等，保证玩家 ID 在房间内唯一
	if m.room.FindPlayer(connID) != nil {
		m.broadcastUpdate()
		return
	}

	player := &Player{
		ID:     connID,
		Name:   name,
		IsHost: len(m.room.Players) == 0,
		RespCh: respCh,
	}

	m.room.Players = append(m.room.Players, player)

	zap.L().Info(
		"玩家加入房间",
		zap.String("room_id", m.room.ID),
		zap.String("player_id", player.ID),
		zap.String("player_name", player.Name),
		zap.Bool("is_host", player.IsHost),
	)

	m.broadcastUpdate()
}

// 无条件设置选中主题，不校验阶段，也不要求主题已在列表里
func (m *Machine) handleSelectTopic(topic string) {
	m.room.SelectedTopic = topic

	m.broadcastUpdate()
}

func (m *Machine) handleAddTopic(topic string) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return
	}

	if !m.room.HasTopic(topic) {
		m.room.Topics = append(m.room.Topics, topic)
	}

	// 已存在的主题也允许重新选中
	m.room.SelectedTopic = topic

	m.broadcastUpdate()
}

// 主题推荐是异步的：先广播忙碌标志，生成协程完成后
// 以 TopicsReady 事件回到循环，期间房间可以继续处理其他事件
func (m *Machine) handleSuggestTopic() {
	m.room.Broadcast(dto.WrapResponse(
		dto.RESP_LOADING_TOPICS,
		dto.LoadingTopicsResponse{Loading: true},
	))

	excluding := make([]string, len(m.room.Topics))
	copy(excluding, m.room.Topics)

	go func() {
		topics := m.src.SuggestTopics(context.Background(), excluding)

		m.postEvent(Request{
			TopicsReady: &TopicsReadyEvent{Topics: topics},
		})
	}()
}

func (m *Machine) handleTopicsReady(ev TopicsReadyEvent) {
	for _, topic := range ev.Topics {
		if !m.room.HasTopic(topic) {
			m.room.Topics = append(m.room.Topics, topic)
		}
	}

	// 还没选中主题时，自动选中本次返回的第一个
	if m.room.SelectedTopic == "" && len(ev.Topics) > 0 {
		m.room.SelectedTopic = ev.Topics[0]
	}

	m.room.Broadcast(dto.WrapResponse(
		dto.RESP_LOADING_TOPICS,
		dto.LoadingTopicsResponse{Loading: false},
	))

	m.broadcastUpdate()
}

func (m *Machine) handleStartGame(respCh chan dto.ResponseWrapper) {
	// 词语生成已在途，忽略重复的开始请求
	if m.room.Status == STATUS_LOADING {
		zap.L().Debug(
			"忽略 loading 期间的重复开始请求",
			zap.String("room_id", m.room.ID),
		)
		return
	}

	if m.room.SelectedTopic == "" {
		unicast(respCh, dto.WrapErrResponse(ERR_NO_TOPIC_SELECTED))
		return
	}

	if len(m.room.Players) < MIN_PLAYERS {
		unicast(respCh, dto.WrapErrResponse(ERR_NOT_ENOUGH_PLAYERS))
		return
	}

	m.room.CurrentTopic = m.room.SelectedTopic
	m.room.Status = STATUS_LOADING

	m.broadcastUpdate()

	topic := m.room.CurrentTopic

	go func() {
		pair := m.src.GenerateWordPair(context.Background(), topic)

		m.postEvent(Request{
			WordsReady: &WordsReadyEvent{
				Civilian: pair.Civilian,
				Liar:     pair.Liar,
			},
		})
	}()
}

// 词语生成完成后分配角色
// 角色按此刻的名单分配，loading 期间的加入和离开都会被计入
func (m *Machine) handleWordsReady(ev WordsReadyEvent) {
	room := m.room

	if len(room.Players) == 0 {
		return
	}

	room.CivilianWord = ev.Civilian
	room.LiarWord = ev.Liar

	liarIdx := rand.IntN(len(room.Players))
	room.LiarID = room.Players[liarIdx].ID

	for i, p := range room.Players {
		if i == liarIdx {
			p.Role = ROLE_LIAR
			p.Word = ev.Liar
		} else {
			p.Role = ROLE_CIVILIAN
			p.Word = ev.Civilian
		}
	}

	room.Status = STATUS_PLAYING

	zap.L().Info(
		"游戏开始",
		zap.String("room_id", room.ID),
		zap.String("topic", room.CurrentTopic),
		zap.Int("player_count", len(room.Players)),
	)

	m.broadcastUpdate()
}

func (m *Machine) handleStartVote() {
	m.room.Status = STATUS_VOTING
	m.room.Votes = make(map[string]string)

	m.broadcastUpdate()
}

// 投票不限阶段，重复投票覆盖旧票，自投也不拦截
func (m *Machine) handleVote(voterID, targetID string) {
	m.room.Votes[voterID] = targetID

	// 先广播记票结果，再判断是否结算
	m.broadcastUpdate()

	m.maybeResolveVotes()
}

// 在场玩家的有效票数达到当前人数时结算本轮
func (m *Machine) maybeResolveVotes() {
	room := m.room

	if len(room.Players) == 0 {
		return
	}

	validVotes := 0
	for voterID := range room.Votes {
		if room.FindPlayer(voterID) != nil {
			validVotes++
		}
	}

	if validVotes < len(room.Players) {
		return
	}

	votedOutID := tallyVotes(room.Players, room.Votes)

	winner := WINNER_LIAR
	if votedOutID != "" && votedOutID == room.LiarID {
		winner = WINNER_CIVILIAN
	}

	room.Status = STATUS_RESULT
	room.Winner = winner
	room.VotedOutID = votedOutID

	zap.L().Info(
		"投票结算",
		zap.String("room_id", room.ID),
		zap.String("voted_out_id", votedOutID),
		zap.String("winner", winner),
	)

	m.broadcastUpdate()
}

// 计票只统计仍在场的投票者，已离开玩家的残留票被过滤
// 平票按加入顺序取靠前者，结果是确定性的
func tallyVotes(players []*Player, votes map[string]string) string {
	present := make(map[string]bool, len(players))
	for _, p := range players {
		present[p.ID] = true
	}

	counts := make(map[string]int)
	for voterID, targetID := range votes {
		if present[voterID] {
			counts[targetID]++
		}
	}

	votedOutID := ""
	maxVotes := 0

	for _, p := range players {
		if counts[p.ID] > maxVotes {
			maxVotes = counts[p.ID]
			votedOutID = p.ID
		}
	}

	return votedOutID
}

// 重置回等待阶段，保留玩家名单和主题列表
func (m *Machine) handleReset() {
	room := m.room

	room.Status = STATUS_WAITING
	room.SelectedTopic = ""
	room.CurrentTopic = ""
	room.CivilianWord = ""
	room.LiarWord = ""
	room.LiarID = ""
	room.Votes = make(map[string]string)
	room.Winner = ""
	room.VotedOutID = ""

	for _, p := range room.Players {
		p.Role = ""
		p.Word = ""
	}

	m.broadcastUpdate()
}

// 断开清理是正常生命周期事件，不是错误
func (m *Machine) handleDisconnect(connID string) {
	room := m.room

	idx := -1
	for i, p := range room.Players {
		if p.ID == connID {
			idx = i
			break
		}
	}

	// 该连接不在这个房间里
	if idx < 0 {
		return
	}

	room.Players = append(room.Players[:idx], room.Players[idx+1:]...)
	delete(room.Votes, connID)

	zap.L().Info(
		"玩家离开房间",
		zap.String("room_id", room.ID),
		zap.String("player_id", connID),
	)

	// 房间清空由事件循环统一销毁，不再广播
	if len(room.Players) == 0 {
		return
	}

	m.broadcastUpdate()

	// 人数变少可能让剩余票数直接达到结算阈值
	if room.Status == STATUS_VOTING {
		m.maybeResolveVotes()
	}
}
