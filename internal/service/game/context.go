package game

import (
	"liar-game-be/internal/service/dto"

	"go.uber.org/zap"
)

// Snapshot 构建发给客户端的完整房间快照
// 深拷贝，后续的状态变更不会影响已发出的快照
func (r *Room) Snapshot() dto.RoomSnapshot {
	players := make([]dto.PlayerSnapshot, 0, len(r.Players))
	for _, p := range r.Players {
		players = append(players, dto.PlayerSnapshot{
			ID:     p.ID,
			Name:   p.Name,
			IsHost: p.IsHost,
			Role:   p.Role,
			Word:   p.Word,
		})
	}

	topics := make([]string, len(r.Topics))
	copy(topics, r.Topics)

	votes := make(map[string]string, len(r.Votes))
	for voterID, targetID := range r.Votes {
		votes[voterID] = targetID
	}

	return dto.RoomSnapshot{
		ID:            r.ID,
		Players:       players,
		Topics:        topics,
		SelectedTopic: r.SelectedTopic,
		CurrentTopic:  r.CurrentTopic,
		Status:        r.Status,
		CivilianWord:  r.CivilianWord,
		LiarWord:      r.LiarWord,
		LiarID:        r.LiarID,
		Votes:         votes,
		Winner:        r.Winner,
		VotedOutID:    r.VotedOutID,
	}
}

func (r *Room) Broadcast(resp dto.ResponseWrapper) {
	for _, p := range r.Players {
		select {
		case p.RespCh <- resp:
		default:
			zap.L().Warn(
				"发送广播响应失败：玩家响应通道已满",
				zap.String("room_id", r.ID),
				zap.String("player_id", p.ID),
			)
		}
	}
}

// 只发给发起请求的连接，用于前置条件告警
func unicast(respCh chan dto.ResponseWrapper, resp dto.ResponseWrapper) {
	if respCh == nil {
		return
	}

	select {
	case respCh <- resp:
	default:
		zap.L().Warn("发送单播响应失败：响应通道已满")
	}
}
