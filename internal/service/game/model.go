package game

import "liar-game-be/internal/service/dto"

// 房间状态，构成一个无终态的循环：
// waiting --开始游戏--> loading --词语生成完成--> playing
// playing --发起投票--> voting --最后一票--> result --重置--> waiting
// 任意状态下最后一名玩家离开时，房间直接销毁
const (
	STATUS_WAITING = "waiting"
	STATUS_LOADING = "loading"
	STATUS_PLAYING = "playing"
	STATUS_VOTING  = "voting"
	STATUS_RESULT  = "result"
)

// 玩家身份，开始游戏时分配，重置时清空
const (
	ROLE_CIVILIAN = "civilian"
	ROLE_LIAR     = "liar"
)

// 胜利方
const (
	WINNER_CIVILIAN = "civilian"
	WINNER_LIAR     = "liar"
)

type Player struct {
	ID     string
	Name   string
	IsHost bool
	Role   string
	Word   string

	RespCh chan dto.ResponseWrapper
}

// Room 的全部字段只允许所属房间的事件循环读写
type Room struct {
	ID      string
	Players []*Player
	// 展示顺序即插入顺序，值去重
	Topics        []string
	SelectedTopic string
	CurrentTopic  string
	Status        string
	CivilianWord  string
	LiarWord      string
	LiarID        string
	Votes         map[string]string
	Winner        string
	VotedOutID    string
}

func NewRoom(id string) *Room {
	return &Room{
		ID:      id,
		Players: make([]*Player, 0),
		Topics:  make([]string, 0),
		Status:  STATUS_WAITING,
		Votes:   make(map[string]string),
	}
}

func (r *Room) FindPlayer(playerID string) *Player {
	for _, p := range r.Players {
		if p.ID == playerID {
			return p
		}
	}

	return nil
}

func (r *Room) HasTopic(topic string) bool {
	for _, t := range r.Topics {
		if t == topic {
			return true
		}
	}

	return false
}
