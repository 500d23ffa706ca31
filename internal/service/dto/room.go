package dto

type PlayerSnapshot struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	IsHost bool   `json:"is_host"`
	Role   string `json:"role,omitempty"`
	Word   string `json:"word,omitempty"`
}

// 每次状态变化后向房间内所有成员推送的完整快照
type RoomSnapshot struct {
	ID            string            `json:"id"`
	Players       []PlayerSnapshot  `json:"players"`
	Topics        []string          `json:"topics"`
	SelectedTopic string            `json:"selected_topic,omitempty"`
	CurrentTopic  string            `json:"current_topic,omitempty"`
	Status        string            `json:"status"`
	CivilianWord  string            `json:"civilian_word,omitempty"`
	LiarWord      string            `json:"liar_word,omitempty"`
	LiarID        string            `json:"liar_id,omitempty"`
	Votes         map[string]string `json:"votes"`
	Winner        string            `json:"winner,omitempty"`
	VotedOutID    string            `json:"voted_out_id,omitempty"`
}
