package dto

// 加入请求省略 room_id 时使用的默认房间
// 当前部署只有一个固定房间，协议本身按 room_id 参数化
const DEFAULT_ROOM_ID = "travel"

type JoinRoomRequest struct {
	RoomID     string `json:"room_id"`
	JoinerName string `json:"joiner_name"`
}

type SelectTopicRequest struct {
	RoomID string `json:"room_id"`
	Topic  string `json:"topic"`
}

type SuggestTopicRequest struct {
	RoomID string `json:"room_id"`
}

type AddTopicRequest struct {
	RoomID string `json:"room_id"`
	Topic  string `json:"topic"`
}

type StartGameRequest struct {
	RoomID string `json:"room_id"`
}

type StartVoteRequest struct {
	RoomID string `json:"room_id"`
}

type VoteRequest struct {
	RoomID   string `json:"room_id"`
	TargetID string `json:"target_id"`
}

type ResetGameRequest struct {
	RoomID string `json:"room_id"`
}

// 连接建立时推送一次
type ServerInfoResponse struct {
	Model string `json:"model"`
}

// 主题推荐调用前后各推送一次，供客户端显示忙碌指示
type LoadingTopicsResponse struct {
	Loading bool `json:"loading"`
}
