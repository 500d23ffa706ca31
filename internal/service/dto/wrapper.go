package dto

import (
	"encoding/json"

	"go.uber.org/zap"
)

// 请求类型
const (
	REQ_JOIN_ROOM     = "JoinRoom"
	REQ_SELECT_TOPIC  = "SelectTopic"
	REQ_SUGGEST_TOPIC = "SuggestTopic"
	REQ_ADD_TOPIC     = "AddTopic"
	REQ_START_GAME    = "StartGame"
	REQ_START_VOTE    = "StartVote"
	REQ_VOTE          = "Vote"
	REQ_RESET_GAME    = "ResetGame"
)

type RequestWrapper struct {
	ReqType string          `json:"request_type"`
	Data    json.RawMessage `json:"data"`
}

func tryUnwrap[T any](wrapper RequestWrapper, reqType string) *T {
	if wrapper.ReqType != reqType {
		return nil
	}

	var req T

	if err := json.Unmarshal(wrapper.Data, &req); err != nil {
		zap.L().Error(
			"解析请求负载失败",
			zap.String("request_type", reqType),
			zap.Error(err),
		)
		return nil
	}

	return &req
}

func TryUnwrapJoinRoomRequest(wrapper RequestWrapper) *JoinRoomRequest {
	return tryUnwrap[JoinRoomRequest](wrapper, REQ_JOIN_ROOM)
}

func TryUnwrapSelectTopicRequest(wrapper RequestWrapper) *SelectTopicRequest {
	return tryUnwrap[SelectTopicRequest](wrapper, REQ_SELECT_TOPIC)
}

func TryUnwrapSuggestTopicRequest(wrapper RequestWrapper) *SuggestTopicRequest {
	return tryUnwrap[SuggestTopicRequest](wrapper, REQ_SUGGEST_TOPIC)
}

func TryUnwrapAddTopicRequest(wrapper RequestWrapper) *AddTopicRequest {
	return tryUnwrap[AddTopicRequest](wrapper, REQ_ADD_TOPIC)
}

func TryUnwrapStartGameRequest(wrapper RequestWrapper) *StartGameRequest {
	return tryUnwrap[StartGameRequest](wrapper, REQ_START_GAME)
}

func TryUnwrapStartVoteRequest(wrapper RequestWrapper) *StartVoteRequest {
	return tryUnwrap[StartVoteRequest](wrapper, REQ_START_VOTE)
}

func TryUnwrapVoteRequest(wrapper RequestWrapper) *VoteRequest {
	return tryUnwrap[VoteRequest](wrapper, REQ_VOTE)
}

func TryUnwrapResetGameRequest(wrapper RequestWrapper) *ResetGameRequest {
	return tryUnwrap[ResetGameRequest](wrapper, REQ_RESET_GAME)
}

// 所有请求负载都带 room_id 字段，统一在这里提取用于路由
// JoinRoom 由注册逻辑单独处理，不走这里
func RoomIDOf(wrapper RequestWrapper) (string, bool) {
	var probe struct {
		RoomID string `json:"room_id"`
	}

	if err := json.Unmarshal(wrapper.Data, &probe); err != nil {
		return "", false
	}

	return probe.RoomID, true
}

// 响应类型
const (
	RESP_ERROR = "Error"

	RESP_SERVER_INFO    = "ServerInfo"
	RESP_ROOM_UPDATE    = "RoomUpdate"
	RESP_LOADING_TOPICS = "LoadingTopics"
)

type ResponseWrapper struct {
	RespType string `json:"response_type"`
	Data     any    `json:"data,omitempty"`
	ErrMsg   string `json:"error_message,omitempty"`
}

func WrapResponse(respType string, data any) ResponseWrapper {
	return ResponseWrapper{
		RespType: respType,
		Data:     data,
	}
}

func WrapErrResponse(errMsg string) ResponseWrapper {
	return ResponseWrapper{
		RespType: RESP_ERROR,
		ErrMsg:   errMsg,
	}
}
