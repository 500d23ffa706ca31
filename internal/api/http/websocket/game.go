package websocket

import (
	"encoding/json"
	"time"

	"liar-game-be/internal/service/dto"
	"liar-game-be/internal/service/game"
	"liar-game-be/internal/state"

	"github.com/gorilla/websocket"
	"github.com/kataras/iris/v12"
	"go.uber.org/zap"
)

// GameSocket 是游戏的实时通道入口
// 每个连接分配一个稳定的连接 ID，作为它在所有房间里的玩家 ID；
// 入站事件逐条交给房间注册表路由，连接断开时触发一次清理
func GameSocket(appState *state.AppState) iris.Handler {
	return func(ctx iris.Context) {
		conn, err := upgrader.Upgrade(
			ctx.ResponseWriter(),
			ctx.Request(),
			nil,
		)
		if err != nil {
			zap.L().Error("升级到WebSocket失败", zap.Error(err))
			ctx.StatusCode(iris.StatusBadRequest)
			return
		}

		defer conn.Close()

		conn.SetReadDeadline(time.Now().Add(HEARTBEAT_TIMEOUT))
		conn.SetPongHandler(heartbeatHandler(conn))

		connID := game.GenConnID()
		clientIP := ctx.RemoteAddr()

		respCh := make(chan dto.ResponseWrapper, 64)

		// 连接建立后先推送一次服务器信息
		respCh <- dto.WrapResponse(
			dto.RESP_SERVER_INFO,
			dto.ServerInfoResponse{Model: appState.Cfg.GeminiModel},
		)

		zap.L().Info(
			"游戏客户端已连接",
			zap.String("client_ip", clientIP),
			zap.String("conn_id", connID),
		)

		// 写协程的退出信号
		writeDoneCh := make(chan struct{})
		defer close(writeDoneCh)

		// 写入协程
		go func() {
			ticker := time.NewTicker(HEARTBEAT_INTERVAL)
			defer ticker.Stop()

			for {
				select {
				case <-writeDoneCh:
					zap.L().Debug(
						"WebSocket写入协程退出",
						zap.String("conn_id", connID),
					)
					return

				case <-ticker.C:
					if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
						zap.L().Error(
							"发送心跳失败",
							zap.String("conn_id", connID),
							zap.Error(err),
						)
						return
					}

					conn.SetWriteDeadline(time.Now().Add(HEARTBEAT_TIMEOUT))

				case resp := <-respCh:
					if err := conn.WriteJSON(resp); err != nil {
						zap.L().Error(
							"发送消息失败",
							zap.String("conn_id", connID),
							zap.Error(err),
						)
						return
					}
				}
			}
		}()

		// 读取协程（主协程）
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(
					err,
					websocket.CloseGoingAway,
					websocket.CloseAbnormalClosure,
				) {
					zap.L().Error(
						"读取消息失败",
						zap.String("conn_id", connID),
						zap.Error(err),
					)
				}

				break
			}

			var wrapper dto.RequestWrapper

			if err := json.Unmarshal(msg, &wrapper); err != nil {
				zap.L().Error(
					"解析消息失败",
					zap.String("conn_id", connID),
					zap.Error(err),
				)

				select {
				case respCh <- dto.WrapErrResponse("无效的请求格式"):
				default:
				}

				continue
			}

			appState.RoomSvc.Dispatch(wrapper, connID, respCh)
		}

		// 读循环退出即客户端断开，清理该连接在所有房间里的玩家
		appState.RoomSvc.Disconnect(connID)

		zap.L().Info(
			"游戏客户端断开连接",
			zap.String("client_ip", clientIP),
			zap.String("conn_id", connID),
		)
	}
}
