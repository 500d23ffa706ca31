package http

import (
	"fmt"

	"liar-game-be/internal/api/http/websocket"
	"liar-game-be/internal/state"

	"github.com/kataras/iris/v12"
)

func RunServer(appState *state.AppState) {
	app := iris.Default()

	app.HandleDir(
		"/",
		iris.Dir("./liar-game-fe"),
		iris.DirOptions{
			IndexName: "index.html",
			SPA:       true,
			Compress:  true,
		},
	)

	api := app.Party("/api/v1")

	api.Get("/rooms/{id}", RoomInfo(appState))
	api.Get("/rooms/{id}/qr", RoomQR(appState))

	api.Get("/ws/game", websocket.GameSocket(appState))

	addr := fmt.Sprintf(
		"%s:%d",
		appState.Cfg.Host,
		appState.Cfg.Port,
	)

	app.Listen(addr)
}
