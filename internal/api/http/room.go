package http

import (
	"liar-game-be/internal/state"

	"github.com/kataras/iris/v12"
	"github.com/skip2/go-qrcode"
)

func RoomInfo(appState *state.AppState) iris.Handler {
	return func(ctx iris.Context) {
		roomID := ctx.Params().Get("id")

		snap, ok := appState.RoomSvc.RoomSnapshot(roomID)
		if !ok {
			ctx.StatusCode(iris.StatusNotFound)
			ctx.JSON(iris.Map{
				"error": "房间不存在",
			})
			return
		}

		ctx.JSON(snap)
	}
}

// 生成指向前端入房页面的二维码，方便线下分享
func RoomQR(appState *state.AppState) iris.Handler {
	return func(ctx iris.Context) {
		roomID := ctx.Params().Get("id")

		if _, ok := appState.RoomSvc.RoomSnapshot(roomID); !ok {
			ctx.StatusCode(iris.StatusNotFound)
			ctx.JSON(iris.Map{
				"error": "房间不存在",
			})
			return
		}

		scheme := "http"
		if ctx.Request().TLS != nil {
			scheme = "https"
		}

		joinURL := scheme + "://" + ctx.Host() + "/?room=" + roomID

		png, err := qrcode.Encode(joinURL, qrcode.Medium, 320)
		if err != nil {
			ctx.StatusCode(iris.StatusInternalServerError)
			ctx.JSON(iris.Map{
				"error": "生成二维码失败",
			})
			return
		}

		ctx.ContentType("image/png")
		ctx.Write(png)
	}
}
