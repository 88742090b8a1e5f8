package handler

import (
	"github.com/binay-das/draw-it/internal/app/store"
	"github.com/binay-das/draw-it/internal/app/ws"
	"github.com/binay-das/draw-it/internal/configs"
	"github.com/binay-das/draw-it/internal/pkg/auth"
)

// AppDeps bundles the process-wide collaborators handlers need. Both external
// collaborators (credential verification, storage) arrive as interfaces wired
// at startup; nothing here is a lazy global.
type AppDeps struct {
	Config   *configs.AppConfig
	Registry *ws.Registry
	Router   *ws.Router
	Codec    ws.Codec
	Gateway  store.Gateway
	Verifier auth.Verifier
}
