package v1

import (
	"net/http"
)

type GatewayStatus struct {
	TransportConnected bool
	GatewayOnline      bool
}

type gatewayController struct {
	controller Controller
}

func (g *gatewayController) getGateway(w http.ResponseWriter, r *http.Request) {
	snap, err := g.controller.Snapshot(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}

	writeJSON(w, http.StatusOK, GatewayStatus{
		TransportConnected: snap.TransportConnected,
		GatewayOnline:      snap.GatewayOnline,
	})
}
