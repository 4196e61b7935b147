package v1

import (
	"github.com/gorilla/mux"
	"github.com/shimmeringbee/logwrap"
	"github.com/shimmeringbee/panel/state"
	"net/http"
)

func ConstructRouter(controller Controller, eventbus state.EventSubscriber, l logwrap.Logger) http.Handler {
	r := mux.NewRouter()

	gc := gatewayController{controller: controller}
	ec := equipmentController{controller: controller, logger: l}
	wc := eventsController{controller: controller, eventbus: eventbus, logger: l}

	r.HandleFunc("/gateway", gc.getGateway).Methods("GET")

	r.HandleFunc("/equipment", ec.listEquipment).Methods("GET")
	r.HandleFunc("/equipment/{identifier}", ec.getEquipment).Methods("GET")
	r.HandleFunc("/equipment/{identifier}/power/{state}", ec.setPower).Methods("POST")

	r.HandleFunc("/websocket", wc.serveWebsocket).Methods("GET")

	return r
}
