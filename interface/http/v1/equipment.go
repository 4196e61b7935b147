package v1

import (
	"errors"
	"github.com/gorilla/mux"
	"github.com/shimmeringbee/logwrap"
	"github.com/shimmeringbee/panel/equipment"
	"github.com/shimmeringbee/panel/state"
	"net/http"
	"strings"
)

type equipmentController struct {
	controller Controller
	logger     logwrap.Logger
}

func (e *equipmentController) listEquipment(w http.ResponseWriter, r *http.Request) {
	snap, err := e.controller.Snapshot(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}

	writeJSON(w, http.StatusOK, snap.Equipment)
}

func (e *equipmentController) getEquipment(w http.ResponseWriter, r *http.Request) {
	params := mux.Vars(r)

	id, ok := params["identifier"]
	if !ok {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	snap, err := e.controller.Snapshot(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}

	es, found := snap.Find(id)
	if !found {
		http.NotFound(w, r)
		return
	}

	writeJSON(w, http.StatusOK, es)
}

func (e *equipmentController) setPower(w http.ResponseWriter, r *http.Request) {
	params := mux.Vars(r)

	id, ok := params["identifier"]
	if !ok {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	desired, err := equipment.ParsePowerState(strings.ToUpper(params["state"]))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	es, err := e.controller.RequestPower(r.Context(), id, desired)

	switch {
	case err == nil:
		writeJSON(w, http.StatusAccepted, es)
	case errors.Is(err, state.UnknownEquipment):
		http.NotFound(w, r)
	case errors.Is(err, state.GatewayOffline), errors.Is(err, state.EquipmentUnreachable):
		writeError(w, http.StatusConflict, err)
	default:
		e.logger.LogError(r.Context(), "Failed to request power change.", logwrap.Datum("equipment", id), logwrap.Err(err))
		writeError(w, http.StatusServiceUnavailable, err)
	}
}
