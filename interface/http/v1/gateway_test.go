package v1

import (
	"encoding/json"
	"github.com/gorilla/mux"
	"github.com/shimmeringbee/panel/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"net/http"
	"net/http/httptest"
	"testing"
)

func Test_gatewayController_getGateway(t *testing.T) {
	t.Run("returns transport and gateway connectivity", func(t *testing.T) {
		mc := &mockController{}
		defer mc.AssertExpectations(t)

		mc.On("Snapshot", mock.Anything).Return(state.Snapshot{TransportConnected: true, GatewayOnline: false}, nil)

		controller := gatewayController{controller: mc}

		req, err := http.NewRequest("GET", "/gateway", nil)
		if err != nil {
			t.Fatal(err)
		}

		rr := httptest.NewRecorder()

		router := mux.NewRouter()
		router.HandleFunc("/gateway", controller.getGateway)
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		actual := GatewayStatus{}
		err = json.Unmarshal(rr.Body.Bytes(), &actual)
		assert.NoError(t, err)

		assert.Equal(t, GatewayStatus{TransportConnected: true}, actual)
	})

	t.Run("returns 503 if the engine cannot answer", func(t *testing.T) {
		mc := &mockController{}
		defer mc.AssertExpectations(t)

		mc.On("Snapshot", mock.Anything).Return(state.Snapshot{}, state.EngineStopped)

		controller := gatewayController{controller: mc}

		req, err := http.NewRequest("GET", "/gateway", nil)
		if err != nil {
			t.Fatal(err)
		}

		rr := httptest.NewRecorder()

		router := mux.NewRouter()
		router.HandleFunc("/gateway", controller.getGateway)
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	})
}
