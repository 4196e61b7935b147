package pprof

import (
	"encoding/json"
	"github.com/shimmeringbee/logwrap"
	"github.com/shimmeringbee/logwrap/impl/discard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"net/http"
	"net/http/httptest"
	"testing"
)

func serve(path string) *httptest.ResponseRecorder {
	router := http.StripPrefix("/debug/pprof", ConstructRouter(logwrap.New(discard.Discard())))

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))

	return rr
}

func TestConstructRouter(t *testing.T) {
	t.Run("lists the available profiles and endpoints at the root", func(t *testing.T) {
		rr := serve("/debug/pprof/")
		require.Equal(t, http.StatusOK, rr.Code)

		idx := Index{}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &idx))

		var names []string
		for _, p := range idx.Profiles {
			names = append(names, p.Name)
		}

		assert.Contains(t, names, "goroutine")
		assert.Contains(t, names, "heap")
		assert.IsIncreasing(t, names)
		assert.Equal(t, endpoints, idx.Endpoints)
	})

	t.Run("serves a named runtime profile", func(t *testing.T) {
		rr := serve("/debug/pprof/goroutine?debug=1")

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "goroutine")
	})

	t.Run("returns not found for an unknown profile", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, serve("/debug/pprof/nonsense").Code)
	})

	t.Run("serves the command line of the process", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, serve("/debug/pprof/cmdline").Code)
	})
}
