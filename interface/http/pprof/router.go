package pprof

import (
	"encoding/json"
	"github.com/gorilla/mux"
	"github.com/shimmeringbee/logwrap"
	"net/http"
	httppprof "net/http/pprof"
	runtimepprof "runtime/pprof"
	"sort"
)

type Profile struct {
	Name  string
	Count int
}

type Index struct {
	Profiles  []Profile
	Endpoints []string
}

var endpoints = []string{"cmdline", "profile", "symbol", "trace"}

// ConstructRouter serves runtime profiles, it expects to be mounted behind http.StripPrefix.
func ConstructRouter(l logwrap.Logger) http.Handler {
	pc := profileController{logger: l}

	r := mux.NewRouter()

	r.HandleFunc("/", pc.index).Methods("GET")
	r.HandleFunc("/cmdline", httppprof.Cmdline)
	r.HandleFunc("/profile", pc.logged("profile", httppprof.Profile))
	r.HandleFunc("/symbol", httppprof.Symbol)
	r.HandleFunc("/trace", pc.logged("trace", httppprof.Trace))
	r.HandleFunc("/{profile}", pc.profile).Methods("GET")

	return r
}

type profileController struct {
	logger logwrap.Logger
}

func (p *profileController) index(w http.ResponseWriter, r *http.Request) {
	idx := Index{Endpoints: endpoints}

	for _, profile := range runtimepprof.Profiles() {
		idx.Profiles = append(idx.Profiles, Profile{Name: profile.Name(), Count: profile.Count()})
	}

	sort.Slice(idx.Profiles, func(i, j int) bool {
		return idx.Profiles[i].Name < idx.Profiles[j].Name
	})

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(idx); err != nil {
		p.logger.LogError(r.Context(), "Failed to write profile index.", logwrap.Err(err))
	}
}

func (p *profileController) profile(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["profile"]

	if runtimepprof.Lookup(name) == nil {
		p.logger.LogDebug(r.Context(), "Requested unknown profile.", logwrap.Datum("profile", name))
		http.NotFound(w, r)
		return
	}

	p.logger.LogInfo(r.Context(), "Serving profile.", logwrap.Datum("profile", name))
	httppprof.Handler(name).ServeHTTP(w, r)
}

// logged wraps handlers that sample for a period, as they hold the connection open.
func (p *profileController) logged(name string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p.logger.LogInfo(r.Context(), "Sampling profile.", logwrap.Datum("profile", name), logwrap.Datum("seconds", r.URL.Query().Get("seconds")))
		h(w, r)
	}
}
