package tfhttp

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httputil"
	"time"

	"github.com/brutella/hc/log"
	"github.com/gorilla/mux"

	tfaccessory "github.com/cloudkucooland/ecolorbridge/accessory"
	"github.com/cloudkucooland/ecolorbridge/config"
	"github.com/cloudkucooland/ecolorbridge/ecolor"
	"github.com/cloudkucooland/ecolorbridge/platform"
)

// Platform is the primary handle
type Platform struct {
	srv *http.Server
}

// NewRouter has every route the control channel serves
func NewRouter(debug bool) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/", homeHandler)
	r.HandleFunc("/ecolor", ecolor.StatusHandler).Methods(http.MethodGet)
	r.HandleFunc("/ecolor/{guid}/{cmd}", ecolor.CommandHandler).Methods(http.MethodGet, http.MethodPost)
	if debug {
		r.Use(debugMW)
	}
	return r
}

// Startup is called by the platform management to get things running
func (h *Platform) Startup(c *config.Config) platform.Control {
	if c.HTTPAddress == "" {
		log.Info.Print("no HTTPAddress set, HTTP control channel disabled")
		return h
	}

	h.srv = &http.Server{
		Addr:         c.HTTPAddress,
		WriteTimeout: time.Second * 15,
		ReadTimeout:  time.Second * 15,
		IdleTimeout:  time.Second * 60,
		Handler:      NewRouter(c.LogLevel == "debug"),
	}

	go func(srv *http.Server) {
		log.Info.Printf("starting up HTTP control channel on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Info.Print(err)
		}
	}(h.srv)

	return h
}

// Shutdown is called by the platform management to shut things down
func (h *Platform) Shutdown() platform.Control {
	if h.srv == nil {
		return h
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*15)
	defer cancel()
	if err := h.srv.Shutdown(ctx); err != nil {
		log.Info.Print(err)
	}
	return h
}

func homeHandler(w http.ResponseWriter, r *http.Request) {
	log.Debug.Print("HomeHandler requested")
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	fmt.Fprint(w, "{ \"status\": \"OK\" }")
}

func debugMW(next http.Handler) http.Handler {
	return http.HandlerFunc(func(res http.ResponseWriter, req *http.Request) {
		dump, _ := httputil.DumpRequest(req, false)
		log.Debug.Print(string(dump))
		next.ServeHTTP(res, req)
	})
}

// AddAccessory - do not use, just satisfies the Platform interface
func (h *Platform) AddAccessory(a *tfaccessory.TFAccessory) {
	//
}

// GetAccessory - do not use, just satisfies the Platform interface
func (h *Platform) GetAccessory(name string) (*tfaccessory.TFAccessory, bool) {
	return nil, false
}

// Background - just satisfies the Platform interface
func (h *Platform) Background() {
	// nothing to do
}
