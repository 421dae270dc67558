package ecolor

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/brutella/hc/log"
	"github.com/gorilla/mux"

	"github.com/cloudkucooland/ecolorbridge/platform"
)

func getPlatform(w http.ResponseWriter) (*Platform, bool) {
	pc, ok := platform.GetPlatform(PlatformName)
	if !ok {
		log.Info.Print("unable to get ecolor platform, giving up")
		http.Error(w, `{ "status": "bad" }`, http.StatusInternalServerError)
		return nil, false
	}
	p, ok := pc.(*Platform)
	if !ok {
		http.Error(w, `{ "status": "bad" }`, http.StatusInternalServerError)
		return nil, false
	}
	return p, true
}

// StatusHandler lists the devices and their session state
func StatusHandler(w http.ResponseWriter, r *http.Request) {
	p, ok := getPlatform(w)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	if err := json.NewEncoder(w).Encode(p.Status()); err != nil {
		log.Info.Println(err.Error())
	}
}

// CommandHandler runs /ecolor/{guid}/{cmd}
func CommandHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	p, ok := getPlatform(w)
	if !ok {
		return
	}

	log.Info.Printf("ecolor command from [%s]: %s %s", r.RemoteAddr, vars["guid"], vars["cmd"])
	if _, ok := p.GetAccessory(vars["guid"]); !ok {
		http.Error(w, `{ "status": "unknown device" }`, http.StatusNotFound)
		return
	}
	if err := p.Command(vars["guid"], vars["cmd"]); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, ErrNoSession) || errors.Is(err, ErrNotConnected) || errors.Is(err, ErrClosed) {
			status = http.StatusServiceUnavailable
		}
		http.Error(w, fmt.Sprintf(`{ "status": %q }`, err.Error()), status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	fmt.Fprint(w, `{ "status": "OK" }`)
}
