package runner

// this is distinct from action because of circular imports

import (
	"github.com/brutella/hc/log"
	"github.com/cloudkucooland/ecolorbridge/action"
	"github.com/cloudkucooland/ecolorbridge/platform"
)

// RunActions runs each action in its own goroutine
func RunActions(as []*action.Action) {
	for _, a := range as {
		go runAction(a)
	}
}

func runAction(a *action.Action) {
	log.Info.Printf("running action: %+v", a)
	p, ok := platform.GetPlatform(a.TargetPlatform)
	if !ok {
		log.Info.Printf("unknown platform [%s]", a.TargetPlatform)
		return
	}
	d, ok := p.GetAccessory(a.TargetDevice)
	if !ok {
		log.Info.Printf("unknown device [%s]", a.TargetDevice)
		return
	}
	if d.Runner != nil {
		d.Runner(d, a)
	} else {
		log.Info.Printf("[%s] does not have an action runner", d.Name)
	}
}
