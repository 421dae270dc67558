package accessory

import (
	hcaccessory "github.com/brutella/hc/accessory"
	"github.com/brutella/hc/log"
	"github.com/cloudkucooland/ecolorbridge/action"
)

// TFAccessory is the accessory type, our stuff plus hc's stuff
type TFAccessory struct {
	Platform string // Ecolor
	Name     string // the name used internally, the device GUID for Ecolor
	Type     hcaccessory.AccessoryType

	Info                   hcaccessory.Info // defined at https://github.com/brutella/hc/blob/master/accessory/accessory.go
	*hcaccessory.Accessory                  // set when the device is added to HomeControl

	Device interface{}

	Actions []action.Action
	Runner  func(*TFAccessory, *action.Action)
}

// MatchActions returns a slice of actions that should be run
// jumping through hoops since including platform here would be circular
func (a TFAccessory) MatchActions(state string) []*action.Action {
	var actions []*action.Action
	for i := range a.Actions {
		if a.Actions[i].TriggerState == state {
			log.Debug.Printf("[%s] %s: %+v", a.Name, state, a.Actions[i])
			actions = append(actions, &a.Actions[i])
		}
	}
	return actions
}
