package action

// Action is run against another accessory when the source accessory reaches TriggerState
type Action struct {
	// don't need to store the source device since this is linked
	TriggerState   string `json:"TriggerState" yaml:"triggerstate"`     // On or Off
	TargetPlatform string `json:"TargetPlatform" yaml:"targetplatform"` // Ecolor
	TargetDevice   string `json:"TargetDevice" yaml:"targetdevice"`     // device GUID
	Verb           string `json:"Verb" yaml:"verb"`                     // On, Off, Toggle, SetBrightness, SetColor
	Value          string `json:"Value" yaml:"value"`                  // per-verb: "77" or "hue,saturation"
}

// see runner for running actions -- circular imports suck
