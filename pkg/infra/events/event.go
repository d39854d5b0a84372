package events

import (
	"fmt"

	"github.com/NeuralTrust/XSSGuard/pkg/xss"
	"github.com/avct/uasurfer"
)

const DetectionEventType = "xss_detection"

type DetectionEvent struct {
	xss.Detection

	Device  string `json:"device,omitempty"`
	Os      string `json:"os,omitempty"`
	Browser string `json:"browser,omitempty"`
}

func (e DetectionEvent) Type() string {
	return DetectionEventType
}

// NewDetectionEvent copies the detection and adds what the user agent reveals about the client.
func NewDetectionEvent(d xss.Detection) DetectionEvent {
	evt := DetectionEvent{Detection: d}
	if d.UserAgent == "" {
		return evt
	}
	ua := uasurfer.Parse(d.UserAgent)
	evt.Device = deviceName(ua.DeviceType)
	if ua.OS.Name != uasurfer.OSUnknown {
		evt.Os = fmt.Sprintf("%s %d.%d", ua.OS.Name.String(), ua.OS.Version.Major, ua.OS.Version.Minor)
	}
	if ua.Browser.Name != uasurfer.BrowserUnknown {
		evt.Browser = fmt.Sprintf("%s %d.%d", ua.Browser.Name.String(), ua.Browser.Version.Major, ua.Browser.Version.Minor)
	}
	return evt
}

func deviceName(t uasurfer.DeviceType) string {
	switch t {
	case uasurfer.DeviceComputer:
		return "Computer"
	case uasurfer.DeviceTablet:
		return "Tablet"
	case uasurfer.DevicePhone:
		return "Phone"
	case uasurfer.DeviceConsole:
		return "Console"
	case uasurfer.DeviceWearable:
		return "Wearable"
	case uasurfer.DeviceTV:
		return "TV"
	default:
		return "Unknown"
	}
}
