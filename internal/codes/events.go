package codes

import (
	"regexp"
	"strings"
)

// Category is the classification of an E record code.
type Category string

const (
	CategoryStart            Category = "start"
	CategoryFinish           Category = "finish"
	CategoryTurnpoint        Category = "turnpoint"
	CategoryMotor            Category = "motor"
	CategoryFunctionOn       Category = "function_on"
	CategoryFunctionOff      Category = "function_off"
	CategoryFunctionUnknown  Category = "function_unknown"
	CategoryCameraConnect    Category = "camera_connect"
	CategoryCameraDisconnect Category = "camera_disconnect"
	CategoryGNSSConnect      Category = "gnss_connect"
	CategoryGNSSDisconnect   Category = "gnss_disconnect"
	CategoryPhoto            Category = "photo"
	CategoryAltimeter        Category = "altimeter_setting"
	CategoryDatumChange      Category = "datum_change"
	CategoryOnTask           Category = "on_task"
	CategoryLowVoltage       Category = "low_voltage"
	CategoryMacCready        Category = "maccready"
	CategoryFlapPosition     Category = "flap_position"
	CategoryGearUp           Category = "gear_up"
	CategoryGearDown         Category = "gear_down"
	CategoryOtherAircraft    Category = "other_aircraft"
	CategoryPilotEvent       Category = "pilot_event"
	CategoryOther            Category = "other"

	// No event code maps to these two. Event finalization still looks them
	// up so that a future code table can produce them.
	CategoryTakeoff Category = "takeoff"
	CategoryLanding Category = "landing"
)

type eventCode struct {
	code     string
	category Category
}

// eventCodes is ordered: prefix matching walks it top to bottom.
var eventCodes = []eventCode{
	{"STA", CategoryStart},
	{"FIN", CategoryFinish},
	{"TPC", CategoryTurnpoint},
	{"EON", CategoryMotor},
	{"EOF", CategoryMotor},
	{"EUP", CategoryMotor},
	{"EDN", CategoryMotor},
	{"BFION", CategoryFunctionOn},
	{"BFIOFF", CategoryFunctionOff},
	{"BFIUN", CategoryFunctionUnknown},
	{"CCN", CategoryCameraConnect},
	{"CDC", CategoryCameraDisconnect},
	{"GCN", CategoryGNSSConnect},
	{"GDC", CategoryGNSSDisconnect},
	{"PHO", CategoryPhoto},
	{"ATS", CategoryAltimeter},
	{"CGD", CategoryDatumChange},
	{"ONT", CategoryOnTask},
	{"LOV", CategoryLowVoltage},
	{"MAC", CategoryMacCready},
	{"FLP", CategoryFlapPosition},
	{"UNDUP", CategoryGearUp},
	{"UNDDN", CategoryGearDown},
	{"OA1", CategoryOtherAircraft},
	{"OA2", CategoryOtherAircraft},
	{"OA3", CategoryOtherAircraft},
	{"PEV", CategoryPilotEvent},
}

var eventIndex = func() map[string]Category {
	m := make(map[string]Category, len(eventCodes))
	for _, e := range eventCodes {
		m[e.code] = e.category
	}
	return m
}()

// Codes that may appear anywhere in the text rather than as a prefix.
var containsCodes = []eventCode{
	{"BFION", CategoryFunctionOn},
	{"BFIOFF", CategoryFunctionOff},
	{"BFIUN", CategoryFunctionUnknown},
	{"UNDUP", CategoryGearUp},
	{"UNDDN", CategoryGearDown},
}

var otherAircraftRe = regexp.MustCompile(`^OA[1-9]`)

var descriptions = map[Category]string{
	CategoryStart:            "Task start (STA)",
	CategoryFinish:           "Task finish (FIN)",
	CategoryTurnpoint:        "Turnpoint confirmation (TPC)",
	CategoryMotor:            "Engine on/off/up/down (EON/EOF/EUP/EDN)",
	CategoryFunctionOn:       "Function on (BFION)",
	CategoryFunctionOff:      "Function off (BFIOFF)",
	CategoryFunctionUnknown:  "Function state unknown (BFIUN)",
	CategoryCameraConnect:    "Camera connected (CCN)",
	CategoryCameraDisconnect: "Camera disconnected (CDC)",
	CategoryGNSSConnect:      "GNSS module connected (GCN)",
	CategoryGNSSDisconnect:   "GNSS module disconnected (GDC)",
	CategoryPhoto:            "Photo taken (PHO)",
	CategoryAltimeter:        "Altimeter pressure setting (ATS)",
	CategoryDatumChange:      "Geodetic datum change (CGD)",
	CategoryOnTask:           "On task, attempting the task (ONT)",
	CategoryLowVoltage:       "Low voltage (LOV)",
	CategoryMacCready:        "MacCready setting (MAC)",
	CategoryFlapPosition:     "Flap position (FLP)",
	CategoryGearUp:           "Undercarriage up (UNDUP)",
	CategoryGearDown:         "Undercarriage down (UNDDN)",
	CategoryOtherAircraft:    "Position of another aircraft (OA1/OA2/OA3)",
	CategoryPilotEvent:       "Pilot event (PEV)",
	CategoryTakeoff:          "Takeoff",
	CategoryLanding:          "Landing",
	CategoryOther:            "Other event",
}

// ClassifyEvent maps an event code to its category. Exact matches win,
// then prefixes, then codes embedded in longer text. Anything else is
// CategoryOther.
func ClassifyEvent(code string) Category {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return CategoryOther
	}

	if c, ok := eventIndex[code]; ok {
		return c
	}
	for _, e := range eventCodes {
		if strings.HasPrefix(code, e.code) {
			return e.category
		}
	}
	for _, e := range containsCodes {
		if strings.Contains(code, e.code) {
			return e.category
		}
	}
	if otherAircraftRe.MatchString(code) {
		return CategoryOtherAircraft
	}
	return CategoryOther
}

// DescribeCategory returns an English description of c.
func DescribeCategory(c Category) string {
	if d, ok := descriptions[c]; ok {
		return d
	}
	return descriptions[CategoryOther]
}

// Recognized reports whether c is anything but the fallback category.
func (c Category) Recognized() bool {
	return c != CategoryOther && c != ""
}
