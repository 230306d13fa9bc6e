package igc

import "time"

// Identification is the A record.
type Identification struct {
	Line             int    `json:"line"`
	ManufacturerID   string `json:"manufacturer_id"`
	ManufacturerName string `json:"manufacturer_name,omitempty"`
	SerialNumber     string `json:"serial_number,omitempty"`
	AdditionalData   string `json:"additional_data,omitempty"`
	Approved         bool   `json:"approved_manufacturer"`
}

// Header is the merged view of every H record. Empty strings and nil
// pointers mean the field was never seen.
type Header struct {
	Date             string `json:"date,omitempty"` // YYYY-MM-DD
	FlightNumber     string `json:"flight_number,omitempty"`
	Pilot            string `json:"pilot,omitempty"`
	SecondPilot      string `json:"second_pilot,omitempty"`
	GliderType       string `json:"glider_type,omitempty"`
	GliderID         string `json:"glider_id,omitempty"`
	FirmwareVersion  string `json:"firmware_version,omitempty"`
	HardwareVersion  string `json:"hardware_version,omitempty"`
	LoggerType       string `json:"logger_type,omitempty"`
	GPSReceiver      string `json:"gps_receiver,omitempty"`
	Accuracy         *int   `json:"accuracy,omitempty"`
	PressureSensor   string `json:"pressure_sensor,omitempty"`
	CompetitionID    string `json:"competition_id,omitempty"`
	CompetitionClass string `json:"competition_class,omitempty"`
	TimeZone         string `json:"time_zone,omitempty"`
	Site             string `json:"site,omitempty"`
}

// Merge copies every set field of o into h. Unset fields of o never clear h.
func (h *Header) Merge(o Header) {
	mergeString(&h.Date, o.Date)
	mergeString(&h.FlightNumber, o.FlightNumber)
	mergeString(&h.Pilot, o.Pilot)
	mergeString(&h.SecondPilot, o.SecondPilot)
	mergeString(&h.GliderType, o.GliderType)
	mergeString(&h.GliderID, o.GliderID)
	mergeString(&h.FirmwareVersion, o.FirmwareVersion)
	mergeString(&h.HardwareVersion, o.HardwareVersion)
	mergeString(&h.LoggerType, o.LoggerType)
	mergeString(&h.GPSReceiver, o.GPSReceiver)
	mergeString(&h.PressureSensor, o.PressureSensor)
	mergeString(&h.CompetitionID, o.CompetitionID)
	mergeString(&h.CompetitionClass, o.CompetitionClass)
	mergeString(&h.TimeZone, o.TimeZone)
	mergeString(&h.Site, o.Site)
	if o.Accuracy != nil {
		v := *o.Accuracy
		h.Accuracy = &v
	}
}

func mergeString(dst *string, src string) {
	if src != "" {
		*dst = src
	}
}

// FlightDate parses Date. The boolean is false when no date header was seen.
func (h *Header) FlightDate() (time.Time, bool) {
	if h == nil || h.Date == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.DateOnly, h.Date)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Extension is a byte range declared by an I or J record. Start and End are
// 1-based and inclusive, as written in the log.
type Extension struct {
	Code  string `json:"code"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// ExtensionDecl is an I or J record.
type ExtensionDecl struct {
	Line       int         `json:"line"`
	Kind       Kind        `json:"-"`
	Extensions []Extension `json:"extensions"`
}

// Fix is a B record plus the values derived when it was accepted.
type Fix struct {
	Line             int               `json:"line"`
	Time             string            `json:"time"` // HH:MM:SS UTC
	SecondsOfDay     int               `json:"-"`
	Timestamp        time.Time         `json:"timestamp"`
	Latitude         float64           `json:"latitude"`
	Longitude        float64           `json:"longitude"`
	Validity         string            `json:"validity"`
	Valid            bool              `json:"valid"`
	PressureAltitude int               `json:"pressure_altitude"`
	GNSSAltitude     int               `json:"gnss_altitude"`
	QFE              int               `json:"qfe"`
	FixAccuracy      *int              `json:"fix_accuracy,omitempty"`
	Satellites       *int              `json:"satellites,omitempty"`
	EngineNoise      *int              `json:"engine_noise,omitempty"`
	Extensions       map[string]string `json:"extensions,omitempty"`
	Distance         float64           `json:"distance"` // metres from the previous accepted fix
	Elapsed          int               `json:"elapsed"`  // seconds from the previous accepted fix
	Speed            float64           `json:"speed"`    // km/h
	Raw              string            `json:"raw,omitempty"`
}

// Declaration is the first C record of a task.
type Declaration struct {
	Line int    `json:"line"`
	Date string `json:"date"` // YYYY-MM-DD
	Time string `json:"time"` // HH:MM:SS
	Data string `json:"data,omitempty"`
}

// Waypoint is a C record carrying a position.
type Waypoint struct {
	Line          int     `json:"line"`
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
	LatitudeRaw   string  `json:"latitude_raw"`
	LongitudeRaw  string  `json:"longitude_raw"`
	Name          string  `json:"name,omitempty"`
	IsStartFinish bool    `json:"is_start_finish"`
}

// Task is the declared task. Declared holds every waypoint line in order;
// Waypoints holds only the usable ones (sentinels removed).
type Task struct {
	Declaration  *Declaration `json:"declaration,omitempty"`
	Declared     []Waypoint   `json:"declared"`
	Waypoints    []Waypoint   `json:"waypoints"`
	Start        *Waypoint    `json:"start,omitempty"`
	Turnpoints   []Waypoint   `json:"turnpoints"`
	Finish       *Waypoint    `json:"finish,omitempty"`
	Distance     *float64     `json:"distance,omitempty"` // metres
	DistanceKm   *float64     `json:"distance_km,omitempty"`
	DistanceText string       `json:"distance_text,omitempty"`
}

// Event is an E record.
type Event struct {
	Line         int        `json:"line"`
	Time         string     `json:"time"` // HH:MM:SS
	SecondsOfDay int        `json:"-"`
	Code         string     `json:"code"`
	Data         string     `json:"data,omitempty"`
	Category     string     `json:"category"`
	Description  string     `json:"description"`
	Recognized   bool       `json:"recognized"`
	Timestamp    *time.Time `json:"timestamp,omitempty"`
}

// EventGroup collects the events of one category.
type EventGroup struct {
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Count       int     `json:"count"`
	Events      []Event `json:"events"`
}

// EventSummary is filled by event finalization.
type EventSummary struct {
	FirstStart   *Event       `json:"first_start,omitempty"`
	LastFinish   *Event       `json:"last_finish,omitempty"`
	FirstTakeoff *Event       `json:"first_takeoff,omitempty"`
	Groups       []EventGroup `json:"groups"`
}

// DataRecord is a K or F record with its time of day. Extensions holds the
// K record values sliced by the latest J record.
type DataRecord struct {
	Line       int               `json:"line"`
	Kind       Kind              `json:"-"`
	Time       string            `json:"time,omitempty"`
	Data       string            `json:"data"`
	Extensions map[string]string `json:"extensions,omitempty"`
}

// FixRef points at an accepted fix.
type FixRef struct {
	Index     int       `json:"index"`
	Line      int       `json:"line"`
	Timestamp time.Time `json:"timestamp"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
}

// TurnpointCheck is the outcome for one task waypoint.
type TurnpointCheck struct {
	Waypoint  Waypoint `json:"waypoint"`
	Validated bool     `json:"validated"`
	Fix       *FixRef  `json:"fix,omitempty"`
	Distance  float64  `json:"distance"` // match distance, or closest approach when missed
}

// TurnpointValidation compares the task waypoints against the track.
type TurnpointValidation struct {
	Radius    float64          `json:"radius"`
	Validated int              `json:"validated"`
	Missed    int              `json:"missed"`
	Complete  bool             `json:"complete"`
	Checks    []TurnpointCheck `json:"checks"`
}

// Bounds is the bounding box of the accepted track.
type Bounds struct {
	MinLatitude  float64 `json:"min_latitude"`
	MinLongitude float64 `json:"min_longitude"`
	MaxLatitude  float64 `json:"max_latitude"`
	MaxLongitude float64 `json:"max_longitude"`
}

// Statistics holds values derived from the accepted fixes.
type Statistics struct {
	FixCount          int        `json:"fix_count"`
	RejectedFixes     int        `json:"rejected_fixes"`
	MinQNH            int        `json:"min_altitude_qnh"`
	MaxQNH            int        `json:"max_altitude_qnh"`
	MinQFE            int        `json:"min_altitude_qfe"`
	MaxQFE            int        `json:"max_altitude_qfe"`
	MinGPS            int        `json:"min_altitude_gps"`
	MaxGPS            int        `json:"max_altitude_gps"`
	TotalDistance     float64    `json:"total_distance"` // metres
	TotalDistanceKm   float64    `json:"total_distance_km"`
	TotalDistanceText string     `json:"total_distance_text"`
	TotalTime         int        `json:"total_time"` // seconds
	Duration          int        `json:"duration"`   // seconds
	DurationText      string     `json:"duration_text"`
	AverageSpeed      float64    `json:"average_speed"` // km/h
	AverageSpeedText  string     `json:"average_speed_text"`
	MaxSpeed          float64    `json:"max_speed"` // km/h
	MaxSpeedText      string     `json:"max_speed_text"`
	Start             *time.Time `json:"start,omitempty"`
	End               *time.Time `json:"end,omitempty"`
	Bounds            *Bounds    `json:"bounds,omitempty"`
}

// Flight is the aggregate built from one log.
type Flight struct {
	Identification *Identification      `json:"identification"`
	Header         *Header              `json:"header,omitempty"`
	Task           *Task                `json:"task,omitempty"`
	Fixes          []Fix                `json:"fixes"`
	Events         []Event              `json:"events"`
	FixExtensions  []ExtensionDecl      `json:"fix_extensions,omitempty"`
	DataExtensions []ExtensionDecl      `json:"data_extension_declarations,omitempty"`
	DataRecords    []DataRecord         `json:"data_records,omitempty"`
	Constellations []DataRecord         `json:"satellite_constellations,omitempty"`
	EventSummary   *EventSummary        `json:"event_summary,omitempty"`
	Turnpoints     *TurnpointValidation `json:"turnpoint_validation,omitempty"`
	Statistics     *Statistics          `json:"statistics,omitempty"`
	Lines          int                  `json:"valid_lines"`
}

// Metadata is the projection of the single-valued slots of a Flight.
type Metadata struct {
	Identification *Identification `json:"identification"`
	Header         *Header         `json:"header,omitempty"`
	Task           *Task           `json:"task,omitempty"`
	Statistics     *Statistics     `json:"statistics,omitempty"`
}

// Metadata returns the Unique and MergedObject slots without the sequences.
func (f *Flight) Metadata() Metadata {
	return Metadata{
		Identification: f.Identification,
		Header:         f.Header,
		Task:           f.Task,
		Statistics:     f.Statistics,
	}
}

// Date returns the flight date from the header, falling back to the date of
// the first fix.
func (f *Flight) Date() (time.Time, bool) {
	if d, ok := f.Header.FlightDate(); ok {
		return d, true
	}
	if len(f.Fixes) > 0 {
		ts := f.Fixes[0].Timestamp
		return time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC), true
	}
	return time.Time{}, false
}
