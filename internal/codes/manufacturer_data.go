package codes

// manufacturers maps the three-letter recorder codes of the A record to a
// manufacturer or software name.
var manufacturers = map[string]string{
	// IGC-approved, active.
	"ACT": "Aircotec",
	"AVX": "Avionix",
	"CNI": "ClearNav Instruments",
	"FIL": "Filser",
	"FLA": "Flarm (Flight Alarm)",
	"FLY": "Flytec Logger",
	"GCS": "Garrecht",
	"IMI": "IMI Gliding Equipment",
	"LGS": "Logstream",
	"LXN": "LX Navigation",
	"LXV": "LXNAV d.o.o.",
	"NAV": "Naviter",
	"NKL": "Nielsen Kellerman",
	"PFE": "PressFinish Electronics",
	"RCE": "RC Electronics",
	"SDI": "Streamline Data Instruments",
	"TRI": "Triadis Engineering GmbH",

	// IGC-approved, no longer active.
	"CAM": "Cambridge Aero Instruments",
	"DSX": "Data Swan/DSX",
	"EWA": "EW Avionics",
	"NTE": "New Technologies s.r.l.",
	"PES": "Peschges",
	"PRT": "Print Technik",
	"SCH": "Scheffel",
	"ZAN": "Zander",

	// Software, Windows.
	"XGD": "GPSDump",
	"XMP": "MaxPunkte",
	"XSY": "SeeYou (Naviter)",
	"XCG": "CompeGPS",
	"XTC": "TNComplete",
	"XPF": "ParaFlightBook",
	"XLF": "Logfly",

	// Software, iOS and macOS.
	"XSL": "SkyLogger",
	"XSK": "SkyKick",
	"XTG": "Thermgeek",
	"XFH": "FlySkyhy",
	"XBA": "FreeFlight",
	"XNA": "SeeYou Navigator",
	"XFN": "ASI FlyNet2",
	"XRF": "RogalloFlightlog",
	"XGA": "FlyGaggle",
	"XWC": "White Cloud Blue Sky",
	"XVI": "Vario One",
	"XMX": "XCMania",
	"XBM": "burnair",

	// Software, Android.
	"XAF": "AndroFlight",
	"XCT": "XCTrack",
	"XCS": "XCSoar",
	"XFL": "FlyMe",
	"XKR": "Variometer-Sky Land Tracker",
	"XGP": "Flight GpsLogger",
	"XTT": "TTLiveTrack24",
	"XAA": "AltAir",
	"XAV": "Avionicus",
	"XMT": "MyCloudbase Tracker",
	"XLM": "Loctome",
	"XRV": "Aviator",
	"XIF": "XC Guide",
	"XPD": "Gleitschirm Cockpit",
	"XFV": "thefightvario",

	// Software, Linux.
	"XLK": "LK8000",

	// Software, Symbian.
	"XFT": "AFTrack",
	"XPY": "IGCLogger for Symbian",

	// Software, browser.
	"XPG": "Gipsy",

	// Contest and livetracking servers.
	"XCF": "French C.F.D. contest Server",
	"XCO": "XCOpen Livetrack",
	"XLL": "Leonardo Livetrack24",
	"XLD": "DHV Livetracking",

	// Position recorders (WXC).
	"XFW": "flyWithCE FR300",
	"XFM": "Flymaster Live",
	"XFI": "Flymaster GPS LS",
	"XMI": "MipFly Instruments",
	"XVB": "VairBration XC",

	// Other instruments.
	"BRA": "Bräuniger Logger",
	"XSX": "Skytraxx Logger",
	"MUN": "MaxLogger",
	"CPP": "C-Pilot pro Logger",
	"XRE": "REVERSALE VGP2010",
	"XDG": "Digifly Instruments",
	"XFY": "SensBox",
	"XSR": "Syride SysPCTools",
	"XSE": "Syride SYS'Evolution",
	"XFX": "FlyNet XC vario",
	"XAH": "Ascent Vario",
	"XSF": "SeriFly",
	"XTR": "XCTracer",
	"XSB": "SkyBean vario",
	"XSD": "leGPSBip Logger",
	"XGF": "GoFly Instrument",
	"XUR": "Renschler Solario Blue",
	"XEP": "EpVario OpenSource",
	"XBF": "Blue Fly Vario",

	// Unconfirmed.
	"XCA": "XC Analytics",
}
