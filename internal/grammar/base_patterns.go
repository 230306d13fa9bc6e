package grammar

// BasePatterns are the reusable regex fragments referenced from field
// patterns with {NAME} syntax.
var BasePatterns = map[string]string{
	// Time and date.
	"TIME6": `\d{6}`, // HHMMSS
	"DATE6": `\d{6}`, // DDMMYY

	// Coordinates, IGC fixed width.
	"LAT":     `\d{7}`, // DDMMmmm
	"LAT_DIR": `[NS]`,
	"LON":     `\d{8}`, // DDDMMmmm
	"LON_DIR": `[EW]`,

	// Altitudes are five characters, negative values use four digits.
	"ALT5": `-\d{4}|\d{5}`,

	"VALIDITY":      `[AV]`,
	"TLC":           `[A-Z0-9]{3}`,           // three-letter code
	"SERIAL":        `[A-Z0-9:]{3,}`,
	"EVENT_CODE":    `[A-Z]{2,}`,
	"EXT_DECL":      `(?:\d{4}[A-Z0-9]{3})*`, // SSFFCCC repeated
	"HEADER_SRC":    `[FPO]`,                 // H record data source
	"COUNT2":        `\d{2}`,
	"DIGITS":        `\d+`,
	"SIGNED_DIGITS": `-?\d+`,
}
