package flight

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"igc_parser/internal/geodesy"
	"igc_parser/internal/igc"
)

// metresPerDegree is the length of one degree of latitude on the sphere
// used by geodesy.Distance.
var metresPerDegree = geodesy.EarthRadius * math.Pi / 180

func coords(lat, lon float64) string {
	return geodesy.DecimalToSexagesimal(lat, false).IGC() + geodesy.DecimalToSexagesimal(lon, true).IGC()
}

func bRecord(clock string, lat, lon float64, pressure, gnss int) string {
	return fmt.Sprintf("B%s%sA%05d%05d", clock, coords(lat, lon), pressure, gnss)
}

func cRecord(lat, lon float64, name string) string {
	return "C" + coords(lat, lon) + name
}

func parseLog(t *testing.T, lines ...string) (*igc.Flight, error) {
	t.Helper()
	return Parse(context.Background(), []byte(strings.Join(lines, "\n")), Options{})
}

func mustParse(t *testing.T, lines ...string) *igc.Flight {
	t.Helper()
	f, err := parseLog(t, lines...)
	require.NoError(t, err)
	require.NotNil(t, f)
	return f
}

func TestIdentificationScenario(t *testing.T) {
	f := mustParse(t, "AXXX123-ABC", "HFDTE160701")

	require.NotNil(t, f.Identification)
	assert.Equal(t, "XXX", f.Identification.ManufacturerID)
	assert.Equal(t, "123", f.Identification.SerialNumber)
	assert.Equal(t, "ABC", f.Identification.AdditionalData)
	assert.False(t, f.Identification.Approved)
	assert.Equal(t, 2, f.Lines)
}

func TestSpeedCeiling(t *testing.T) {
	lat0, lon0 := 46.0, 6.0
	lat1 := lat0 + 1000/metresPerDegree

	f := mustParse(t,
		"AXXX123-ABC",
		"HFDTE160701",
		bRecord("100000", lat0, lon0, 1000, 1010),
		bRecord("101000", lat1, lon0, 1100, 1110),
		bRecord("101001", lat1+8.9, lon0, 1100, 1110), // about 990 km in one second
	)

	require.Len(t, f.Fixes, 2)
	assert.InDelta(t, 1000, f.Fixes[1].Distance, 5)
	assert.Equal(t, 600, f.Fixes[1].Elapsed)
	assert.InDelta(t, 6.0, f.Fixes[1].Speed, 0.05)

	require.NotNil(t, f.Statistics)
	assert.Equal(t, 1, f.Statistics.RejectedFixes)
	assert.Equal(t, 2, f.Statistics.FixCount)
	assert.InDelta(t, 1000, f.Statistics.TotalDistance, 5)
	assert.Equal(t, 600, f.Statistics.TotalTime)
	assert.InDelta(t, 6.0, f.Statistics.MaxSpeed, 0.05)
}

func TestFixCountsMatchBRecords(t *testing.T) {
	lines := []string{"AXXX123-ABC", "HFDTE160701"}
	bLines := 0
	for i := 0; i < 20; i++ {
		lat := 46.0 + float64(i)*0.001
		if i%5 == 4 {
			lat += 5 // far jump, rejected
		}
		lines = append(lines, bRecord(fmt.Sprintf("1200%02d", i*2), lat, 6.0, 1000+i, 1000+i))
		bLines++
	}
	f := mustParse(t, lines...)

	assert.Equal(t, bLines, len(f.Fixes)+f.Statistics.RejectedFixes)
	for i := 1; i < len(f.Fixes); i++ {
		assert.False(t, f.Fixes[i].Timestamp.Before(f.Fixes[i-1].Timestamp), "fix %d goes back in time", i)
		assert.LessOrEqual(t, f.Fixes[i].Speed, DefaultMaxSpeed)
	}
}

func TestFixDerivedValues(t *testing.T) {
	f := mustParse(t,
		"AXXX123-ABC",
		"HFDTE160701",
		bRecord("100000", 46.0, 6.0, 500, 520),
		bRecord("100100", 46.001, 6.0, 650, 660),
		bRecord("100200", 46.002, 6.0, 420, 430),
	)

	require.Len(t, f.Fixes, 3)
	assert.Equal(t, time.Date(2001, 7, 16, 10, 0, 0, 0, time.UTC), f.Fixes[0].Timestamp)
	assert.Equal(t, []int{0, 150, -80}, []int{f.Fixes[0].QFE, f.Fixes[1].QFE, f.Fixes[2].QFE})
	assert.Empty(t, f.Fixes[0].Raw)

	s := f.Statistics
	assert.Equal(t, 420, s.MinQNH)
	assert.Equal(t, 650, s.MaxQNH)
	assert.Equal(t, -80, s.MinQFE)
	assert.Equal(t, 150, s.MaxQFE)
	assert.Equal(t, 430, s.MinGPS)
	assert.Equal(t, 660, s.MaxGPS)
	assert.Equal(t, 120, s.Duration)
	assert.Equal(t, "00:02:00", s.DurationText)
	require.NotNil(t, s.Bounds)
	assert.InDelta(t, 46.0, s.Bounds.MinLatitude, 1e-6)
	assert.InDelta(t, 46.002, s.Bounds.MaxLatitude, 1e-6)
	assert.InDelta(t, 6.0, s.Bounds.MinLongitude, 1e-6)
}

func TestWithRawKeepsSource(t *testing.T) {
	line := bRecord("100000", 46.0, 6.0, 500, 520)
	f, err := Parse(context.Background(), []byte(line), Options{WithRaw: true})
	require.NoError(t, err)
	assert.Equal(t, line, f.Fixes[0].Raw)
}

func TestMidnightRollover(t *testing.T) {
	f := mustParse(t,
		"HFDTE160701",
		bRecord("235950", 46.0, 6.0, 500, 500),
		bRecord("000010", 46.0005, 6.0, 500, 500),
	)

	require.Len(t, f.Fixes, 2)
	assert.Equal(t, time.Date(2001, 7, 17, 0, 0, 10, 0, time.UTC), f.Fixes[1].Timestamp)
	assert.Equal(t, 20, f.Fixes[1].Elapsed)
}

func TestBackwardsFixRejected(t *testing.T) {
	f := mustParse(t,
		"HFDTE160701",
		bRecord("120000", 46.0, 6.0, 500, 500),
		bRecord("115900", 46.0, 6.0, 500, 500),
		bRecord("120100", 46.0, 6.0, 500, 500),
	)

	require.Len(t, f.Fixes, 2)
	assert.Equal(t, 1, f.Statistics.RejectedFixes)
	assert.Equal(t, 60, f.Fixes[1].Elapsed)
}

func TestFallbackDate(t *testing.T) {
	line := bRecord("080000", 46.0, 6.0, 500, 500)

	f, err := Parse(context.Background(), []byte(line), Options{FallbackDate: time.Date(2024, 5, 1, 13, 0, 0, 0, time.UTC)})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC), f.Fixes[0].Timestamp)

	f = mustParse(t, line)
	assert.Equal(t, time.Date(1970, 1, 1, 8, 0, 0, 0, time.UTC), f.Fixes[0].Timestamp)
}

func TestDuplicateIdentification(t *testing.T) {
	_, err := parseLog(t, "AXXX123-ABC", "HFDTE160701", "AXXX456")

	var se *igc.StructuralError
	require.True(t, errors.As(err, &se), "error = %v", err)
	assert.Equal(t, 3, se.Line)
	assert.Equal(t, 1, se.PreviousLine)
	assert.Contains(t, se.Error(), "line 3")
	assert.Contains(t, se.Error(), "line 1")
}

func TestIdentificationMustBeFirst(t *testing.T) {
	_, err := parseLog(t, "HFDTE160701", "AXXX123-ABC")

	var se *igc.StructuralError
	require.True(t, errors.As(err, &se), "error = %v", err)
	assert.Equal(t, 2, se.Line)
}

func TestUnsupportedKind(t *testing.T) {
	_, err := parseLog(t, "AXXX123-ABC", "Zsomething")

	var se *igc.StructuralError
	require.True(t, errors.As(err, &se), "error = %v", err)
	assert.Equal(t, 2, se.Line)
	assert.Contains(t, se.Error(), "not supported")
}

func TestValidationErrorAborts(t *testing.T) {
	f, err := parseLog(t,
		"AXXX123-ABC",
		bRecord("100000", 46.0, 6.0, 500, 500),
		"B1001004600000N00600000EX0050000500",
	)

	assert.Nil(t, f)
	var fe *igc.FieldValidationError
	require.True(t, errors.As(err, &fe), "error = %v", err)
	assert.Equal(t, 3, fe.Line)
	assert.Equal(t, "validity", fe.Field)
	assert.Equal(t, "X", fe.Value)
}

func TestEmptyInput(t *testing.T) {
	for name, data := range map[string]string{
		"nothing":     "",
		"blank lines": "\n\n   \n\r\n",
		"ignored":     "GABCDEF\nLXXXcomment\n",
	} {
		t.Run(name, func(t *testing.T) {
			f, err := Parse(context.Background(), []byte(data), Options{})
			assert.Nil(t, f)
			assert.True(t, errors.Is(err, igc.ErrEmptyInput), "error = %v", err)
			var ee *igc.EmptyInputError
			assert.True(t, errors.As(err, &ee))
		})
	}
}

func TestBlankLinesKeepPhysicalNumbers(t *testing.T) {
	_, err := Parse(context.Background(), []byte("AXXX123\n\n\nZ"), Options{})

	var se *igc.StructuralError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 4, se.Line)
}

func TestIgnoredKindsAdvancePrevious(t *testing.T) {
	// A after an L line is no longer the first record.
	_, err := parseLog(t, "LXXXcomment", "AXXX123")

	var se *igc.StructuralError
	require.True(t, errors.As(err, &se), "error = %v", err)
	assert.Equal(t, 2, se.Line)
}

func TestHeaderMerge(t *testing.T) {
	f := mustParse(t,
		"AXXX123",
		"HFDTE160701",
		"HFPLTPILOTINCHARGE:Jane Doe",
		"HFGIDGLIDERID:D-1234",
		"HFPLTPILOTINCHARGE:",
		"HFFXA035",
	)

	require.NotNil(t, f.Header)
	assert.Equal(t, "2001-07-16", f.Header.Date)
	assert.Equal(t, "Jane Doe", f.Header.Pilot)
	assert.Equal(t, "D-1234", f.Header.GliderID)
	require.NotNil(t, f.Header.Accuracy)
	assert.Equal(t, 35, *f.Header.Accuracy)

	md := f.Metadata()
	assert.Same(t, f.Header, md.Header)
	assert.Same(t, f.Identification, md.Identification)
}

func TestTaskWithSentinels(t *testing.T) {
	f := mustParse(t,
		"AXXX123",
		"HFDTE160701",
		"C160701120000000000000004",
		"C0000000N00000000ETAKEOFF",
		cRecord(46.0, 6.0, "TP1"),
		cRecord(46.5, 6.5, "TP2"),
		"C0000000N00000000ELANDING",
	)

	task := f.Task
	require.NotNil(t, task)
	require.NotNil(t, task.Declaration)
	assert.Equal(t, "2001-07-16", task.Declaration.Date)
	assert.Len(t, task.Declared, 4)
	require.Len(t, task.Waypoints, 2)
	require.Len(t, task.Turnpoints, 2)
	assert.Equal(t, "TP1", task.Turnpoints[0].Name)
	assert.Equal(t, "TP2", task.Turnpoints[1].Name)

	require.NotNil(t, task.Start)
	assert.True(t, task.Start.IsStartFinish)
	require.NotNil(t, task.Finish)
	assert.True(t, task.Finish.IsStartFinish)

	a, b := task.Waypoints[0], task.Waypoints[1]
	want := geodesy.Distance(a.Latitude, a.Longitude, b.Latitude, b.Longitude)
	require.NotNil(t, task.Distance)
	assert.InDelta(t, want, *task.Distance, 1e-6)
	require.NotNil(t, task.DistanceKm)
	assert.InDelta(t, math.Round(want/10)/100, *task.DistanceKm, 1e-9)
	assert.NotEmpty(t, task.DistanceText)

	// No fixes, so no automatic validation.
	assert.Nil(t, f.Turnpoints)
}

func TestTaskDistanceSumsLegs(t *testing.T) {
	pts := [][2]float64{{46.0, 6.0}, {46.2, 6.1}, {46.1, 6.4}, {46.0, 6.0}}
	lines := []string{"C160701120000000000000002"}
	for i, p := range pts {
		lines = append(lines, cRecord(p[0], p[1], fmt.Sprintf("WP%d", i)))
	}
	f := mustParse(t, lines...)

	var want float64
	wps := f.Task.Waypoints
	for i := 1; i < len(wps); i++ {
		want += geodesy.Distance(wps[i-1].Latitude, wps[i-1].Longitude, wps[i].Latitude, wps[i].Longitude)
	}
	require.NotNil(t, f.Task.Distance)
	assert.InDelta(t, want, *f.Task.Distance, 1e-6)
	assert.Equal(t, "WP0", f.Task.Start.Name)
	assert.Equal(t, "WP3", f.Task.Finish.Name)
	assert.Len(t, f.Task.Turnpoints, 2)
}

func TestTaskDistanceAbsent(t *testing.T) {
	f := mustParse(t,
		"C160701120000000000000001",
		"C0000000N00000000ETAKEOFF",
		cRecord(46.0, 6.0, "ONLY"),
	)
	assert.Nil(t, f.Task.Distance)
	assert.Nil(t, f.Task.DistanceKm)
	assert.Empty(t, f.Task.Turnpoints)
}

func TestTurnpointValidation(t *testing.T) {
	wp1 := [2]float64{46.0, 6.0}
	wp2 := [2]float64{46.05, 6.0}
	wp3 := [2]float64{46.10, 6.0}

	lines := []string{
		"AXXX123", "HFDTE160701",
		"C160701120000000000000003",
		cRecord(wp1[0], wp1[1], "A"),
		cRecord(wp2[0], wp2[1], "B"),
		cRecord(wp3[0], wp3[1], "C"),
		// Passes wp2 first: must not validate it before wp1.
		bRecord("100000", wp2[0], wp2[1], 1000, 1000),
		bRecord("100500", wp1[0], wp1[1], 1000, 1000),
		bRecord("101000", wp2[0]+0.001, wp2[1], 1000, 1000),
		bRecord("101500", wp2[0]+0.03, wp2[1], 1000, 1000),
	}
	f := mustParse(t, lines...)

	v := f.Turnpoints
	require.NotNil(t, v)
	assert.Equal(t, DefaultTurnpointRadius, v.Radius)
	assert.Equal(t, 2, v.Validated)
	assert.Equal(t, 1, v.Missed)
	assert.False(t, v.Complete)

	require.Len(t, v.Checks, 3)
	assert.Equal(t, 1, v.Checks[0].Fix.Index)
	assert.Equal(t, 2, v.Checks[1].Fix.Index)
	assert.False(t, v.Checks[2].Validated)
	require.NotNil(t, v.Checks[2].Fix)
	assert.Equal(t, 3, v.Checks[2].Fix.Index)
	assert.InDelta(t, 0.02*metresPerDegree, v.Checks[2].Distance, 5)

	// A wider radius reaches the last waypoint and replaces the result.
	wide := ValidateTurnpoints(f, 3000)
	assert.Same(t, wide, f.Turnpoints)
	assert.Equal(t, 3, wide.Validated)
	assert.True(t, wide.Complete)

	seen := map[int]bool{}
	for _, c := range wide.Checks {
		require.NotNil(t, c.Fix)
		assert.False(t, seen[c.Fix.Index], "fix %d used twice", c.Fix.Index)
		seen[c.Fix.Index] = true
	}
}

func TestEventFinalize(t *testing.T) {
	f := mustParse(t,
		"AXXX123",
		"HFDTE160701",
		bRecord("100000", 46.0, 6.0, 500, 500),
		"E110000FIN",
		"E100500STA",
		"E100700PEV",
		"E100600STA",
		"E104500TPC",
		"E120000FIN",
	)

	require.Len(t, f.Events, 6)
	for i := 1; i < len(f.Events); i++ {
		require.NotNil(t, f.Events[i].Timestamp)
		assert.False(t, f.Events[i].Timestamp.Before(*f.Events[i-1].Timestamp))
	}
	assert.Equal(t, time.Date(2001, 7, 16, 10, 5, 0, 0, time.UTC), *f.Events[0].Timestamp)

	s := f.EventSummary
	require.NotNil(t, s)
	require.NotNil(t, s.FirstStart)
	assert.Equal(t, "10:05:00", s.FirstStart.Time)
	require.NotNil(t, s.LastFinish)
	assert.Equal(t, "12:00:00", s.LastFinish.Time)
	assert.Nil(t, s.FirstTakeoff)

	counts := map[string]int{}
	for _, g := range s.Groups {
		counts[g.Category] = g.Count
		assert.Len(t, g.Events, g.Count)
		assert.NotEmpty(t, g.Description)
	}
	assert.Equal(t, map[string]int{"start": 2, "pilot_event": 1, "turnpoint": 1, "finish": 2}, counts)
}

func TestEventsFollowFixDateWhenHeaderIsLate(t *testing.T) {
	f := mustParse(t,
		"AXXX123",
		bRecord("100000", 46.0, 6.0, 500, 500),
		"E100500PEV",
		"HFDTE160701",
	)

	require.Len(t, f.Fixes, 1)
	fixDay := f.Fixes[0].Timestamp
	require.NotNil(t, f.Events[0].Timestamp)
	assert.Equal(t, fixDay.Add(5*time.Minute), *f.Events[0].Timestamp)
	assert.Equal(t, "2001-07-16", f.Header.Date)
}

func TestEventsUseHeaderDateWithoutFixes(t *testing.T) {
	f := mustParse(t, "AXXX123", "HFDTE160701", "E100500PEV")

	require.NotNil(t, f.Events[0].Timestamp)
	assert.Equal(t, time.Date(2001, 7, 16, 10, 5, 0, 0, time.UTC), *f.Events[0].Timestamp)
}

func TestNonNumericFixTrailer(t *testing.T) {
	f := mustParse(t,
		"AXXX123-ABC",
		"HFDTE160701",
		bRecord("100000", 46.0, 6.0, 500, 500)+"ABC",
	)

	require.Len(t, f.Fixes, 1)
	assert.Nil(t, f.Fixes[0].FixAccuracy)
	assert.Nil(t, f.Fixes[0].Satellites)
	assert.Nil(t, f.Fixes[0].EngineNoise)
}

func TestUnknownHeaderDate(t *testing.T) {
	f := mustParse(t,
		"AXXX123-ABC",
		"HFDTE000000",
		bRecord("100000", 46.0, 6.0, 500, 500),
	)

	_, ok := f.Header.FlightDate()
	assert.False(t, ok)
	assert.Equal(t, time.Date(1970, 1, 1, 10, 0, 0, 0, time.UTC), f.Fixes[0].Timestamp)
}

func TestEventsWithoutDate(t *testing.T) {
	f := mustParse(t, "E100500STA", "E090000PEV")

	assert.Nil(t, f.Events[0].Timestamp)
	assert.Equal(t, "10:05:00", f.Events[0].Time)
	assert.Nil(t, f.Statistics)
}

func TestExtensionsFollowDeclarations(t *testing.T) {
	f := mustParse(t,
		"AXXX123",
		"HFDTE160701",
		"I023638FXA3940SIU",
		"J010812HDT",
		bRecord("100000", 46.0, 6.0, 500, 500)+"03507",
		"K10000000090",
	)

	require.Len(t, f.Fixes, 1)
	require.NotNil(t, f.Fixes[0].FixAccuracy)
	assert.Equal(t, 35, *f.Fixes[0].FixAccuracy)
	require.NotNil(t, f.Fixes[0].Satellites)
	assert.Equal(t, 7, *f.Fixes[0].Satellites)
	assert.Nil(t, f.Fixes[0].EngineNoise)

	require.Len(t, f.DataRecords, 1)
	assert.Equal(t, map[string]string{"HDT": "00090"}, f.DataRecords[0].Extensions)
	assert.Len(t, f.FixExtensions, 1)
	assert.Len(t, f.DataExtensions, 1)
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Parse(ctx, []byte("AXXX123"), Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseReader(t *testing.T) {
	f, err := ParseReader(context.Background(), strings.NewReader("AXXX123-ABC\r\nHFDTE160701\r\n"), Options{})
	require.NoError(t, err)
	assert.Equal(t, "2001-07-16", f.Header.Date)
}

func TestClassifyLine(t *testing.T) {
	tests := []struct {
		in    string
		text  string
		kind  igc.Kind
		known bool
		ok    bool
	}{
		{"B1234\r", "B1234", igc.KindFix, true, true},
		{"  \t", "", 0, false, false},
		{"Zabc", "Zabc", igc.Kind('Z'), false, true},
		{"\ufeffAXXX", "AXXX", igc.KindIdentification, true, true},
	}
	for _, tt := range tests {
		text, kind, known, ok := ClassifyLine(tt.in)
		assert.Equal(t, tt.text, text, tt.in)
		assert.Equal(t, tt.kind, kind, tt.in)
		assert.Equal(t, tt.known, known, tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
	}
}

func TestTraceLine(t *testing.T) {
	data := []byte(strings.Join([]string{
		"AXXX123-ABC",
		"",
		"I013638FXA",
		"B1000004600000N00600000EA0050000500035",
		"HFDTEAB1234",
	}, "\n"))
	ctx := context.Background()

	tr, err := TraceLine(ctx, data, 4, Options{})
	require.NoError(t, err)
	assert.Equal(t, "B", tr.Kind)
	assert.Empty(t, tr.Error)
	assert.NotEmpty(t, tr.Fields)

	tr, err = TraceLine(ctx, data, 5, Options{})
	require.NoError(t, err)
	assert.NotEmpty(t, tr.Error, "invalid date is reported in the trace")

	tr, err = TraceLine(ctx, data, 1, Options{})
	require.NoError(t, err)
	assert.Equal(t, "AXXX123-ABC", tr.Line)

	_, err = TraceLine(ctx, data, 2, Options{})
	assert.Error(t, err, "blank line")
	_, err = TraceLine(ctx, data, 42, Options{})
	assert.Error(t, err)
}
