package gps

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nmeaLine(payload string) string {
	ck := byte(0)
	for i := 0; i < len(payload); i++ {
		ck ^= payload[i]
	}
	return fmt.Sprintf("$%s*%02X\r\n", payload, ck)
}

const (
	rmcMunich = "GPRMC,123519,A,4807.038,N,01131.000,E,022.4,084.4,230394,003.1,W"
	rmcSouth  = "GPRMC,081836,A,3751.65,S,14507.36,W,000.0,360.0,130998,011.3,E"
	rmcVoid   = "GPRMC,123520,V,5000.000,N,00100.000,E,000.0,000.0,230394,003.1,W"
	ggaMunich = "GNGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,"
	ggaNoFix  = "GNGGA,123520,5000.000,N,00100.000,E,0,00,99.9,0.0,M,0.0,M,,"
	gllWest   = "GPGLL,4916.45,N,12311.12,W,225444,A"
	gsv       = "GPGSV,3,1,11,03,03,111,00,04,15,270,00,06,01,010,00,13,06,292,00"
)

func newTestAccumulator() *Accumulator {
	a := NewAccumulator()
	a.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return a
}

func resolved(a *Accumulator) (string, string) {
	lat, _ := Convert(a.Latitude())
	lon, _ := Convert(a.Longitude())
	return lat, lon
}

func TestAccumulator_NoBytesNoFix(t *testing.T) {
	a := newTestAccumulator()
	a.Drain(nil)
	a.Drain([]byte{})

	_, ok := Convert(a.Latitude())
	assert.False(t, ok)
	_, ok = Convert(a.Longitude())
	assert.False(t, ok)
	assert.False(t, a.Snapshot().HasPosition())
}

func TestAccumulator_RMCByteAtATime(t *testing.T) {
	a := newTestAccumulator()
	for _, b := range []byte(nmeaLine(rmcMunich)) {
		a.Drain([]byte{b})
	}

	lat, lon := resolved(a)
	assert.Equal(t, "48.117300", lat)
	assert.Equal(t, "11.516667", lon)

	fix := a.Snapshot()
	assert.True(t, fix.Valid)
	assert.InDelta(t, 22.4, fix.SpeedKnots, 1e-9)
	assert.InDelta(t, 84.4, fix.CourseDeg, 1e-9)
	assert.Equal(t, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), fix.UpdatedAt)
	assert.Equal(t, uint64(1), a.Stats().Position)
}

func TestAccumulator_SouthWestNegative(t *testing.T) {
	a := newTestAccumulator()
	a.Drain([]byte(nmeaLine(rmcSouth)))

	lat, lon := resolved(a)
	assert.Equal(t, "-37.860833", lat)
	assert.Equal(t, "-145.122667", lon)
}

func TestAccumulator_SameSentenceTwiceIsIdempotent(t *testing.T) {
	a := newTestAccumulator()
	a.Drain([]byte(nmeaLine(rmcMunich)))
	lat1, lon1 := resolved(a)

	a.Drain([]byte(nmeaLine(rmcMunich)))
	lat2, lon2 := resolved(a)

	assert.Equal(t, lat1, lat2)
	assert.Equal(t, lon1, lon2)
	assert.Equal(t, uint64(2), a.Stats().Position)
}

func TestAccumulator_ManySentencesInOneDrain(t *testing.T) {
	a := newTestAccumulator()
	stream := nmeaLine(gsv) + nmeaLine(ggaMunich) + nmeaLine(gllWest)
	n, err := a.Write([]byte(stream))
	require.NoError(t, err)
	assert.Equal(t, len(stream), n)

	lat, lon := resolved(a)
	assert.Equal(t, "49.274167", lat)
	assert.Equal(t, "-123.185333", lon)

	fix := a.Snapshot()
	assert.Equal(t, "1", fix.FixQuality)
	assert.Equal(t, int64(8), fix.Satellites)
	assert.InDelta(t, 545.4, fix.AltitudeM, 1e-9)

	st := a.Stats()
	assert.Equal(t, uint64(2), st.Position)
	assert.Equal(t, uint64(1), st.Ignored)
}

func TestAccumulator_SentenceSplitAcrossDrains(t *testing.T) {
	a := newTestAccumulator()
	line := nmeaLine(ggaMunich)
	a.Drain([]byte(line[:20]))
	_, ok := Convert(a.Latitude())
	assert.False(t, ok, "partial sentence must not update the fix")

	a.Drain([]byte(line[20:]))
	lat, lon := resolved(a)
	assert.Equal(t, "48.117300", lat)
	assert.Equal(t, "11.516667", lon)
}

func TestAccumulator_CorruptedSentenceKeepsState(t *testing.T) {
	a := newTestAccumulator()
	a.Drain([]byte(nmeaLine(rmcMunich)))
	before := a.Snapshot()

	good := nmeaLine(rmcSouth)
	corrupted := []string{
		strings.Replace(good, "3751.65", "3751.75", 1),  // checksum mismatch
		good[:len(good)-7] + "\r\n",                     // truncated, no checksum
		"$GPRMC,081836,A,37x1.65,S*00\r\n",              // garbage
		"$" + strings.Repeat("A", 300) + "\r\n",         // oversized
		"$GPRMC,081836,A,3751.65,S,14507.36\xff,W\r\n", // binary noise
	}
	for _, c := range corrupted {
		assert.NotPanics(t, func() { a.Drain([]byte(c)) })
		assert.Equal(t, before, a.Snapshot(), "input %q", c)
	}
	assert.Equal(t, uint64(1), a.Stats().Overflow)
	assert.GreaterOrEqual(t, a.Stats().Malformed, uint64(4))
}

func TestAccumulator_RestartOnDollar(t *testing.T) {
	a := newTestAccumulator()
	// a sentence cut short by the start of the next one
	a.Drain([]byte("$GPRMC,123519,A,48" + nmeaLine(rmcSouth)))

	lat, lon := resolved(a)
	assert.Equal(t, "-37.860833", lat)
	assert.Equal(t, "-145.122667", lon)
	assert.Equal(t, uint64(0), a.Stats().Malformed)
}

func TestAccumulator_VoidSentencesKeepLastPosition(t *testing.T) {
	a := newTestAccumulator()
	a.Drain([]byte(nmeaLine(rmcMunich)))
	a.Drain([]byte(nmeaLine(rmcVoid) + nmeaLine(ggaNoFix)))

	lat, lon := resolved(a)
	assert.Equal(t, "48.117300", lat)
	assert.Equal(t, "11.516667", lon)
	assert.False(t, a.Snapshot().Valid)
	assert.Equal(t, uint64(2), a.Stats().NoFix)
}

func TestAccumulator_UnsupportedTypeIgnored(t *testing.T) {
	a := newTestAccumulator()
	var outcomes []string
	a.OnSentence = func(typ, outcome string) { outcomes = append(outcomes, outcome) }

	a.Drain([]byte(nmeaLine("GPXYZ,1,2,3") + nmeaLine(gsv)))

	assert.Equal(t, []string{"ignored", "ignored"}, outcomes)
	assert.Equal(t, Fix{}, a.Snapshot())
}

func TestAccumulator_NoiseBetweenSentences(t *testing.T) {
	a := newTestAccumulator()
	a.Drain([]byte("\x00\x13garbage\r\n" + nmeaLine(rmcMunich) + "junk"))

	lat, _ := resolved(a)
	assert.Equal(t, "48.117300", lat)
	assert.Equal(t, uint64(0), a.Stats().Malformed)
}

func TestAccumulator_CROnlyLineEndings(t *testing.T) {
	a := newTestAccumulator()
	line := strings.TrimSuffix(nmeaLine(rmcMunich), "\n")
	a.Drain([]byte(line + strings.TrimSuffix(nmeaLine(gllWest), "\n")))

	lat, lon := resolved(a)
	assert.Equal(t, "49.274167", lat)
	assert.Equal(t, "-123.185333", lon)
	assert.Equal(t, uint64(2), a.Stats().Position)
	assert.Equal(t, uint64(0), a.Stats().Malformed)
}

func TestAccumulator_LFOnlyLineEndings(t *testing.T) {
	a := newTestAccumulator()
	a.Drain([]byte(strings.Replace(nmeaLine(rmcSouth), "\r\n", "\n", 1)))

	lat, _ := resolved(a)
	assert.Equal(t, "-37.860833", lat)
}

// The checksum is mandatory: a sentence without "*hh" is discarded even
// when its fields are valid.
func TestAccumulator_MissingChecksumRejected(t *testing.T) {
	a := newTestAccumulator()
	a.Drain([]byte("$" + rmcMunich + "\r\n"))

	_, ok := Convert(a.Latitude())
	assert.False(t, ok)
	assert.Equal(t, Stats{Malformed: 1}, a.Stats())
}

func TestNewAccumulatorClock_StampsUpdatedAt(t *testing.T) {
	at := time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC)
	a := NewAccumulatorClock(func() time.Time { return at })
	a.Drain([]byte(nmeaLine(ggaMunich)))

	fix := a.Snapshot()
	assert.Equal(t, at, fix.UpdatedAt)
	assert.True(t, fix.HasPosition())
}
