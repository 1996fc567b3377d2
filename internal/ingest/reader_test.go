package ingest

import (
	"strings"
	"testing"
)

const statsportSample = `Player Id,Player Display Name, Speed m/s,Latitude
1001,Jane Doe,0.0,51.1
1001,Jane Doe,1.5,51.1
1001,Jane Doe,3.0,51.1
1001,Jane Doe,2.5,51.1
`

const catapultSample = `# OpenField Export
# Athlete: "John Smith"
# DeviceId: "CT-42"
# Period: "First Half"
Timestamp,Velocity,Odometer
0.0,0.0,0
0.1,2.0,0.2
0.2,4.0,0.6
`

const genericSample = `Timestamp,Velocity
0.0,1.0
0.1,2.0
0.2,3.0
`

func TestDetectFormat(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want Format
	}{
		{"statsport", statsportSample, FormatStatSport},
		{"catapult", catapultSample, FormatCatapult},
		{"generic", genericSample, FormatGeneric},
		{"unknown", "a,b,c\n1,2,3\n", FormatUnknown},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, conf := DetectFormat(splitLines(c.raw))
			if got != c.want {
				t.Fatalf("got %q (conf %v), want %q", got, conf, c.want)
			}
			if c.want != FormatUnknown && conf <= 0 {
				t.Fatalf("expected positive confidence, got %v", conf)
			}
		})
	}
}

func TestReadStatSport(t *testing.T) {
	s, err := Read(strings.NewReader(statsportSample), Options{Source: "a.csv"})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if s.Format != string(FormatStatSport) {
		t.Fatalf("format: got %q", s.Format)
	}
	if len(s.Velocity) != 4 || s.Velocity[2] != 3.0 {
		t.Fatalf("velocity: got %v", s.Velocity)
	}
	if s.Player != "Jane Doe" || s.Device != "1001" {
		t.Fatalf("metadata: player %q device %q", s.Player, s.Device)
	}
	if s.SamplingRate != 10 {
		t.Fatalf("default rate: got %v", s.SamplingRate)
	}
	if s.ID == "" {
		t.Fatal("expected generated session id")
	}
}

func TestReadCatapult(t *testing.T) {
	s, err := Read(strings.NewReader(catapultSample), Options{Source: "b.csv", SamplingRate: 5})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if s.Player != "John Smith" || s.Device != "CT-42" || s.Period != "First Half" {
		t.Fatalf("metadata: %+v", s)
	}
	if len(s.Velocity) != 3 || s.Velocity[2] != 4.0 {
		t.Fatalf("velocity: got %v", s.Velocity)
	}
	if s.SamplingRate != 5 {
		t.Fatalf("rate override: got %v", s.SamplingRate)
	}
}

func TestReadGeneric(t *testing.T) {
	s, err := Read(strings.NewReader(genericSample), Options{Source: "c.csv"})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(s.Velocity) != 3 || s.Velocity[0] != 1.0 {
		t.Fatalf("velocity: got %v", s.Velocity)
	}
}

func TestReadForcedFormatSkipsDetection(t *testing.T) {
	// Generic layout forced through the generic reader even though the
	// header would also match detection.
	if _, err := Read(strings.NewReader(genericSample), Options{Format: FormatGeneric, Source: "c.csv"}); err != nil {
		t.Fatalf("forced format: %v", err)
	}
}

func TestReadRejectsNonNumericVelocity(t *testing.T) {
	raw := "Timestamp,Velocity\n0.0,abc\n"
	if _, err := Read(strings.NewReader(raw), Options{Source: "bad.csv"}); err == nil {
		t.Fatal("expected error for non-numeric velocity")
	}
}

func TestReadRejectsUnknownFormat(t *testing.T) {
	if _, err := Read(strings.NewReader("x,y\n1,2\n"), Options{Source: "odd.csv"}); err == nil {
		t.Fatal("expected unrecognised format error")
	}
}

func TestReadRejectsEmptyInput(t *testing.T) {
	if _, err := Read(strings.NewReader("\n\n"), Options{Source: "empty.csv"}); err == nil {
		t.Fatal("expected empty file error")
	}
}

func TestSplitLinesNormalisesCRLF(t *testing.T) {
	lines := splitLines("a\r\nb\r\n\r\nc")
	if len(lines) != 3 || lines[1] != "b" {
		t.Fatalf("got %v", lines)
	}
}
