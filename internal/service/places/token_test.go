package places

import (
	"encoding/base64"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/aparra/img2card-bot/internal/domain"
)

func TestEncodeLocationTokenLayout(t *testing.T) {
	coords := domain.Coordinates{Latitude: 39.8881713, Longitude: 4.2637637}
	now := time.UnixMicro(1700000000000000)

	token := EncodeLocationToken(coords, 300, now)
	if !strings.HasPrefix(token, "a+") {
		t.Fatalf("token must carry the a+ prefix, got %q", token[:4])
	}

	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(token, "a+"))
	if err != nil {
		t.Fatalf("token payload is not valid base64: %v", err)
	}

	want := fmt.Sprintf(
		"role:1\nproducer:12\nprovenance:6\ntimestamp:%d\nlatlng{\nlatitude_e7:%d\nlongitude_e7:%d\n}\nradius:%d\n",
		1700000000000000, 398881713, 42637637, 186000,
	)
	if string(decoded) != want {
		t.Fatalf("unexpected token block:\n got %q\nwant %q", decoded, want)
	}
}

func TestEncodeLocationTokenRoundsCoordinates(t *testing.T) {
	// e7 scaling rounds, never truncates.
	coords := domain.Coordinates{Latitude: 1.00000006, Longitude: -1.00000006}
	token := EncodeLocationToken(coords, 1, time.UnixMicro(0))

	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(token, "a+"))
	if err != nil {
		t.Fatalf("token payload is not valid base64: %v", err)
	}
	block := string(decoded)

	if !strings.Contains(block, "latitude_e7:10000001\n") {
		t.Fatalf("latitude not rounded to e7: %q", block)
	}
	if !strings.Contains(block, "longitude_e7:-10000001\n") {
		t.Fatalf("longitude not rounded to e7: %q", block)
	}
	if !strings.Contains(block, "radius:620\n") {
		t.Fatalf("radius not scaled by 620: %q", block)
	}
}
