package zone

import (
	"testing"

	"github.com/khtml-hack/baekend/internal/types"
)

func TestInfer_AddressIsDeterministic(t *testing.T) {
	first, ok := Infer("서울 동대문구 이문동 264-223", nil)
	if !ok {
		t.Fatal("expected a zone for a non-empty address")
	}
	for i := 0; i < 20; i++ {
		again, _ := Infer("서울 동대문구 이문동 264-223", nil)
		if again != first {
			t.Fatalf("zone flipped between calls: %+v vs %+v", first, again)
		}
	}
}

func TestInfer_CoordinateJitterStaysInZone(t *testing.T) {
	base := types.Point{Lat: 37.59721, Lng: 127.05823}
	jittered := types.Point{Lat: base.Lat + 0.0001, Lng: base.Lng - 0.0001}

	z1, ok := Infer("", &base)
	if !ok {
		t.Fatal("expected a zone for coordinates")
	}
	z2, _ := Infer("", &jittered)
	if z1 != z2 {
		t.Errorf("~10m jitter changed the zone: %+v vs %+v", z1, z2)
	}
}

func TestInfer_NothingKnown(t *testing.T) {
	if _, ok := Infer("", nil); ok {
		t.Error("expected no zone without address or coordinates")
	}
}

func TestLocationKey(t *testing.T) {
	tests := []struct {
		address string
		want    string
	}{
		{"서울 강남구 테헤란로 123", "gangnam"},
		{"Gangnam Station exit 4", "gangnam"},
		{"서울 마포구 홍대입구", "hongdae"},
		{"명동성당 앞", "myeongdong"},
		{"서울 송파구 잠실동", "jamsil"},
		{"여의도 한강공원", "yeouido"},
		{"이태원로 27", "itaewon"},
		{"대전 유성구 어딘가", "default"},
		{"", "default"},
	}
	for _, tt := range tests {
		if got := LocationKey(tt.address); got != tt.want {
			t.Errorf("LocationKey(%q) = %q, want %q", tt.address, got, tt.want)
		}
	}
}
