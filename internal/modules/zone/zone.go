// README: Deterministic zone assignment and congestion location-key inference.
package zone

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/khtml-hack/baekend/internal/types"
)

// Zone is a coarse service-area cell used for neighborhood-level features.
type Zone struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

var zoneCodes = []Zone{
	{Code: "A", Name: "A구역"},
	{Code: "B", Name: "B구역"},
	{Code: "C", Name: "C구역"},
	{Code: "D", Name: "D구역"},
}

// Infer maps an address or coordinate to a zone. The mapping is a stable
// hash: the same input always lands in the same zone, so repeated requests
// for one user agree with each other. Returns false when neither an address
// nor a coordinate is available.
func Infer(address string, coord *types.Point) (Zone, bool) {
	if address != "" {
		return hashToZone(address), true
	}
	if coord != nil {
		// Bucket to a ~110m grid cell first so tiny GPS jitter cannot flip
		// the zone between calls.
		latBucket := int(roundHalfAway(coord.Lat * 1000))
		lngBucket := int(roundHalfAway(coord.Lng * 1000))
		return hashToZone(strconv.Itoa(latBucket) + ":" + strconv.Itoa(lngBucket)), true
	}
	return Zone{}, false
}

func hashToZone(text string) Zone {
	sum := sha256.Sum256([]byte(text))
	prefix := hex.EncodeToString(sum[:4])
	n, _ := strconv.ParseUint(prefix, 16, 64)
	return zoneCodes[n%uint64(len(zoneCodes))]
}

func roundHalfAway(v float64) float64 {
	if v < 0 {
		return float64(int(v - 0.5))
	}
	return float64(int(v + 0.5))
}

// locationKeywords maps destination substrings to congestion location keys.
var locationKeywords = []struct {
	keywords []string
	key      string
}{
	{[]string{"강남", "gangnam"}, "gangnam"},
	{[]string{"홍대", "hongdae"}, "hongdae"},
	{[]string{"명동", "myeongdong"}, "myeongdong"},
	{[]string{"잠실", "jamsil"}, "jamsil"},
	{[]string{"여의도", "yeouido"}, "yeouido"},
	{[]string{"이태원", "itaewon"}, "itaewon"},
}

// LocationKey infers the congestion correction key from a destination
// address by substring match, falling back to "default".
func LocationKey(address string) string {
	lowered := strings.ToLower(address)
	for _, entry := range locationKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(lowered, kw) {
				return entry.key
			}
		}
	}
	return "default"
}

// Label renders a zone for UI display.
func (z Zone) Label() string {
	return fmt.Sprintf("%s (%s)", z.Name, z.Code)
}
