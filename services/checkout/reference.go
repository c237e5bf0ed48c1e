package checkout

import (
	"fmt"
	"strings"
	"time"

	"github.com/MarcGrol/storefront/lib/myuuid"
)

// newReference gives "ref_<unix-millis>_<12 hex chars>"; the random part keeps attempts in the same millisecond apart
func newReference(now time.Time, uuider myuuid.UUIDer) string {
	random := strings.ReplaceAll(uuider.Create(), "-", "")
	if len(random) > 12 {
		random = random[:12]
	}
	return fmt.Sprintf("ref_%d_%s", now.UnixMilli(), random)
}
