package detector

import (
	"fmt"
	"time"

	"github.com/spaolacci/murmur3"

	"github.com/nao1215/webwatch/internal/model"
)

// Fingerprint returns the 128-bit murmur3 digest of the content as a
// 32-character lowercase hex string. Identical content always produces the
// identical fingerprint; that determinism is what makes cross-run comparison
// meaningful.
func Fingerprint(content string) string {
	h1, h2 := murmur3.Sum128([]byte(content))
	return fmt.Sprintf("%016x%016x", h1, h2)
}

// Outcome is the result of classifying one check.
type Outcome struct {
	// Status is unchanged or updated. Classification only runs on the
	// success path, so it never produces an error status.
	Status model.Status

	// ChangeDetected reports whether this check observed a content change.
	ChangeDetected bool

	// LastChange is when this site last changed: the current check time if
	// this check detected the change, the carried-over prior value if not,
	// nil if the site has never changed.
	LastChange *time.Time
}

// Classify compares the new fingerprint against the site's prior status.
// A nil prior, or a prior without a fingerprint (the previous check failed),
// is a cold start: the check records the baseline and classifies unchanged.
func Classify(prior *model.SiteStatus, hash string, now time.Time) Outcome {
	if prior == nil || prior.Hash == "" {
		return Outcome{Status: model.StatusUnchanged}
	}

	if prior.Hash != hash {
		changed := now
		return Outcome{
			Status:         model.StatusUpdated,
			ChangeDetected: true,
			LastChange:     &changed,
		}
	}

	out := Outcome{Status: model.StatusUnchanged}
	if prior.LastChange != nil {
		carried := *prior.LastChange
		out.LastChange = &carried
	}
	return out
}
