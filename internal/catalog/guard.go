package catalog

import (
	"fmt"

	"github.com/Adi21032004/Modified-Youtube/internal/models"
)

// requireOwner is the ownership guard applied before every video mutation:
// the acting account must own the record, checked before any store or
// media-store call touches it.
func requireOwner(video models.Video, actingAccountID string) error {
	if video.OwnerID != actingAccountID {
		return fmt.Errorf("%w: account %s does not own video %s", ErrForbidden, actingAccountID, video.ID)
	}
	return nil
}
