package repositories

import (
	"context"

	"github.com/Adi21032004/Modified-Youtube/internal/models"
)

// AccountRepository reads account projections owned by the external
// identity subsystem. This service never writes accounts.
type AccountRepository interface {
	FindProfile(ctx context.Context, id string) (models.AccountProfile, error)
}
