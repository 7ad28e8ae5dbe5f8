package auth

import (
	"context"

	"github.com/soundfolio/accounts/internal/linker"
	"github.com/soundfolio/accounts/internal/observability/logger"
	"github.com/soundfolio/accounts/internal/store/core"
)

// Me implements MeService on top of the linker.
type Me struct {
	linker *linker.Linker
}

func NewMe(lk *linker.Linker) *Me {
	return &Me{linker: lk}
}

func (s *Me) Describe(ctx context.Context, user *core.User) (*linker.ProfileSummary, error) {
	summary, err := s.linker.DescribeSelf(ctx, user)
	if err != nil {
		logger.From(ctx).Error("profile summary failed",
			logger.Layer("service"),
			logger.Op("Me.Describe"),
			logger.UserID(user.ID),
			logger.Err(err),
		)
		return nil, err
	}
	return summary, nil
}
