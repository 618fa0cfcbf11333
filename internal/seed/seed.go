package seed

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/yigit/clubhub/internal/app/models"
	"github.com/yigit/clubhub/internal/app/services"
	"github.com/yigit/clubhub/internal/pkg/apperrors"
)

// Demo account credentials.
const (
	DemoEmail    = "demo@clubhub.local"
	DemoUsername = "demo"
	DemoPassword = "demo-password1"
)

var demoClubs = []models.Club{
	{Name: "Chess Club", Description: "Weekly blitz and a spring tournament.", Category: "Games", Interest: "Strategy", Location: "Library, room 2"},
	{Name: "Robotics Society", Description: "Build nights every Thursday.", Category: "Engineering", Subject: "Robotics", Interest: "Hardware"},
	{Name: "Hiking Group", Description: "Day trips most weekends.", Category: "Outdoors", Interest: "Nature"},
}

// CreateDemoData registers the demo account and makes it admin of a few
// starter clubs. It does nothing when the demo account already exists.
func CreateDemoData(ctx context.Context, svc *services.Services, lgr zerolog.Logger) error {
	lgr.Info().Msg("Checking/Creating demo data...")

	user, _, err := svc.Auth.Register(ctx, services.Registration{
		Email:    DemoEmail,
		Username: DemoUsername,
		Password: DemoPassword,
	})
	if apperrors.IsKind(err, apperrors.KindUserAlreadyExists) {
		lgr.Info().Msg("Demo account exists, skipping seed")
		return nil
	}
	if err != nil {
		lgr.Error().Err(err).Msg("Error creating demo account")
		return err
	}

	var finalErr error // collect errors without stopping the process
	for _, club := range demoClubs {
		created, err := svc.Membership.CreateWithAdmin(ctx, user.ID, club)
		if err != nil {
			lgr.Error().Err(err).Str("club", club.Name).Msg("Error creating demo club")
			finalErr = errors.Join(finalErr, err)
			continue
		}
		if _, err := svc.Posts.Create(ctx, user.ID, created.ID, "Welcome to "+created.Name+"!", nil); err != nil {
			lgr.Error().Err(err).Str("club", club.Name).Msg("Error creating welcome post")
			finalErr = errors.Join(finalErr, err)
		}
	}

	lgr.Info().Str("email", DemoEmail).Int("clubs", len(demoClubs)).Msg("Demo data created")
	return finalErr
}
