package api

import (
	"context"
	"time"

	"github.com/vytor/quizflash/internal/auth"
	"github.com/vytor/quizflash/internal/questions"
	"github.com/vytor/quizflash/internal/services"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Server struct {
	Auth            auth.Service
	ProfileService  services.ProfileService
	SettingsService services.SettingsService
	AttemptService  services.AttemptService
	QuizService     services.QuizService
	Bank            *questions.Bank
	DB              Pinger
	TokenTTL        time.Duration
	SecureCookies   bool
}
