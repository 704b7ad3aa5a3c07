package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

const requestTimeout = 30 * time.Second

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(loggingMiddleware)
	r.Use(recoveryMiddleware)
	r.Use(securityHeadersMiddleware)

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)

	r.Group(func(r chi.Router) {
		r.Use(timeoutMiddleware(requestTimeout))
		r.Post("/auth/signup", s.handleSignUp)
		r.Post("/auth/signin", s.handleSignIn)
	})

	r.Group(func(r chi.Router) {
		r.Use(s.authMiddleware)

		r.Get("/quiz/events", s.handleQuizEvents)

		r.Group(func(r chi.Router) {
			r.Use(timeoutMiddleware(requestTimeout))

			r.Post("/auth/signout", s.handleSignOut)
			r.Get("/auth/me", s.handleMe)

			r.Get("/dashboard", s.handleDashboard)
			r.Post("/navigate", s.handleNavigate)

			r.Get("/profile", s.handleProfile)
			r.Put("/profile/name", s.handleUpdateProfileName)

			r.Get("/settings", s.handleSettings)
			r.Put("/settings", s.handleUpdateSettings)

			r.Get("/quiz", s.handleQuizState)
			r.Post("/quiz/generate", s.handleGenerateQuiz)
			r.Post("/quiz/answer", s.handleAnswer)
			r.Post("/quiz/advance", s.handleAdvance)
			r.Post("/quiz/submit", s.handleSubmit)
			r.Post("/quiz/reset", s.handleReset)
			r.Get("/quiz/results", s.handleResults)

			r.Get("/attempts", s.handleAttempts)
			r.Get("/attempts/{id}", s.handleAttemptDetail)
			r.Get("/performance", s.handlePerformance)
		})
	})

	return r
}
