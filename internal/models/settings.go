package models

// Settings drive quiz generation. They are changed only through the settings
// endpoint and read when a new quiz is generated.
type Settings struct {
	Subject          string `json:"subject"`
	Difficulty       string `json:"difficulty"`
	QuestionCount    int    `json:"question_count"`
	TimeLimitMinutes int    `json:"time_limit"` // 0 means no time limit
	AutoSubmit       bool   `json:"auto_submit"`
	ShowExplanations bool   `json:"show_explanations"`
	SoundEffects     bool   `json:"sound_effects"`
}

const (
	MaxQuestionCount    = 50
	MaxTimeLimitMinutes = 120
)

func DefaultSettings() Settings {
	return Settings{
		Subject:          "Computer Science",
		Difficulty:       DifficultyIntermediate,
		QuestionCount:    5,
		TimeLimitMinutes: 10,
		AutoSubmit:       true,
		ShowExplanations: true,
		SoundEffects:     false,
	}
}

// TimeLimitSeconds is the initial countdown value.
func (s Settings) TimeLimitSeconds() int {
	return s.TimeLimitMinutes * 60
}

// Timed reports whether the countdown runs at all.
func (s Settings) Timed() bool {
	return s.TimeLimitMinutes > 0
}
