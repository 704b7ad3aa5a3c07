package questions

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/vytor/quizflash/internal/models"
)

//go:embed bank.yaml
var embeddedBank []byte

// defaultTopics is returned for subjects the bank has no topic list for.
var defaultTopics = []string{"General Knowledge"}

// Bank is the static table of question templates keyed by subject and
// difficulty, plus a per-subject topic catalogue. It is read-only after load.
type Bank struct {
	subjects map[string]map[string][]models.Question
	topics   map[string][]string
}

type bankFile struct {
	Subjects map[string]map[string][]models.Question `yaml:"subjects"`
	Topics   map[string][]string                      `yaml:"topics"`
}

// DefaultBank parses the bank compiled into the binary.
func DefaultBank() (*Bank, error) {
	return LoadBank(bytes.NewReader(embeddedBank))
}

// LoadBankFile reads a bank from path, or the embedded bank when path is empty.
func LoadBankFile(path string) (*Bank, error) {
	if path == "" {
		return DefaultBank()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open question bank: %w", err)
	}
	defer f.Close()
	return LoadBank(f)
}

// LoadBank decodes and validates a YAML bank document.
func LoadBank(r io.Reader) (*Bank, error) {
	var doc bankFile
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode question bank: %w", err)
	}

	b := &Bank{
		subjects: make(map[string]map[string][]models.Question, len(doc.Subjects)),
		topics:   doc.Topics,
	}
	if b.topics == nil {
		b.topics = map[string][]string{}
	}

	for subject, buckets := range doc.Subjects {
		normalized := make(map[string][]models.Question, len(buckets))
		for difficulty, templates := range buckets {
			difficulty = models.NormalizeDifficulty(difficulty)
			for i := range templates {
				q := &templates[i]
				q.Subject = subject
				q.Difficulty = difficulty
				if err := validateTemplate(*q); err != nil {
					return nil, fmt.Errorf("question bank %s/%s #%d: %w", subject, difficulty, i+1, err)
				}
			}
			normalized[difficulty] = append(normalized[difficulty], templates...)
		}
		b.subjects[subject] = normalized
	}
	return b, nil
}

func validateTemplate(q models.Question) error {
	if q.ID == "" {
		return fmt.Errorf("missing id")
	}
	if q.Prompt == "" {
		return fmt.Errorf("%s: empty question", q.ID)
	}
	if len(q.Options) != models.OptionCount {
		return fmt.Errorf("%s: want %d options, got %d", q.ID, models.OptionCount, len(q.Options))
	}
	if q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Options) {
		return fmt.Errorf("%s: correct_answer %d out of range", q.ID, q.CorrectAnswer)
	}
	return nil
}

// HasSubject reports whether the bank has any bucket for subject.
func (b *Bank) HasSubject(subject string) bool {
	_, ok := b.subjects[subject]
	return ok
}

// Bucket returns the templates for subject/difficulty. The slice must not be modified.
func (b *Bank) Bucket(subject, difficulty string) []models.Question {
	return b.subjects[subject][models.NormalizeDifficulty(difficulty)]
}

// Subjects lists every subject that has questions or topics, sorted.
func (b *Bank) Subjects() []string {
	seen := make(map[string]struct{}, len(b.subjects)+len(b.topics))
	for s := range b.subjects {
		seen[s] = struct{}{}
	}
	for s := range b.topics {
		seen[s] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Topics returns the topic catalogue for subject.
func (b *Bank) Topics(subject string) []string {
	if t, ok := b.topics[subject]; ok && len(t) > 0 {
		return append([]string(nil), t...)
	}
	return append([]string(nil), defaultTopics...)
}
