package conversation

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/moonback/Esil-events-v1-sub001/internal/models"
	"github.com/moonback/Esil-events-v1-sub001/internal/taxonomy"
)

// Kind is the expected shape of an answer.
type Kind string

const (
	KindChoice   Kind = "choice"
	KindInteger  Kind = "integer"
	KindDate     Kind = "date"
	KindText     Kind = "text"
	KindCurrency Kind = "currency"
)

const (
	MaxGuests          = 5000
	MaxSpecialRequests = 500
)

// Step is one intake question. Validate is nil when every answer is accepted.
type Step struct {
	ID       string
	Prompt   string
	Kind     Kind
	Choices  []string
	Validate func(raw string) error
}

// DefaultSteps builds the fixed intake sequence. now anchors the date check.
func DefaultSteps(now func() time.Time) []Step {
	if now == nil {
		now = time.Now
	}
	eventTypes := append(taxonomy.Labels(), taxonomy.OtherLabel)

	return []Step{
		{
			ID:       models.StepEventType,
			Prompt:   "Bonjour ! Quel type d'événement organisez-vous ?",
			Kind:     KindChoice,
			Choices:  eventTypes,
			Validate: oneOf(eventTypes),
		},
		{
			ID:       models.StepGuestCount,
			Prompt:   "Combien d'invités attendez-vous ?",
			Kind:     KindInteger,
			Validate: intBetween(1, MaxGuests),
		},
		{
			ID:       models.StepEventDate,
			Prompt:   "À quelle date aura lieu l'événement ? (AAAA-MM-JJ)",
			Kind:     KindDate,
			Validate: notBefore(now),
		},
		{
			ID:       models.StepVenue,
			Prompt:   "L'événement se déroulera-t-il en intérieur ou en extérieur ?",
			Kind:     KindChoice,
			Choices:  []string{"Intérieur", "Extérieur", "Mixte"},
			Validate: oneOf([]string{"Intérieur", "Extérieur", "Mixte"}),
		},
		{
			ID:       models.StepBudget,
			Prompt:   "Quel est votre budget approximatif pour la location ? (0 si vous ne savez pas)",
			Kind:     KindCurrency,
			Validate: amount,
		},
		{
			ID:       models.StepStyle,
			Prompt:   "Quelle ambiance souhaitez-vous ?",
			Kind:     KindChoice,
			Choices:  []string{"Chic", "Champêtre", "Moderne", "Bohème", "Festif", "Professionnel"},
			Validate: oneOf([]string{"Chic", "Champêtre", "Moderne", "Bohème", "Festif", "Professionnel"}),
		},
		{
			ID:       models.StepSpecialRequests,
			Prompt:   "Avez-vous des demandes particulières ? (facultatif)",
			Kind:     KindText,
			Validate: maxLength(MaxSpecialRequests),
		},
	}
}

func oneOf(choices []string) func(string) error {
	return func(raw string) error {
		v := strings.TrimSpace(raw)
		for _, c := range choices {
			if strings.EqualFold(c, v) {
				return nil
			}
		}
		return fmt.Errorf("choisissez parmi : %s", strings.Join(choices, ", "))
	}
}

func intBetween(lo, hi int) func(string) error {
	return func(raw string) error {
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return fmt.Errorf("veuillez indiquer un nombre entier")
		}
		if n < lo || n > hi {
			return fmt.Errorf("le nombre doit être compris entre %d et %d", lo, hi)
		}
		return nil
	}
}

func notBefore(now func() time.Time) func(string) error {
	return func(raw string) error {
		d, err := time.Parse(models.DateLayout, strings.TrimSpace(raw))
		if err != nil {
			return fmt.Errorf("format de date attendu : AAAA-MM-JJ")
		}
		today := now()
		y, m, day := today.Date()
		if d.Before(time.Date(y, m, day, 0, 0, 0, 0, time.UTC)) {
			return fmt.Errorf("la date ne peut pas être dans le passé")
		}
		return nil
	}
}

func amount(raw string) error {
	if _, err := models.ParseAmount(raw); err != nil {
		return fmt.Errorf("montant invalide")
	}
	return nil
}

func maxLength(n int) func(string) error {
	return func(raw string) error {
		if utf8.RuneCountInString(raw) > n {
			return fmt.Errorf("%d caractères maximum", n)
		}
		return nil
	}
}
