package models

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Step identifiers of the intake dialogue
const (
	StepEventType       = "event_type"
	StepGuestCount      = "guest_count"
	StepEventDate       = "event_date"
	StepVenue           = "venue"
	StepBudget          = "budget"
	StepStyle           = "style"
	StepSpecialRequests = "special_requests"
)

const DateLayout = "2006-01-02"

type Answer struct {
	StepID string `json:"step_id"`
	Value  string `json:"value"`
}

// AnswerSet holds raw answers in step order. It is only ever appended to.
type AnswerSet []Answer

func (a AnswerSet) Get(stepID string) (string, bool) {
	for _, ans := range a {
		if ans.StepID == stepID {
			return ans.Value, true
		}
	}
	return "", false
}

// With returns a copy of the set with one more entry.
func (a AnswerSet) With(stepID, value string) AnswerSet {
	out := make(AnswerSet, len(a), len(a)+1)
	copy(out, a)
	return append(out, Answer{StepID: stepID, Value: value})
}

func (a AnswerSet) Clone() AnswerSet {
	if a == nil {
		return AnswerSet{}
	}
	out := make(AnswerSet, len(a))
	copy(out, a)
	return out
}

// EventParams is the structured view of a completed answer set.
type EventParams struct {
	EventType       string
	Guests          int
	Date            time.Time
	Venue           string
	Budget          float64
	Style           string
	SpecialRequests string
}

// ParamsFromAnswers extracts typed parameters. Unparseable values are left zero;
// the step predicates have already rejected them during the dialogue.
func ParamsFromAnswers(a AnswerSet) EventParams {
	var p EventParams
	p.EventType, _ = a.Get(StepEventType)
	if raw, ok := a.Get(StepGuestCount); ok {
		p.Guests, _ = strconv.Atoi(strings.TrimSpace(raw))
	}
	if raw, ok := a.Get(StepEventDate); ok {
		p.Date, _ = time.Parse(DateLayout, strings.TrimSpace(raw))
	}
	p.Venue, _ = a.Get(StepVenue)
	if raw, ok := a.Get(StepBudget); ok {
		p.Budget, _ = ParseAmount(raw)
	}
	p.Style, _ = a.Get(StepStyle)
	p.SpecialRequests, _ = a.Get(StepSpecialRequests)
	return p
}

// ParseAmount reads a euro amount typed by a customer: "3000", "3 000 €", "2500,50", "1.200".
// An empty answer means no budget.
func ParseAmount(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimSuffix(s, "€")
	s = strings.TrimPrefix(s, "€")
	s = strings.ReplaceAll(s, "EUR", "")
	s = strings.ReplaceAll(s, "eur", "")
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\u00a0', '\u202f':
			return -1
		}
		return r
	}, s)
	if s == "" {
		return 0, nil
	}

	// "1.200" is a thousands separator, "1.25" is a decimal point
	if strings.Count(s, ".") == 1 && !strings.Contains(s, ",") {
		if idx := strings.Index(s, "."); len(s)-idx-1 == 3 {
			s = strings.Replace(s, ".", "", 1)
		}
	} else {
		s = strings.ReplaceAll(s, ".", "")
	}
	s = strings.Replace(s, ",", ".", 1)

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", raw)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("invalid amount %q", raw)
	}
	if v < 0 {
		return 0, fmt.Errorf("negative amount %q", raw)
	}
	return v, nil
}
