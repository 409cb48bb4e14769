package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		raw     string
		want    float64
		wantErr bool
	}{
		{raw: "3000", want: 3000},
		{raw: "3 000 €", want: 3000},
		{raw: "2500,50", want: 2500.5},
		{raw: "1.200", want: 1200},
		{raw: "1.25", want: 1.25},
		{raw: "", want: 0},
		{raw: "-5", wantErr: true},
		{raw: "beaucoup", wantErr: true},
		{raw: "NaN", wantErr: true},
		{raw: "nan", wantErr: true},
		{raw: "Inf", wantErr: true},
		{raw: "-Infinity", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseAmount(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParamsFromAnswersIgnoresNonFiniteBudget(t *testing.T) {
	var a AnswerSet
	a = a.With(StepBudget, "NaN")
	assert.Zero(t, ParamsFromAnswers(a).Budget)
}
