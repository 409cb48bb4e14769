package prompts

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/moonback/Esil-events-v1-sub001/internal/models"
)

const RecommendationPrompt = `Tu es l'assistant devis d'un loueur de matériel événementiel. À partir des réponses du client et du catalogue ci-dessous, propose une sélection de produits et de packs adaptée à son événement.

RÈGLES IMPORTANTES :
1. Utilise UNIQUEMENT les identifiants ("id") présents dans le catalogue fourni
2. Reprends le prix exact du catalogue, n'invente aucun prix
3. Privilégie les produits marqués "is_essential": true
4. Vise cette composition : 2 packs essentiels, 1 pack optionnel et 3 à 5 produits complémentaires
5. Une phrase de justification par suggestion
%s
FORMAT DE RÉPONSE :
Réponds uniquement avec un objet JSON valide, exactement dans ce format :
{
  "suggestions": [
    {"type": "package", "id": "ID_CATALOGUE", "name": "Nom", "reason": "Pourquoi", "total_price": 0, "items": ["Article 1", "Article 2"]},
    {"type": "product", "id": "ID_CATALOGUE", "name": "Nom", "reason": "Pourquoi", "price": 0}
  ],
  "additional_tips": "Conseils complémentaires pour l'organisation"
}

Réponses du client :
%s
Articles essentiels pour ce type d'événement :
%s
Catalogue disponible (JSON) :
%s
`

// stepLabels gives the human wording of each answer in the prompt.
var stepLabels = map[string]string{
	models.StepEventType:       "Type d'événement",
	models.StepGuestCount:      "Nombre d'invités",
	models.StepEventDate:       "Date",
	models.StepVenue:           "Lieu",
	models.StepBudget:          "Budget",
	models.StepStyle:           "Style",
	models.StepSpecialRequests: "Demandes particulières",
}

var validate = validator.New()

// BuildRecommendationPrompt assembles the single prompt sent to the model.
func BuildRecommendationPrompt(request *models.RecommendationRequest) (string, error) {
	catalog, err := json.Marshal(request.Candidates)
	if err != nil {
		return "", fmt.Errorf("failed to serialize candidates: %w", err)
	}

	return fmt.Sprintf(RecommendationPrompt,
		buildGuidanceSection(request),
		buildAnswersSection(request.Answers),
		buildEssentialsSection(request.Essentials),
		string(catalog),
	), nil
}

func buildGuidanceSection(request *models.RecommendationRequest) string {
	var builder strings.Builder

	if a := request.Allocation; a != nil && a.Budget > 0 {
		builder.WriteString(fmt.Sprintf("6. Répartition indicative du budget de %.2f € : %.0f %% essentiels (%.2f €), %.0f %% confort (%.2f €), %.0f %% décoration (%.2f €)\n",
			a.Budget,
			a.Essentials/a.Budget*100, a.Essentials,
			a.Comfort/a.Budget*100, a.Comfort,
			a.Decorative/a.Budget*100, a.Decorative,
		))
	}
	if request.Fallback {
		builder.WriteString("Note : aucun produit ne correspondait exactement aux critères, le catalogue ci-dessous est élargi à tous les produits disponibles.\n")
	}

	return builder.String()
}

func buildAnswersSection(answers models.AnswerSet) string {
	var builder strings.Builder

	for _, ans := range answers {
		label, ok := stepLabels[ans.StepID]
		if !ok {
			label = ans.StepID
		}
		value := ans.Value
		if strings.TrimSpace(value) == "" {
			value = "(non précisé)"
		}
		builder.WriteString(fmt.Sprintf("- %s : %s\n", label, value))
	}

	return builder.String()
}

func buildEssentialsSection(essentials []string) string {
	if len(essentials) == 0 {
		return "- aucun\n"
	}
	var builder strings.Builder
	for _, e := range essentials {
		builder.WriteString(fmt.Sprintf("- %s\n", e))
	}
	return builder.String()
}

// ParseRecommendationResponse extracts the reply envelope from raw model text.
// Every failure wraps models.ErrMalformedResponse. Individual suggestions are not
// checked here.
func ParseRecommendationResponse(content string) (*models.ModelReply, error) {
	jsonContent := extractJSON(stripCodeFence(content))
	if jsonContent == "" {
		return nil, fmt.Errorf("no valid JSON found in response: %w", models.ErrMalformedResponse)
	}

	var reply models.ModelReply
	if err := json.Unmarshal([]byte(jsonContent), &reply); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %v: %w", err, models.ErrMalformedResponse)
	}

	if err := validate.Struct(reply); err != nil {
		return nil, fmt.Errorf("unexpected reply shape: %v: %w", err, models.ErrMalformedResponse)
	}

	for i := range reply.Suggestions {
		reply.Suggestions[i].Kind = strings.ToLower(strings.TrimSpace(reply.Suggestions[i].Kind))
		reply.Suggestions[i].ID = strings.TrimSpace(reply.Suggestions[i].ID)
	}
	reply.AdditionalTips = strings.TrimSpace(reply.AdditionalTips)

	return &reply, nil
}

// ValidateSuggestion checks the structure of one suggestion.
func ValidateSuggestion(s models.ProductSuggestion) error {
	return validate.Struct(s)
}

func stripCodeFence(content string) string {
	s := strings.TrimSpace(content)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	// drop the opening fence line, e.g. ```json
	if nl := strings.Index(s, "\n"); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSpace(s)
	return strings.TrimSuffix(s, "```")
}

func extractJSON(content string) string {
	// Look for JSON object in the content
	start := strings.Index(content, "{")
	if start == -1 {
		return ""
	}

	end := strings.LastIndex(content, "}")
	if end == -1 || end <= start {
		return ""
	}

	return content[start : end+1]
}
