package topics

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/emery7592/presia-backend/internal/domain"
)

// DefaultRules returns the built-in topic rule table. Order matters: Detect
// applies the first rule with a keyword hit, so broader rules stay below
// narrower ones.
func DefaultRules() []domain.TopicRule {
	return []domain.TopicRule{
		{
			Name: "infidelite",
			Keywords: []string{
				"infidèle", "infidélité", "trompé", "trompe", "tromper", "cocufié",
				"cocu", "adultère", "autre homme", "autre femme", "liaison",
				"triche", "tricherie", "attraper", "flagrant délit", "pardon",
				"pardonne", "cheating", "affair",
			},
			RequiresClarification: true,
			ClarificationPrompt:   "Juste pour être sûr : parles-tu d'une situation où ta partenaire t'a été infidèle ?",
			Directive:             "Article à sortir concernant le pardon de l'infidélité",
		},
		{
			Name: "femme_toxique",
			Keywords: []string{
				"toxique", "manipulatrice", "narcissique", "instable", "clown",
				"cirque", "dépendance", "codépendance", "manipulation", "victime",
				"reste", "retourne", "revenir",
			},
			Directive: "NE BLÂME PAS UN CLOWN",
		},
		{
			Name: "rupture_manipulation",
			Keywords: []string{
				"rupture", "séparation", "quitter", "quitté", "ex", "cassé",
				"victimisation", "victimise", "déresponsabilisation",
			},
			Directive: "COMMENT CERTAINES FEMMES MANIPULENT LES RUPTURES",
		},
		{
			Name: "femme_doit_aimer_plus",
			Keywords: []string{
				"aimer plus", "elle m'aime", "hypergamie", "fidélité", "loyauté",
				"engagement", "vision", "progression",
			},
			Directive: "EFFECTIVEMENT LA FEMME DOIT AIMER PLUS QUE L'HOMME",
		},
		{
			Name: "femme_amortie",
			Keywords: []string{
				"passé", "ex toxic", "choix destructeur", "qualité", "mérite",
				"buisson d'épines", "homme toxique", "maturité", "déclin",
			},
			Directive: "UN HOMME DE QUALITÉ NE MÉRITE PAS UNE FEMME AMORTIE",
		},
	}
}

// LoadRules reads a topic rule table from a YAML file. The file holds a list
// of rules in priority order.
func LoadRules(path string) ([]domain.TopicRule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read topic rules %s: %w", path, err)
	}
	var rules []domain.TopicRule
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("decode topic rules %s: %w", path, err)
	}
	if len(rules) == 0 {
		return nil, fmt.Errorf("topic rules %s: empty rule table", path)
	}
	return rules, nil
}
