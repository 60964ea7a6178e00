package prompt

import (
	"context"
	"fmt"
	"strings"

	"github.com/emery7592/presia-backend/internal/domain"
	"github.com/emery7592/presia-backend/internal/topics"
)

// DefaultName is the assistant persona name used when none is configured.
const DefaultName = "Ralph AI"

// neutralContext replaces retrieved context for queries that need none.
const neutralContext = "Pas de contexte nécessaire pour ce type de message"

// Assembler builds the instruction payload for the completion service:
// persona, absolute rules, topic directive and retrieved context.
// Assembly itself never fails; the worst case is an instruction with
// placeholder context.
type Assembler struct {
	router          *topics.Router
	retriever       domain.Retriever
	maxContextChars int
	name            string
}

// New creates an assembler. maxContextChars bounds the retrieved context
// appended to the instruction.
func New(router *topics.Router, retriever domain.Retriever, maxContextChars int, name string) *Assembler {
	if maxContextChars <= 0 {
		maxContextChars = 10000
	}
	if name == "" {
		name = DefaultName
	}
	return &Assembler{router: router, retriever: retriever, maxContextChars: maxContextChars, name: name}
}

// BuildInstruction produces the system instruction for a query.
//
// Greeting and self-referential queries short-circuit to a canned
// presentation directive: no retrieval, no topic routing. Otherwise the
// topic directive (if a rule matches) narrows interpretation while the
// retrieved context supplies the literal source text.
func (a *Assembler) BuildInstruction(ctx context.Context, query string) string {
	if a.router.IsGreetingOrMeta(query) {
		return a.presentationInstruction()
	}

	themeDirective := ""
	if rule := a.router.Detect(query); rule != nil {
		themeDirective = topicDirective(rule)
	}

	contextText := neutralContext
	if strings.TrimSpace(query) != "" {
		res := a.retriever.GetContext(ctx, query, a.maxContextChars)
		if res.Text != "" {
			contextText = res.Text
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Tu es %s, assistant spécialisé dans les dynamiques relationnelles homme-femme.\n", a.name)
	if themeDirective != "" {
		b.WriteString("\n")
		b.WriteString(themeDirective)
	}
	b.WriteString(`
## RÈGLES ABSOLUES :

1. Comprends l'INTENTION de la question, pas seulement les mots exacts, et oriente-toi vers l'article du document qui la traite.
2. Si la question est couverte par le document, réponds en utilisant EXCLUSIVEMENT son contenu. Cite ses concepts et formules. Ne mentionne JAMAIS les numéros de page.
3. Si la question concerne les relations mais n'est pas couverte, réponds selon les principes du document : responsabilité personnelle, cadre et frontières, valeur personnelle avant la relation.
4. Si la question ne concerne PAS les relations homme-femme, réponds : "Cette question ne concerne pas les relations homme-femme. Je ne peux y répondre."
5. Ne donne jamais de conseils encourageant à rester dans une relation destructrice, ni de réponses complaisantes qui déresponsabilisent.
6. Ton direct, structuré et ferme, mais jamais insultant envers le client.
7. Réponds dans la MÊME LANGUE que la question : français → français, anglais → anglais, italien → italien.

---

## Contexte pertinent du document :
`)
	b.WriteString(contextText)
	b.WriteString("\n\n---\n\nRéponds maintenant à la question du client en suivant TOUTES ces règles.")
	return b.String()
}

func topicDirective(rule *domain.TopicRule) string {
	if rule.RequiresClarification {
		return fmt.Sprintf(`## INSTRUCTION SPÉCIALE DÉTECTÉE : %s
AVANT de répondre, tu DOIS poser cette question de clarification :
"%s"

SI l'utilisateur confirme → Utilise IMPÉRATIVEMENT l'article "%s" du document.
SI l'utilisateur nie → Traite la question normalement selon le contexte fourni.
`, strings.ToUpper(rule.Name), rule.ClarificationPrompt, rule.Directive)
	}
	return fmt.Sprintf(`## THÈME DÉTECTÉ : %s
Cette question est liée à l'article "%s".
Utilise PRIORITAIREMENT le contenu de cet article pour répondre, même si le contexte propose d'autres extraits.
`, strings.ToUpper(rule.Name), rule.Directive)
}

func (a *Assembler) presentationInstruction() string {
	return fmt.Sprintf(`Tu es %s, assistant spécialisé dans les dynamiques relationnelles homme-femme.

## INSTRUCTION UNIQUE : MESSAGE DE PRÉSENTATION

L'utilisateur te salue, te demande de te présenter ou te compare à d'autres assistants.

Réponds UNIQUEMENT avec un court message de présentation : qui tu es, ta spécialisation exclusive dans les relations homme-femme, et ce qui te distingue d'un assistant généraliste.

RÈGLES STRICTES :
- N'AJOUTE RIEN d'autre au message
- Traduis dans la langue de la question si nécessaire (anglais, italien, espagnol, etc.)
- Ne mentionne PAS le document dans ce contexte
`, a.name)
}
