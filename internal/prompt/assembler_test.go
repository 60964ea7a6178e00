package prompt

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emery7592/presia-backend/internal/domain"
	"github.com/emery7592/presia-backend/internal/topics"
)

type stubRetriever struct {
	result domain.ContextResult
	calls  int
}

func (s *stubRetriever) GetContext(ctx context.Context, query string, maxChars int) domain.ContextResult {
	s.calls++
	return s.result
}

func newAssembler(ret *stubRetriever) *Assembler {
	return New(topics.NewRouter(nil), ret, 10000, "")
}

func TestBuildInstruction_GreetingShortCircuits(t *testing.T) {
	ret := &stubRetriever{result: domain.ContextResult{Text: "should not appear"}}
	a := newAssembler(ret)

	instr := a.BuildInstruction(context.Background(), "bonjour")

	assert.Zero(t, ret.calls, "retriever must not be invoked for greetings")
	assert.Contains(t, instr, "MESSAGE DE PRÉSENTATION")
	assert.NotContains(t, instr, "should not appear")
	assert.NotContains(t, instr, "THÈME DÉTECTÉ")
}

func TestBuildInstruction_ClarificationDirective(t *testing.T) {
	ret := &stubRetriever{result: domain.ContextResult{Text: "[Page 1]\nextrait\n"}}
	a := newAssembler(ret)

	instr := a.BuildInstruction(context.Background(), "Ma copine m'a trompé")

	require.Equal(t, 1, ret.calls)
	rule := topics.NewRouter(nil).Detect("Ma copine m'a trompé")
	require.NotNil(t, rule)
	assert.Contains(t, instr, rule.ClarificationPrompt)
	assert.Contains(t, instr, rule.Directive)
	assert.Contains(t, instr, "[Page 1]\nextrait")
}

func TestBuildInstruction_TopicWithoutClarification(t *testing.T) {
	ret := &stubRetriever{result: domain.ContextResult{Text: "contexte"}}
	a := newAssembler(ret)

	instr := a.BuildInstruction(context.Background(), "elle est toxique et manipulatrice")

	assert.Contains(t, instr, "THÈME DÉTECTÉ : FEMME_TOXIQUE")
	assert.Contains(t, instr, "NE BLÂME PAS UN CLOWN")
	assert.Contains(t, instr, "PRIORITAIREMENT")
}

func TestBuildInstruction_ContextAlwaysAppended(t *testing.T) {
	ret := &stubRetriever{result: domain.ContextResult{Text: "fond documentaire"}}
	a := newAssembler(ret)

	// No topic matches; context must still be present.
	instr := a.BuildInstruction(context.Background(), "une question relationnelle quelconque sur le couple")

	require.Equal(t, 1, ret.calls)
	assert.Contains(t, instr, "fond documentaire")
	assert.NotContains(t, instr, "THÈME DÉTECTÉ")
}

func TestBuildInstruction_DegradedContextUsesPlaceholder(t *testing.T) {
	ret := &stubRetriever{result: domain.ContextResult{Text: "Contexte non disponible", Degraded: true}}
	a := newAssembler(ret)

	instr := a.BuildInstruction(context.Background(), "parle-moi du couple et du cadre masculin")
	assert.Contains(t, instr, "Contexte non disponible")
}

func TestBuildInstruction_EmptyRetrievalGetsNeutralPlaceholder(t *testing.T) {
	ret := &stubRetriever{result: domain.ContextResult{}}
	a := newAssembler(ret)

	instr := a.BuildInstruction(context.Background(), "question relationnelle sans contexte trouvé")
	assert.Contains(t, instr, neutralContext)
}
