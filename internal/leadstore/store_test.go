package leadstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_RecordAndCount(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leads.db")
	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()

	id, err := s.RecordLead(ctx, "user@example.com", "Jean", "intéressé par le programme")
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	_, err = s.RecordUnknownQuestion(ctx, "question sans réponse")
	require.NoError(t, err)

	leads, err := s.CountLeads(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, leads)

	questions, err := s.CountUnknownQuestions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, questions)
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leads.db")
	s, err := Open(path)
	require.NoError(t, err)
	_, err = s.RecordLead(context.Background(), "a@b.c", "", "")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()
	n, err := s2.CountLeads(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
