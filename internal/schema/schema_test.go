package schema

import (
	"context"
	"testing"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHello(t *testing.T) {
	s, err := New()

	require.NoError(t, err)

	res := graphql.Do(graphql.Params{
		Schema:        s,
		RequestString: `{ hello }`,
		Context:       context.Background(),
	})

	assert.Empty(t, res.Errors)
	assert.Equal(t, map[string]interface{}{"hello": "world"}, res.Data)
}

func TestGreetings(t *testing.T) {
	s, err := New()

	require.NoError(t, err)

	doc, err := parser.Parse(parser.ParseParams{Source: `subscription { greetings }`})

	require.NoError(t, err)

	var got []interface{}

	for res := range graphql.ExecuteSubscription(graphql.ExecuteParams{
		Schema:  s,
		AST:     doc,
		Context: context.Background(),
	}) {
		assert.Empty(t, res.Errors)

		data, ok := res.Data.(map[string]interface{})

		require.True(t, ok)

		got = append(got, data["greetings"])
	}

	assert.Equal(t, []interface{}{"Hi", "Bonjour", "Hola", "Ciao", "Zdravo"}, got)
}
