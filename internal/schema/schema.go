// Package schema provides the greetings schema served by wsgraphql-bc
package schema

import (
	"github.com/graphql-go/graphql"
)

// Greetings emitted by the greetings subscription, in order
var Greetings = []string{"Hi", "Bonjour", "Hola", "Ciao", "Zdravo"}

// New returns schema with hello query and greetings subscription
func New() (graphql.Schema, error) {
	return graphql.NewSchema(graphql.SchemaConfig{
		Query: graphql.NewObject(graphql.ObjectConfig{
			Name: "Query",
			Fields: graphql.Fields{
				"hello": &graphql.Field{
					Type: graphql.NewNonNull(graphql.String),
					Resolve: func(p graphql.ResolveParams) (interface{}, error) {
						return "world", nil
					},
				},
			},
		}),
		Subscription: graphql.NewObject(graphql.ObjectConfig{
			Name: "Subscription",
			Fields: graphql.Fields{
				"greetings": &graphql.Field{
					Type: graphql.NewNonNull(graphql.String),
					Resolve: func(p graphql.ResolveParams) (interface{}, error) {
						return p.Source, nil
					},
					Subscribe: func(p graphql.ResolveParams) (interface{}, error) {
						ch := make(chan interface{})

						go func() {
							defer close(ch)

							for _, greeting := range Greetings {
								select {
								case ch <- greeting:
								case <-p.Context.Done():
									return
								}
							}
						}()

						return ch, nil
					},
				},
			},
		}),
	})
}
