package wsgraphql

import (
	"github.com/eientei/wsgraphqlbc/apollows"
	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/gqlerrors"
	"github.com/graphql-go/graphql/language/ast"
	"github.com/graphql-go/graphql/language/parser"
	"github.com/graphql-go/graphql/language/source"
)

// parseAST parses and validates operation, returning result with errors if any
func (server *serverImpl) parseAST(
	payload *apollows.PayloadOperation,
) (astdoc *ast.Document, subscription bool, result *graphql.Result) {
	src := source.NewSource(&source.Source{
		Body: []byte(payload.Query),
		Name: "GraphQL request",
	})

	astdoc, err := parser.Parse(parser.ParseParams{Source: src})
	if err != nil {
		return nil, false, &graphql.Result{
			Errors: gqlerrors.FormatErrors(err),
		}
	}

	validationResult := graphql.ValidateDocument(&server.schema, astdoc, nil)

	if !validationResult.IsValid || len(validationResult.Errors) > 0 {
		return nil, false, &graphql.Result{
			Errors: validationResult.Errors,
		}
	}

	for _, definition := range astdoc.Definitions {
		op, ok := definition.(*ast.OperationDefinition)
		if !ok {
			continue
		}

		if payload.OperationName != "" && (op.Name == nil || op.Name.Value != payload.OperationName) {
			continue
		}

		subscription = op.Operation == ast.OperationTypeSubscription

		break
	}

	return astdoc, subscription, nil
}
