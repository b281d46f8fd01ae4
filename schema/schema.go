// Package schema holds the GraphQL schema served on /graphql. It only exposes the
// identity resolved by the auth middleware; application types belong elsewhere.
package schema

import (
	"auth-graphql/auth"
	"auth-graphql/models"

	"github.com/graphql-go/graphql"
)

var userType = graphql.NewObject(graphql.ObjectConfig{
	Name: "UserType",
	Fields: graphql.Fields{
		"id":    &graphql.Field{Type: graphql.ID},
		"email": &graphql.Field{Type: graphql.String},
		"name":  &graphql.Field{Type: graphql.String},
	},
})

func New() (graphql.Schema, error) {
	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "RootQueryType",
		Fields: graphql.Fields{
			"user": &graphql.Field{
				Type:    userType,
				Resolve: resolveUser,
			},
		},
	})

	mutation := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"logout": &graphql.Field{
				Type:    userType,
				Resolve: resolveLogout,
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    query,
		Mutation: mutation,
	})
}

func resolveUser(p graphql.ResolveParams) (interface{}, error) {
	user, ok := auth.UserFromContext(p.Context)
	if !ok {
		return nil, nil
	}
	return toGraphQL(user), nil
}

// resolveLogout returns the user that was logged out, or null for anonymous requests.
func resolveLogout(p graphql.ResolveParams) (interface{}, error) {
	user, ok := auth.UserFromContext(p.Context)
	if err := auth.LogOut(p.Context); err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return toGraphQL(user), nil
}

func toGraphQL(user *models.User) map[string]interface{} {
	return map[string]interface{}{
		"id":    user.ID.Hex(),
		"email": user.Email,
		"name":  user.Name,
	}
}
