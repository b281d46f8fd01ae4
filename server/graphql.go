package server

import (
	"bytes"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/graphql-go/handler"
)

// requireQuery rejects GraphQL requests that carry no query with 400 instead of letting
// the executor answer 200 with an error. The body is restored for the next handler.
func requireQuery() gin.HandlerFunc {
	return func(c *gin.Context) {
		var body []byte
		if c.Request.Body != nil {
			var err error
			body, err = io.ReadAll(c.Request.Body)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusBadRequest, graphqlError("Failed to read request body."))
				return
			}
			_ = c.Request.Body.Close()
		}

		peek := c.Request.Clone(c.Request.Context())
		peek.Body = io.NopCloser(bytes.NewReader(body))
		if opts := handler.NewRequestOptions(peek); opts == nil || opts.Query == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, graphqlError("Must provide query string."))
			return
		}

		c.Request.Body = io.NopCloser(bytes.NewReader(body))
		c.Next()
	}
}

func graphqlError(message string) gin.H {
	return gin.H{"errors": []gin.H{{"message": message}}}
}
