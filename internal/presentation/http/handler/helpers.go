package handler

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/invoicely/internal/presentation/http/dto/request"
	"github.com/sangkips/invoicely/internal/presentation/http/dto/response"
)

// bindListQuery reads page, per_page and search. It writes a 400 and
// returns false on malformed input.
func bindListQuery(c *gin.Context) (*request.ListRequest, bool) {
	var q request.ListRequest
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return nil, false
	}
	q.Validate()
	q.Search = strings.TrimSpace(q.Search)
	return &q, true
}

// bindJSON decodes the request body into dst. It writes a 400 and returns
// false when the body is not valid JSON for dst.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return false
	}
	return true
}
