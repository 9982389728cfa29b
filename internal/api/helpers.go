package api

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pageza/foodgram/backend/internal/errs"
	"github.com/pageza/foodgram/backend/internal/types"
)

const maxPageSize = 100

var errInvalidBody = errs.Invalid("invalid request body")

// respond hands err to middleware.ErrorHandler for rendering.
func respond(c *gin.Context, err error) {
	_ = c.Error(err)
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respond(c, errInvalidBody.WithCause(err))
		return false
	}
	return true
}

// pathID parses a uuid path parameter. Malformed ids cannot name a resource,
// so they are reported as not found.
func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		respond(c, errs.NotFound("not found"))
		return uuid.Nil, false
	}
	return id, true
}

func queryInt(c *gin.Context, name string, def, minimum, maximum int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < minimum || (maximum > 0 && n > maximum) {
		if maximum > 0 {
			return 0, errs.Validation(name, name+" must be an integer between "+strconv.Itoa(minimum)+" and "+strconv.Itoa(maximum))
		}
		return 0, errs.Validation(name, name+" must be an integer of at least "+strconv.Itoa(minimum))
	}
	return n, nil
}

// pageFrom reads page and limit query parameters.
func pageFrom(c *gin.Context, defaultSize int) (types.Page, error) {
	number, err := queryInt(c, "page", 1, 1, 0)
	if err != nil {
		return types.Page{}, err
	}
	limit, err := queryInt(c, "limit", defaultSize, 1, maxPageSize)
	if err != nil {
		return types.Page{}, err
	}
	return types.Page{Number: number, Limit: limit}, nil
}

// recipesLimit reads the recipes_limit parameter of subscription views; 0
// means no limit.
func recipesLimit(c *gin.Context) (int, error) {
	return queryInt(c, "recipes_limit", 0, 0, 0)
}

// flag reads boolean filters that accept 1/0 and true/false.
func flag(c *gin.Context, name string) bool {
	v, err := strconv.ParseBool(c.Query(name))
	return err == nil && v
}

// paginate wraps one page of results with absolute next/previous links.
func paginate[T any](c *gin.Context, results []T, total int64, page types.Page) types.PageResponse[T] {
	resp := types.PageResponse[T]{Count: total, Results: results}
	if int64(page.Number*page.Limit) < total {
		resp.Next = pageURL(c, page.Number+1)
	}
	if page.Number > 1 {
		resp.Previous = pageURL(c, page.Number-1)
	}
	return resp
}

func pageURL(c *gin.Context, number int) *string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	q := c.Request.URL.Query()
	if number == 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(number))
	}
	u := url.URL{Scheme: scheme, Host: c.Request.Host, Path: c.Request.URL.Path, RawQuery: q.Encode()}
	s := u.String()
	return &s
}

func noContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
