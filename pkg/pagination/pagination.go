package pagination

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	DefaultSkip  = 0
	DefaultLimit = 100
	MaxLimit     = 500
	MinLimit     = 1
)

// Params holds validated skip/limit query parameters
type Params struct {
	Skip  int
	Limit int
}

// Parse extracts skip/limit from the query string. Missing values take the
// defaults and limits above MaxLimit are clamped; anything else malformed is
// an error.
func Parse(c *gin.Context) (Params, error) {
	skip, err := intQuery(c, "skip", DefaultSkip)
	if err != nil {
		return Params{}, err
	}
	limit, err := intQuery(c, "limit", DefaultLimit)
	if err != nil {
		return Params{}, err
	}

	if skip < 0 {
		return Params{}, fmt.Errorf("skip must be greater than or equal to 0")
	}
	if limit < MinLimit {
		return Params{}, fmt.Errorf("limit must be greater than or equal to %d", MinLimit)
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	return Params{Skip: skip, Limit: limit}, nil
}

func intQuery(c *gin.Context, key string, def int) (int, error) {
	raw, ok := c.GetQuery(key)
	if !ok || raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", key)
	}
	return v, nil
}
