package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	appErrors "github.com/maktab-uz/maktab-api/pkg/errors"
)

// pathID parses an int64 id from a route parameter.
func pathID(c *gin.Context, param string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(param), 10, 64)
	if err != nil || id <= 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "invalid "+param)
	}
	return id, nil
}

// queryInt64 parses an optional int64 query parameter, zero when absent.
func queryInt64(c *gin.Context, name string) (int64, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, appErrors.Clone(appErrors.ErrValidation, "invalid "+name)
	}
	return v, nil
}

// queryInt64Ptr parses an optional int64 query parameter, nil when absent.
func queryInt64Ptr(c *gin.Context, name string) (*int64, error) {
	v, err := queryInt64(c, name)
	if err != nil {
		return nil, err
	}
	if v == 0 {
		return nil, nil
	}
	return &v, nil
}
