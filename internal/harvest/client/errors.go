package client

import (
	"errors"
	"net/http"

	"reddit-harvest/internal/harvest/ratelimit"

	"github.com/vartanbeno/go-reddit/v2/reddit"
)

// Classify 把被包装客户端的失败归入退避分类：
// 429 → overload，5xx → server_error，其余不重试
func Classify(err error) ratelimit.Kind {
	var rateErr *reddit.RateLimitError
	if errors.As(err, &rateErr) {
		return ratelimit.KindOverload
	}

	var apiErr *reddit.ErrorResponse
	if errors.As(err, &apiErr) {
		if apiErr.Response != nil {
			switch {
			case apiErr.Response.StatusCode == http.StatusTooManyRequests:
				return ratelimit.KindOverload
			case apiErr.Response.StatusCode >= http.StatusInternalServerError:
				return ratelimit.KindServerError
			}
		}
	}

	return ratelimit.KindUnclassified
}
