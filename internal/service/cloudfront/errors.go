package cloudfront

import (
	"errors"

	"github.com/aws/smithy-go"
)

var (
	// ErrProviderUnavailable はCloudFront API呼び出しの失敗を表す
	ErrProviderUnavailable = errors.New("cloudfront provider unavailable")
	// ErrInvalidURL はパージ対象URLが解析できないことを表す
	ErrInvalidURL = errors.New("invalid url")
)

// ErrorCode はプロバイダーエラーからAPIエラーコードを取り出す。APIエラーでなければ "unknown"
func ErrorCode(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return "unknown"
}
