package utils

import (
	"compress/flate"
	"compress/gzip"
	"fmt"
	"io"
	"net/http"
)

// UserAgent 访问后端时使用的标识
const UserAgent = "hellod-web/1.0"

// SetJSONHeaders 设置 JSON 接口请求头
// 显式声明 Accept-Encoding 后，Transport 不再自动解压，需要用 ReadBody 读取
func SetJSONHeaders(req *http.Request, hasBody bool) {
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Encoding", "gzip, deflate")
	if hasBody {
		req.Header.Set("Content-Type", "application/json")
	}
}

// ReadBody 按 Content-Encoding 解压并读取响应体
func ReadBody(resp *http.Response) ([]byte, error) {
	var reader io.ReadCloser
	switch resp.Header.Get("Content-Encoding") {
	case "gzip":
		var err error
		reader, err = gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("创建gzip读取器失败: %w", err)
		}
		defer reader.Close()
	case "deflate":
		reader = flate.NewReader(resp.Body)
		defer reader.Close()
	default:
		reader = resp.Body
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("读取响应失败: %w", err)
	}
	return body, nil
}
