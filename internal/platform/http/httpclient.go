package http

import (
	"net"
	"net/http"
	"time"
)

// NewHTTPClient は取引所API呼び出し用のHTTPクライアントを作成します。
// http.DefaultClientはタイムアウトを持たないため、外部呼び出しには必ずこれを使います。
//
// timeoutはリクエスト全体の上限です。同一ホストへの連続呼び出しが多いため、
// ホストごとのアイドル接続数を既定の2から引き上げています。
func NewHTTPClient(timeout time.Duration) *http.Client {
	t := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          50,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ResponseHeaderTimeout: timeout,
	}
	return &http.Client{Timeout: timeout, Transport: t}
}
