// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"log/slog"
	"time"
)

// WriteAuditLog は監査ログを出力する。
// 鍵素材や平文レコードの内容は決してログに含めない。
func WriteAuditLog(ctx context.Context, operation string, provenance string, result string) {
	slog.InfoContext(ctx, "tag operation completed",
		"operation", operation,
		"provenance", provenance,
		"result", result,
		"timestamp", time.Now().UTC().Format(time.RFC3339),
	)
}
