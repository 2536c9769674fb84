package handler

import (
	"errors"
	"net/http"

	"tag-encryption-service/internal/domain"
	"tag-encryption-service/internal/middleware"
	"tag-encryption-service/internal/usecase"
	"tag-encryption-service/pkg/httputil"
)

// ProtectionHandler は保存時暗号化の準備状態のHTTPハンドラを提供する。
type ProtectionHandler struct {
	service *usecase.ReadinessService
}

// NewProtectionHandler は新しいProtectionHandlerを生成する。
func NewProtectionHandler(service *usecase.ReadinessService) *ProtectionHandler {
	return &ProtectionHandler{service: service}
}

// StatusResponse は準備状態のレスポンス形式。
type StatusResponse struct {
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

// GetStatus は保存時暗号化の準備状態を返す。
// NoPasscodeはエラーではなく、明示的な非保護状態として200で返す。
func (h *ProtectionHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	readiness := h.service.Evaluate(r.Context())
	middleware.WriteAuditLog(r.Context(), "GET_PROTECTION_STATUS", "", string(readiness.Status))
	httputil.JSON(w, http.StatusOK, StatusResponse{
		Status: string(readiness.Status),
		Reason: readiness.Reason,
	})
}

// PrepareMigration はストレージ鍵を作成し保存時暗号化を準備する。
func (h *ProtectionHandler) PrepareMigration(w http.ResponseWriter, r *http.Request) {
	readiness, err := h.service.PrepareMigration(r.Context())
	if err != nil {
		if errors.Is(err, domain.ErrDeviceNotSecured) {
			middleware.WriteAuditLog(r.Context(), "PREPARE_MIGRATION", "", "FAILED")
			httputil.Error(w, http.StatusPreconditionFailed, "DEVICE_NOT_SECURED", "device has no passcode, cannot enable protection")
			return
		}
		if errors.Is(err, domain.ErrMigrationNotRequired) {
			middleware.WriteAuditLog(r.Context(), "PREPARE_MIGRATION", "", "FAILED")
			httputil.Error(w, http.StatusConflict, "MIGRATION_NOT_REQUIRED", "storage encryption is already enabled")
			return
		}
		middleware.WriteAuditLog(r.Context(), "PREPARE_MIGRATION", "", "FAILED")
		httputil.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		return
	}

	middleware.WriteAuditLog(r.Context(), "PREPARE_MIGRATION", "", "SUCCESS")
	httputil.JSON(w, http.StatusCreated, StatusResponse{
		Status: string(readiness.Status),
	})
}
