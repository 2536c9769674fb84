// Package handler はHTTPハンドラを提供する。
package handler

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"regexp"

	"tag-encryption-service/internal/domain"
	"tag-encryption-service/internal/middleware"
	"tag-encryption-service/internal/usecase"
	"tag-encryption-service/pkg/httputil"
)

var recordIDRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// TagHandler はタグペイロードのHTTPハンドラを提供する。
type TagHandler struct {
	service *usecase.TagService
}

// NewTagHandler は新しいTagHandlerを生成する。
func NewTagHandler(service *usecase.TagService) *TagHandler {
	return &TagHandler{service: service}
}

// TagRecordPayload はタグレコードのリクエスト・レスポンス形式。
type TagRecordPayload struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	RoomName string   `json:"room_name,omitempty"`
	Sealed   bool     `json:"sealed,omitempty"`
	Fragile  bool     `json:"fragile,omitempty"`
	Quantity int      `json:"quantity,omitempty"`
	Items    []string `json:"items,omitempty"`
}

// EncodeRequest はエンコードのリクエスト形式。
type EncodeRequest struct {
	Record TagRecordPayload `json:"record"`
}

// EncodeResponse はエンコードのレスポンス形式。Payloadはbase64。
type EncodeResponse struct {
	Payload string `json:"payload"`
}

// DecodeRequest はデコードのリクエスト形式。Payloadはbase64。
type DecodeRequest struct {
	Payload string `json:"payload"`
}

// DecodeResponse はデコードのレスポンス形式。
type DecodeResponse struct {
	Record     TagRecordPayload `json:"record"`
	Provenance string           `json:"provenance"`
}

func toDomainRecord(p TagRecordPayload) *domain.TagRecord {
	return &domain.TagRecord{
		ID:       p.ID,
		Name:     p.Name,
		RoomName: p.RoomName,
		Sealed:   p.Sealed,
		Fragile:  p.Fragile,
		Quantity: p.Quantity,
		Items:    p.Items,
	}
}

func toPayloadRecord(r *domain.TagRecord) TagRecordPayload {
	return TagRecordPayload{
		ID:       r.ID,
		Name:     r.Name,
		RoomName: r.RoomName,
		Sealed:   r.Sealed,
		Fragile:  r.Fragile,
		Quantity: r.Quantity,
		Items:    r.Items,
	}
}

func validateRecord(p TagRecordPayload) error {
	if p.ID == "" || len(p.ID) > 64 || !recordIDRegex.MatchString(p.ID) {
		return errors.New("record id must be 1-64 characters of [a-zA-Z0-9_-]")
	}
	if p.Name == "" {
		return errors.New("record name is required")
	}
	return nil
}

// EncodeTag はレコードを暗号化してタグ書き込み用ペイロードを返す。
func (h *TagHandler) EncodeTag(w http.ResponseWriter, r *http.Request) {
	var req EncodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body")
		return
	}
	if err := validateRecord(req.Record); err != nil {
		httputil.Error(w, http.StatusBadRequest, "INVALID_RECORD", "invalid record format")
		return
	}

	payload, err := h.service.EncodeTag(r.Context(), toDomainRecord(req.Record))
	if err != nil {
		if errors.Is(err, domain.ErrDeviceNotSecured) {
			middleware.WriteAuditLog(r.Context(), "ENCODE_TAG", "", "FAILED")
			httputil.Error(w, http.StatusPreconditionFailed, "DEVICE_NOT_SECURED", "device has no passcode, cannot create key")
			return
		}
		middleware.WriteAuditLog(r.Context(), "ENCODE_TAG", "", "FAILED")
		httputil.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		return
	}

	middleware.WriteAuditLog(r.Context(), "ENCODE_TAG", string(domain.ProvenanceEncrypted), "SUCCESS")
	httputil.JSON(w, http.StatusOK, EncodeResponse{
		Payload: base64.StdEncoding.EncodeToString(payload),
	})
}

// DecodeTag はタグから読み取ったペイロードをレコードにデコードする。
func (h *TagHandler) DecodeTag(w http.ResponseWriter, r *http.Request) {
	var req DecodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body")
		return
	}
	payload, err := base64.StdEncoding.DecodeString(req.Payload)
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "payload must be base64")
		return
	}

	record, provenance, err := h.service.DecodeTag(r.Context(), payload)
	if err != nil {
		middleware.WriteAuditLog(r.Context(), "DECODE_TAG", "", "FAILED")
		switch {
		case errors.Is(err, domain.ErrVersionUnsupported):
			httputil.Error(w, http.StatusBadRequest, "VERSION_UNSUPPORTED", "envelope version is not supported")
		case errors.Is(err, domain.ErrUnrecognizedFormat):
			httputil.Error(w, http.StatusBadRequest, "UNRECOGNIZED_FORMAT", "payload is neither an envelope nor a legacy record")
		case errors.Is(err, domain.ErrDecryptionFailed):
			httputil.Error(w, http.StatusUnprocessableEntity, "DECRYPTION_FAILED", "envelope could not be decrypted")
		default:
			httputil.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return
	}

	middleware.WriteAuditLog(r.Context(), "DECODE_TAG", string(provenance), "SUCCESS")
	httputil.JSON(w, http.StatusOK, DecodeResponse{
		Record:     toPayloadRecord(record),
		Provenance: string(provenance),
	})
}
