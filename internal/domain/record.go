package domain

// TagRecord はワイヤレスタグに書き込む収納ボックスのサマリを表す。
// 暗号化導入前の旧フォーマットと同じJSONフィールドを持つ。
type TagRecord struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	RoomName string   `json:"room_name,omitempty"`
	Sealed   bool     `json:"sealed,omitempty"`
	Fragile  bool     `json:"fragile,omitempty"`
	Quantity int      `json:"quantity,omitempty"`
	Items    []string `json:"items,omitempty"`
}

// Provenance はデコードしたレコードの由来を表す。
type Provenance string

const (
	// ProvenanceEncrypted は暗号化エンベロープ経由でデコードされたことを表す。
	ProvenanceEncrypted Provenance = "encrypted"
	// ProvenanceLegacyUnencrypted は旧平文フォーマットのフォールバック経由を表す。
	ProvenanceLegacyUnencrypted Provenance = "legacy_unencrypted"
)
