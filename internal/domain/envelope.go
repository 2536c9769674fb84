package domain

const (
	// NonceSize はAES-GCMのナンス長（96 bits = 12 bytes）。
	NonceSize = 12
	// TagSize はAES-GCMの認証タグ長（128 bits = 16 bytes）。
	TagSize = 16
	// EnvelopeVersion は現行のワイヤフォーマットバージョン。
	// これ以外のバージョンは解釈せず拒否する。
	EnvelopeVersion = 1
)

// EncryptedBlob はAEAD暗号化の結果を表す。
// ナンスは鍵ごとに暗号化のたびに新規生成され、再利用されない。
type EncryptedBlob struct {
	Ciphertext []byte
	Nonce      []byte
	Tag        []byte
}

// Envelope はタグに書き込むバージョン付きワイヤフォーマット。
// IVは12バイト、Tagは16バイトにデコードできなければならない。
type Envelope struct {
	Encrypted bool   `json:"encrypted"`
	Version   int    `json:"version"`
	IV        string `json:"iv"`
	Data      string `json:"data"`
	Tag       string `json:"tag"`
}
