package domain

import "errors"

var (
	// ErrDeviceNotSecured はデバイスにパスコードが無く鍵を作成できない場合のエラー。
	// 回復可能な状態であり、呼び出し側はユーザーにデバイスの保護を促す。
	ErrDeviceNotSecured = errors.New("device is not secured")

	// ErrKeyNotFound は指定された用途の鍵がまだ作成されていない場合のエラー。
	// バッキングストアの読み取り失敗とは区別される。
	ErrKeyNotFound = errors.New("key not found")

	// ErrEntryExists は同じエントリが既にコミット済みの場合のエラー。
	// 呼び出し側は上書きせず、先にコミットされた鍵を読み直す。
	ErrEntryExists = errors.New("entry already exists")

	// ErrBackingStore はセキュアストレージの不透明な失敗を表すエラー。
	// プラットフォームのエラーをラップして伝搬し、この層では再試行しない。
	ErrBackingStore = errors.New("backing store failure")

	// ErrMalformedKey は鍵長が不正な場合のエラー。
	ErrMalformedKey = errors.New("malformed key")

	// ErrMalformedNonce はナンス長が12バイトでない場合のエラー。
	ErrMalformedNonce = errors.New("malformed nonce")

	// ErrAuthenticationFailed は認証タグの検証に失敗した場合のエラー。
	// 鍵違いまたは改ざんを示し、決して平文として扱わない。
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrUnrecognizedFormat はエンベロープとしても旧フォーマットとしても解釈できない場合のエラー。
	ErrUnrecognizedFormat = errors.New("unrecognized payload format")

	// ErrDecryptionFailed はエンベロープを認識した後の復号過程で失敗した場合のエラー。
	// 認識後は旧フォーマットへのフォールバックを行わない。
	ErrDecryptionFailed = errors.New("decryption failed")

	// ErrVersionUnsupported はエンベロープのバージョンが現行版でない場合のエラー。
	ErrVersionUnsupported = errors.New("unsupported envelope version")

	// ErrMigrationNotRequired はストレージ鍵が既に存在する状態で準備を要求した場合のエラー。
	ErrMigrationNotRequired = errors.New("migration not required")
)
