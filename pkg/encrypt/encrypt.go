package encrypt

import (
	"crypto/ed25519"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"

	"golang.org/x/crypto/blake2b"
)

// 定義錯誤信息
var (
	ErrBadSecretKey = errors.New("secret key must be a 32 byte seed or a 64 byte ed25519 key")
	ErrBadSignature = errors.New("signature does not match")
)

// deleteContentPrefix 刪除群組成員內容時, 管理員簽章的固定前綴
const deleteContentPrefix = "DELETE_CONTENT"

// MessageHash swarm 儲存訊息的 hash: base64(blake2b-256(payload)), 不含 padding
func MessageHash(payload []byte) string {
	sum := blake2b.Sum256(payload)
	return base64.RawStdEncoding.EncodeToString(sum[:])
}

// privateKey accept seed (32) or full ed25519 secret key (64)
func privateKey(secretKey []byte) (ed25519.PrivateKey, error) {
	switch len(secretKey) {
	case ed25519.SeedSize:
		return ed25519.NewKeyFromSeed(secretKey), nil
	case ed25519.PrivateKeySize:
		return ed25519.PrivateKey(secretKey), nil
	default:
		return nil, ErrBadSecretKey
	}
}

// DeleteContentSigningPayload 組出要簽的內容
func DeleteContentSigningPayload(timestampMs int64, memberSessionIDs, messageHashes []string) []byte {
	buf := []byte(deleteContentPrefix)
	buf = strconv.AppendInt(buf, timestampMs, 10)
	for _, id := range memberSessionIDs {
		buf = append(buf, id...)
	}
	for _, h := range messageHashes {
		buf = append(buf, h...)
	}
	return buf
}

// SignDeleteContent 用群組管理員 secret key 簽章
func SignDeleteContent(secretKey []byte, timestampMs int64, memberSessionIDs, messageHashes []string) ([]byte, error) {
	priv, err := privateKey(secretKey)
	if err != nil {
		return nil, err
	}
	return ed25519.Sign(priv, DeleteContentSigningPayload(timestampMs, memberSessionIDs, messageHashes)), nil
}

// VerifyDeleteContent 驗證管理員簽章
func VerifyDeleteContent(publicKey ed25519.PublicKey, sig []byte, timestampMs int64, memberSessionIDs, messageHashes []string) error {
	if len(publicKey) != ed25519.PublicKeySize {
		return fmt.Errorf("public key length %d", len(publicKey))
	}
	if !ed25519.Verify(publicKey, DeleteContentSigningPayload(timestampMs, memberSessionIDs, messageHashes), sig) {
		return ErrBadSignature
	}
	return nil
}
