// Package qrtoken генерирует непрозрачные токены для QR-кодов.
// Токен уникален для каждого выпуска и не восстанавливается из
// идентификаторов визита.
package qrtoken

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// New возвращает токен для пары (посетитель, визит). Случайная часть
// берётся из uuid, поэтому повторный выпуск даёт другой токен.
func New(visitorID, visitDetailsID string) string {
	raw := fmt.Sprintf("%s:%s:%s:%d", uuid.NewString(), visitorID, visitDetailsID, time.Now().UnixNano())
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
