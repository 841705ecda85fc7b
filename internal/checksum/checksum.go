package checksum

import (
	"crypto/sha256"
	"fmt"
	"strings"
)

// separator не встречается в текстовых полях записи
const separator = "\x1f"

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// GenerateRecordHash генерирует SHA256 хеш значений записи
// Формула: SHA256(v1 US v2 US ... vn), US = 0x1F
func (g *Generator) GenerateRecordHash(values []string) string {
	content := strings.Join(values, separator)

	// Вычисляем SHA256
	hash := sha256.Sum256([]byte(content))

	// Возвращаем hex
	return fmt.Sprintf("%x", hash)
}
