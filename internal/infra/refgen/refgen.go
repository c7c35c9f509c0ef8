package refgen

import (
	"strings"

	"github.com/google/uuid"
)

// ReferenceLength is the number of characters in a generated order reference.
const ReferenceLength = 10

// 注文の参照コード。UUIDの先頭を大文字16進で使う
type UUIDReferenceGenerator struct{}

func (UUIDReferenceGenerator) NewReference() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(id[:ReferenceLength])
}
