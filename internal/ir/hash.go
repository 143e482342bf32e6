package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
)

// DomainShape prefixes statement shape hashes. The version suffix enables
// future algorithm migration.
const DomainShape = "cqlmap/shape/v1"

// shapeNamespace roots the UUIDv5 shape identifiers.
var shapeNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/roach88/cqlmap/shape"))

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ShapeKey returns the content-addressed key of a statement shape
// description (see DescribeBindings). Equal descriptions always yield
// equal keys.
func ShapeKey(desc map[string]any) (string, error) {
	canonical, err := MarshalCanonical(desc)
	if err != nil {
		return "", fmt.Errorf("ShapeKey: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainShape, canonical), nil
}

// ShapeID derives a stable UUIDv5 from a shape key, for logs and catalogs.
func ShapeID(key string) uuid.UUID {
	return uuid.NewSHA1(shapeNamespace, []byte(key))
}

// DescribeBindings encodes the shape-relevant part of bindings: property,
// column, value structure and conversion flag. Operand values are excluded.
func DescribeBindings(bindings []PropertyBinding) []any {
	out := make([]any, len(bindings))
	for i, b := range bindings {
		out[i] = map[string]any{
			"property": b.Property,
			"column":   b.Column,
			"value":    describeValue(b.Value),
			"convert":  b.NeedsConversion,
		}
	}
	return out
}

func describeValue(v Value) any {
	switch val := v.(type) {
	case Scalar:
		return map[string]any{"kind": KindScalar, "op": val.Op}
	case Composite:
		return map[string]any{
			"kind":  KindComposite,
			"op":    val.Op,
			"left":  describeValue(val.Left),
			"right": describeValue(val.Right),
		}
	case Assignment:
		return map[string]any{"kind": KindAssignment, "sign": val.Sign, "inverted": val.Inverted}
	default:
		return KindLiteral
	}
}
