package promotion

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnknownExtensionKind is returned when an extension envelope carries a
// kind no variant claims. Decoding still succeeds via UnknownExtension; this
// error only surfaces on encode of a malformed envelope.
var ErrUnknownExtensionKind = errors.New("promotion: unknown extension kind")

// Extension is platform-specific data riding along with a canonical
// discount. Each platform contributes one typed variant; anything else is
// preserved verbatim as UnknownExtension so round-trips stay lossless.
type Extension interface {
	// ExtensionKind is the discriminant stored in the JSON envelope
	ExtensionKind() string
}

const (
	extensionKindCommerce7 = "commerce7"
	extensionKindShopify   = "shopify"
)

// Commerce7Extension holds Commerce7 fields with no canonical equivalent
type Commerce7Extension struct {
	// PromotionUsage restricts how often the promotion can apply per order
	PromotionUsage string `json:"promotion_usage,omitempty"`
	// ChannelWeb / ChannelPOS / ChannelClub select sales channels
	ChannelWeb  bool `json:"channel_web"`
	ChannelPOS  bool `json:"channel_pos"`
	ChannelClub bool `json:"channel_club"`
}

// ExtensionKind implements Extension
func (Commerce7Extension) ExtensionKind() string { return extensionKindCommerce7 }

// ShopifyExtension holds Shopify price-rule fields with no canonical
// equivalent
type ShopifyExtension struct {
	// OncePerCustomer limits each customer to a single use
	OncePerCustomer bool `json:"once_per_customer"`
	// AllocationLimit caps how many times the rule applies per order
	AllocationLimit int `json:"allocation_limit,omitempty"`
}

// ExtensionKind implements Extension
func (ShopifyExtension) ExtensionKind() string { return extensionKindShopify }

// UnknownExtension preserves extension data from a platform or version this
// build does not model. Raw is the original JSON payload.
type UnknownExtension struct {
	Kind string          `json:"kind"`
	Raw  json.RawMessage `json:"raw,omitempty"`
}

// ExtensionKind implements Extension
func (u UnknownExtension) ExtensionKind() string { return u.Kind }

// extensionEnvelope is the persisted/wire form of an Extension
type extensionEnvelope struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data,omitempty"`
}

// MarshalExtension encodes an Extension into its tagged envelope.
// A nil extension encodes to null.
func MarshalExtension(e Extension) ([]byte, error) {
	if e == nil {
		return []byte("null"), nil
	}
	var data []byte
	var err error
	switch v := e.(type) {
	case UnknownExtension:
		data = v.Raw
	case *UnknownExtension:
		data = v.Raw
	default:
		data, err = json.Marshal(e)
		if err != nil {
			return nil, fmt.Errorf("promotion: marshal extension: %w", err)
		}
	}
	if e.ExtensionKind() == "" {
		return nil, ErrUnknownExtensionKind
	}
	return json.Marshal(extensionEnvelope{Kind: e.ExtensionKind(), Data: data})
}

// UnmarshalExtension decodes a tagged envelope into the matching variant.
// Unrecognized kinds decode to UnknownExtension rather than failing, so
// data written by a newer build survives a round-trip through this one.
func UnmarshalExtension(data []byte) (Extension, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}
	var env extensionEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("promotion: unmarshal extension: %w", err)
	}
	switch env.Kind {
	case extensionKindCommerce7:
		var ext Commerce7Extension
		if err := json.Unmarshal(env.Data, &ext); err != nil {
			return nil, fmt.Errorf("promotion: unmarshal commerce7 extension: %w", err)
		}
		return ext, nil
	case extensionKindShopify:
		var ext ShopifyExtension
		if err := json.Unmarshal(env.Data, &ext); err != nil {
			return nil, fmt.Errorf("promotion: unmarshal shopify extension: %w", err)
		}
		return ext, nil
	default:
		return UnknownExtension{Kind: env.Kind, Raw: env.Data}, nil
	}
}
