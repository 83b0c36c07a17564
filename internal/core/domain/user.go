package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Attribute names the remote user payload is expected to carry.
const (
	AttrID            = "id"
	AttrPassword      = "password"
	AttrRememberToken = "remember_token"
	AttrMeta          = "meta"
)

// Authenticatable is the minimal view of a principal the provider needs
// when it is handed a user by the host.
type Authenticatable interface {
	AuthIdentifier() string
	AuthPassword() string
}

// UserRecord is an authenticated principal as reported by the identity service.
// It is a snapshot: the constructor copies its input and accessors never
// expose internal maps, so a record cannot change after construction.
type UserRecord struct {
	attributes map[string]any
}

// Ensure UserRecord implements Authenticatable
var _ Authenticatable = (*UserRecord)(nil)

// NewUserRecord builds a record from a remote payload. A non-empty meta map
// is stored under the "meta" attribute.
func NewUserRecord(data, meta map[string]any) *UserRecord {
	attrs := copyMap(data)
	if attrs == nil {
		attrs = make(map[string]any)
	}
	if len(meta) > 0 {
		attrs[AttrMeta] = copyMap(meta)
	}
	return &UserRecord{attributes: attrs}
}

// AuthIdentifierName returns the attribute holding the unique identifier
func (u *UserRecord) AuthIdentifierName() string {
	return AttrID
}

// AuthIdentifier returns the user id as a string
func (u *UserRecord) AuthIdentifier() string {
	return stringify(u.attributes[AttrID])
}

// AuthPassword returns the stored password hash
func (u *UserRecord) AuthPassword() string {
	return stringify(u.attributes[AttrPassword])
}

// RememberToken returns the current remember-me token
func (u *UserRecord) RememberToken() string {
	return stringify(u.attributes[AttrRememberToken])
}

// RememberTokenName returns the attribute holding the remember-me token
func (u *UserRecord) RememberTokenName() string {
	return AttrRememberToken
}

// Get returns a copy of a single attribute
func (u *UserRecord) Get(key string) (any, bool) {
	v, ok := u.attributes[key]
	if !ok {
		return nil, false
	}
	return copyValue(v), true
}

// Meta returns the envelope metadata merged at construction, or nil
func (u *UserRecord) Meta() map[string]any {
	m, _ := u.attributes[AttrMeta].(map[string]any)
	return copyMap(m)
}

// Attributes returns a copy of every attribute
func (u *UserRecord) Attributes() map[string]any {
	return copyMap(u.attributes)
}

// MarshalJSON serializes the record without its password hash
func (u *UserRecord) MarshalJSON() ([]byte, error) {
	out := copyMap(u.attributes)
	delete(out, AttrPassword)
	delete(out, AttrRememberToken)
	return json.Marshal(out)
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	default:
		return fmt.Sprint(t)
	}
}

func copyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return copyMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = copyValue(e)
		}
		return out
	default:
		return v
	}
}
