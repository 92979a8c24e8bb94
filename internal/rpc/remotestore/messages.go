package remotestore

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"
)

const (
	keyID           = "id"
	keyFields       = "fields"
	keyUsername     = "username"
	keyPasswordHash = "password_hash"
)

// ErrMalformed is returned when a message lacks required keys or carries
// values of the wrong kind.
var ErrMalformed = errors.New("malformed message")

// User is the wire form of a stored credential.
type User struct {
	ID           string
	Username     string
	PasswordHash string
}

// RecordMessage encodes a record upsert request.
func RecordMessage(id string, fields map[string]string) (*structpb.Struct, error) {
	f := make(map[string]any, len(fields))
	for k, v := range fields {
		f[k] = v
	}
	return structpb.NewStruct(map[string]any{keyID: id, keyFields: f})
}

// ParseRecordMessage decodes a record upsert request.
func ParseRecordMessage(s *structpb.Struct) (string, map[string]string, error) {
	id, err := stringField(s, keyID)
	if err != nil {
		return "", nil, err
	}

	raw, ok := s.GetFields()[keyFields]
	if !ok {
		return "", nil, fmt.Errorf("%w: missing %q", ErrMalformed, keyFields)
	}
	fs := raw.GetStructValue()
	if fs == nil {
		return "", nil, fmt.Errorf("%w: %q is not an object", ErrMalformed, keyFields)
	}

	fields := make(map[string]string, len(fs.GetFields()))
	for k, v := range fs.GetFields() {
		sv, ok := v.GetKind().(*structpb.Value_StringValue)
		if !ok {
			return "", nil, fmt.Errorf("%w: field %q is not a string", ErrMalformed, k)
		}
		fields[k] = sv.StringValue
	}
	return id, fields, nil
}

// UserMessage encodes a credential.
func UserMessage(u User) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		keyID:           u.ID,
		keyUsername:     u.Username,
		keyPasswordHash: u.PasswordHash,
	})
}

// ParseUserMessage decodes a credential.
func ParseUserMessage(s *structpb.Struct) (User, error) {
	var u User
	var err error
	if u.ID, err = stringField(s, keyID); err != nil {
		return User{}, err
	}
	if u.Username, err = stringField(s, keyUsername); err != nil {
		return User{}, err
	}
	if u.PasswordHash, err = stringField(s, keyPasswordHash); err != nil {
		return User{}, err
	}
	return u, nil
}

func stringField(s *structpb.Struct, key string) (string, error) {
	v, ok := s.GetFields()[key]
	if !ok {
		return "", fmt.Errorf("%w: missing %q", ErrMalformed, key)
	}
	sv, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", fmt.Errorf("%w: %q is not a string", ErrMalformed, key)
	}
	return sv.StringValue, nil
}
