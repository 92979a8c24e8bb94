// Package models defines client-side data models used by the offsync CLI.
package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Record is a unit of user data staged locally until the remote store
// acknowledges it.
type Record struct {
	// ID is assigned at creation and never changes.
	ID string

	// Fields is a flat mapping of named attributes.
	Fields map[string]string

	// Synchronized is set only after the remote store acknowledged the write.
	Synchronized bool

	CreatedAt time.Time
}

// Name returns the "name" attribute.
func (r *Record) Name() string {
	return r.Fields["name"]
}

// UserCredential is a stored identity: a username and a salted one-way hash
// of the password, never the password itself.
type UserCredential struct {
	ID           string
	Username     string
	PasswordHash string
}

var ErrIncorrectField = errors.New("field must be name=value")

// EncodeFields serializes fields for storage. encoding/json sorts map keys,
// so equal maps always produce identical bytes.
func EncodeFields(fields map[string]string) ([]byte, error) {
	if fields == nil {
		fields = map[string]string{}
	}
	b, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("failed to encode fields: %w", err)
	}
	return b, nil
}

// DecodeFields is the inverse of EncodeFields.
func DecodeFields(b []byte) (map[string]string, error) {
	fields := map[string]string{}
	if err := json.Unmarshal(b, &fields); err != nil {
		return nil, fmt.Errorf("failed to decode fields: %w", err)
	}
	return fields, nil
}

// FieldsFromArgs builds a field map from REPL arguments. A bare first word
// (or several) becomes the "name" attribute; further arguments must be
// key=value pairs.
//
//	add Mihai                  -> {name: Mihai}
//	add Mihai Popescu city=Iasi -> {name: "Mihai Popescu", city: Iasi}
func FieldsFromArgs(args []string) (map[string]string, error) {
	fields := map[string]string{}
	var name []string

	for _, a := range args {
		k, v, ok := strings.Cut(a, "=")
		if !ok {
			if len(fields) > 0 {
				return nil, fmt.Errorf("%w: %q", ErrIncorrectField, a)
			}
			name = append(name, a)
			continue
		}
		k = strings.TrimSpace(k)
		if k == "" {
			return nil, fmt.Errorf("%w: %q", ErrIncorrectField, a)
		}
		fields[k] = v
	}

	if len(name) > 0 {
		fields["name"] = strings.Join(name, " ")
	}
	return fields, nil
}
