package session

import (
	"encoding/json"
	"errors"
	"strings"
)

var errUserRecordCorrupt = errors.New("persisted user record corrupt")

// encodeUser serializes the user record for durable storage.
func encodeUser(user User) (string, error) {
	data, err := json.Marshal(user)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// decodeUser parses a persisted user record. A record that unmarshals but
// lacks an id or role is still corrupt: it would produce a session the
// authorization gate cannot evaluate.
func decodeUser(raw string) (User, error) {
	var user User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return User{}, errUserRecordCorrupt
	}
	if strings.TrimSpace(user.ID) == "" || strings.TrimSpace(user.Role) == "" {
		return User{}, errUserRecordCorrupt
	}
	return user, nil
}
