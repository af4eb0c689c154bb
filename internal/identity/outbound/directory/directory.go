// Package directory persists registered users. The file and object drivers
// keep the whole set as one JSON array of {id, name, email, createdAt}; the
// postgres driver keeps one row per user.
package directory

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/samber/lo"
	"github.com/shandysiswandi/otpauth/internal/identity/entity"
)

func decodeUsers(data []byte) ([]entity.User, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var users []entity.User
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func encodeUsers(users []entity.User) ([]byte, error) {
	if users == nil {
		users = []entity.User{}
	}
	return json.MarshalIndent(users, "", "  ")
}

// findByEmail matches emails case-insensitively.
func findByEmail(users []entity.User, email string) (entity.User, bool) {
	return lo.Find(users, func(u entity.User) bool {
		return strings.EqualFold(u.Email, email)
	})
}
