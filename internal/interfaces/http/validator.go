package http

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"loremaster/internal/apperr"
	"loremaster/internal/entities"
)

// Input validation constants
const (
	MinUsernameLength = 3
	MaxUsernameLength = 50
	MaxSearchLength   = 100
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// ValidUsername checks if a username is safe (alphanumeric + underscore + hyphen)
func ValidUsername(s string) bool {
	if len(s) < MinUsernameLength || len(s) > MaxUsernameLength {
		return false
	}
	return usernamePattern.MatchString(s)
}

// SanitizeString removes null bytes and invalid UTF-8
func SanitizeString(s string) string {
	s = strings.ReplaceAll(s, "\x00", "")

	if !utf8.ValidString(s) {
		v := make([]rune, 0, len(s))
		for _, r := range s {
			if r != utf8.RuneError {
				v = append(v, r)
			}
		}
		s = string(v)
	}
	return s
}

// TruncateString truncates s to at most maxLen runes.
func TruncateString(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	return string([]rune(s)[:maxLen])
}

// pathID parses a positive integer path parameter.
func pathID(c *gin.Context, name string) (int, error) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		return 0, apperr.Validation("invalid " + name)
	}
	return id, nil
}

// pathEntityType parses :entityType, accepting "world-info" as well as "world_info".
func pathEntityType(c *gin.Context) (entities.EntityType, error) {
	t := entities.EntityType(strings.ReplaceAll(c.Param("entityType"), "-", "_"))
	if !t.Valid() {
		return "", apperr.Validation("unknown entity type")
	}
	return t, nil
}

// listFilter reads the optional list query parameters. parent_id=root selects
// top-level locations.
func listFilter(c *gin.Context) (entities.ListFilter, error) {
	f := entities.ListFilter{
		Type:     strings.TrimSpace(c.Query("type")),
		Status:   strings.TrimSpace(c.Query("status")),
		Category: strings.TrimSpace(c.Query("category")),
		Search:   TruncateString(SanitizeString(strings.TrimSpace(c.Query("search"))), MaxSearchLength),
	}
	switch p := c.Query("parent_id"); p {
	case "":
	case "root", "null":
		f.RootOnly = true
	default:
		id, err := strconv.Atoi(p)
		if err != nil || id <= 0 {
			return f, apperr.Validation("invalid parent_id")
		}
		f.ParentID = &id
	}
	return f, nil
}
