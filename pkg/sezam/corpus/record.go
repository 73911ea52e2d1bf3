package corpus

import (
	"errors"
	"strings"
)

// Record is one legal text as exported by the Légifrance / EUR-Lex
// fetchers. Title and Text are pointers so that a JSON null stays
// distinguishable from an empty string.
type Record struct {
	ID       string   `json:"id"`
	Title    *string  `json:"titre"`
	Text     *string  `json:"text"`
	Emetteur string   `json:"emetteur"`
	Nature   string   `json:"nature"`
	Date     string   `json:"date"`
	Subjects []string `json:"subjects"`
}

// Validate checks if the record has required fields
func (r *Record) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return errors.New("record id is required")
	}
	return nil
}

// TitleOrEmpty returns the title, or "" when it is missing.
func (r *Record) TitleOrEmpty() string {
	if r.Title == nil {
		return ""
	}
	return *r.Title
}

// TextOrEmpty returns the body text, or "" when it is missing.
func (r *Record) TextOrEmpty() string {
	if r.Text == nil {
		return ""
	}
	return *r.Text
}

// Str returns a pointer to s, for building records by hand.
func Str(s string) *string {
	return &s
}
