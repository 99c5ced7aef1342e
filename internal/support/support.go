// Package support validates and stores messages sent through the contact form.
package support

import (
	"context"
	"database/sql"
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	minNameLen    = 2
	minSubjectLen = 5
	minMessageLen = 10
	maxMessageLen = 1000
)

// ContactForm is a visitor's support request.
type ContactForm struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// FieldErrors maps a form field to its validation message.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	parts := make([]string, 0, len(e))
	for field, msg := range e {
		parts = append(parts, field+": "+msg)
	}
	return "invalid contact form: " + strings.Join(parts, "; ")
}

// Normalize trims surrounding whitespace from every field.
func (f ContactForm) Normalize() ContactForm {
	return ContactForm{
		Name:    strings.TrimSpace(f.Name),
		Email:   strings.TrimSpace(f.Email),
		Subject: strings.TrimSpace(f.Subject),
		Message: strings.TrimSpace(f.Message),
	}
}

// Validate returns FieldErrors when any field is out of bounds, nil otherwise.
func (f ContactForm) Validate() error {
	errs := FieldErrors{}

	if utf8.RuneCountInString(f.Name) < minNameLen {
		errs["name"] = "Name must be at least 2 characters."
	}
	if addr, err := mail.ParseAddress(f.Email); err != nil || addr.Address != f.Email {
		errs["email"] = "Please enter a valid email address."
	}
	if utf8.RuneCountInString(f.Subject) < minSubjectLen {
		errs["subject"] = "Subject must be at least 5 characters."
	}
	switch n := utf8.RuneCountInString(f.Message); {
	case n < minMessageLen:
		errs["message"] = "Message must be at least 10 characters."
	case n > maxMessageLen:
		errs["message"] = "Message cannot exceed 1000 characters."
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Store persists accepted contact messages.
type Store struct {
	db *sql.DB
}

// NewStore returns a Store writing to db.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Save trims the form, validates the trimmed values and stores them,
// returning the new message id. Padding never counts toward a minimum length.
func (s *Store) Save(ctx context.Context, form ContactForm) (string, error) {
	form = form.Normalize()
	if err := form.Validate(); err != nil {
		return "", err
	}

	id := uuid.NewString()
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO contact_messages (id, name, email, subject, message)
		VALUES (?, ?, ?, ?, ?)
	`, id, form.Name, form.Email, form.Subject, form.Message); err != nil {
		return "", fmt.Errorf("insert contact message: %w", err)
	}

	return id, nil
}

// Count returns the number of stored messages.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM contact_messages`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count contact messages: %w", err)
	}
	return n, nil
}
