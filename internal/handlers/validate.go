// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/mail"
	"strings"
	"unicode/utf8"

	"atelier/internal/models"
)

// Validation limits for locally handled forms. Entity fields are checked
// by their crud schema.
const (
	maxOptionLen      = 40
	maxNameLen        = 200
	maxEmailLen       = 320
	maxMessageLen     = 5_000
	minPasswordLen    = 8
	maxDisplayNameLen = 100
)

// validOption checks a free-text size or finish value.
func validOption(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return "Enter a value."
	}
	if utf8.RuneCountInString(v) > maxOptionLen {
		return "Value is too long (max 40 characters)."
	}
	if strings.ContainsAny(v, ",\"<>") {
		return "Value cannot contain commas, quotes or angle brackets."
	}
	return ""
}

// validateContact checks a public contact form submission and returns the
// first error found.
func validateContact(name, email, message string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "Please tell us your name."
	}
	if utf8.RuneCountInString(name) > maxNameLen {
		return "Name is too long (max 200 characters)."
	}
	if msg := validateEmail(email); msg != "" {
		return msg
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return "Please write a message."
	}
	if utf8.RuneCountInString(message) > maxMessageLen {
		return "Message is too long (max 5,000 characters)."
	}
	return ""
}

// validateUser checks the add-user form.
func validateUser(displayName, email, password, role string) string {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return "Name is required."
	}
	if utf8.RuneCountInString(displayName) > maxDisplayNameLen {
		return "Name is too long (max 100 characters)."
	}
	if msg := validateEmail(email); msg != "" {
		return msg
	}
	if utf8.RuneCountInString(password) < minPasswordLen {
		return "Password must be at least 8 characters."
	}
	if !models.Role(role).Valid() {
		return "Choose a valid role."
	}
	return ""
}

func validateEmail(email string) string {
	email = strings.TrimSpace(email)
	if email == "" {
		return "Email is required."
	}
	if len(email) > maxEmailLen {
		return "Email is too long."
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "Enter a valid email address."
	}
	return ""
}
